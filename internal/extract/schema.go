// Package extract asks the inference service to fill a typed field schema
// from search snippets, gates every answer on confidence and per-field
// validators, and falls back to pattern matching when the service is
// unavailable.
package extract

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Field keys the pipeline enriches. Validators and fallback patterns are
// registered under these keys.
const (
	FieldFounderNames    = "founder_names"
	FieldFounderRole     = "founder_role"
	FieldFounderLinkedIn = "founder_linkedin"
	FieldFounderEmail    = "founder_email"
	FieldWebsite         = "website"
	FieldLocation        = "location"
	FieldIndustry        = "industry"
	FieldTeamSize        = "team_size"
	FieldFundingStage    = "funding_stage"
	FieldAmountRaised    = "amount_raised"
	FieldDateRaised      = "date_raised"
	FieldJobOpenings     = "job_openings"
)

// Field describes one extractable field for the prompt and the gate.
type Field struct {
	Key         string  `yaml:"key"`
	Description string  `yaml:"description"`
	// MinConfidence overrides the schema default for this field. Emails run
	// at a higher bar because a wrong contact is costlier than a missing one.
	MinConfidence float64 `yaml:"min_confidence,omitempty"`
}

// Schema is an ordered set of fields plus the default confidence gate.
type Schema struct {
	DefaultMinConfidence float64 `yaml:"default_min_confidence"`
	Fields               []Field `yaml:"fields"`
}

// Threshold returns the effective confidence gate for a field.
func (s Schema) Threshold(key string) float64 {
	for _, f := range s.Fields {
		if f.Key == key && f.MinConfidence > 0 {
			return f.MinConfidence
		}
	}
	if s.DefaultMinConfidence > 0 {
		return s.DefaultMinConfidence
	}
	return 0.7
}

// Subset returns a schema containing only the named fields, preserving order
// and thresholds. Unknown keys are ignored.
func (s Schema) Subset(keys ...string) Schema {
	want := make(map[string]bool, len(keys))
	for _, k := range keys {
		want[k] = true
	}
	out := Schema{DefaultMinConfidence: s.DefaultMinConfidence}
	for _, f := range s.Fields {
		if want[f.Key] {
			out.Fields = append(out.Fields, f)
		}
	}
	return out
}

// DefaultSchema returns the compiled-in field schema.
func DefaultSchema() Schema {
	return Schema{
		DefaultMinConfidence: 0.7,
		Fields: []Field{
			{Key: FieldFounderNames, Description: "Full names of the company's founders, separated by semicolons"},
			{Key: FieldFounderRole, Description: "The primary founder's role or title, e.g. \"Co-founder & CEO\""},
			{Key: FieldFounderLinkedIn, Description: "LinkedIn profile URL of the primary founder"},
			{Key: FieldFounderEmail, Description: "Contact email address of a founder", MinConfidence: 0.8},
			{Key: FieldWebsite, Description: "The company's own website domain, e.g. \"acme.io\""},
			{Key: FieldLocation, Description: "City and region where the company is based"},
			{Key: FieldIndustry, Description: "Industry or sector the company operates in"},
			{Key: FieldTeamSize, Description: "Number of employees, as a number or range"},
			{Key: FieldFundingStage, Description: "Most recent funding round stage, e.g. \"Seed\" or \"Series A\""},
			{Key: FieldAmountRaised, Description: "Most recent funding amount, e.g. \"$1.5M\""},
			{Key: FieldDateRaised, Description: "When the most recent round was raised"},
			{Key: FieldJobOpenings, Description: "Open role titles the company is hiring for, separated by semicolons"},
		},
	}
}

// LoadSchema reads a field schema from a YAML file. Fields missing a
// threshold inherit the schema default.
func LoadSchema(path string) (Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Schema{}, eris.Wrapf(err, "extract: read schema %s", path)
	}

	var wrapper struct {
		Schema Schema `yaml:"schema"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return Schema{}, eris.Wrap(err, "extract: parse schema")
	}
	s := wrapper.Schema
	if s.DefaultMinConfidence == 0 {
		s.DefaultMinConfidence = 0.7
	}
	if len(s.Fields) == 0 {
		return Schema{}, eris.New("extract: schema has no fields")
	}
	return s, nil
}
