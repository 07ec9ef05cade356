package pipeline

import (
	"context"
	"strings"

	"github.com/talentbridge/enrich-cli/internal/extract"
	"github.com/talentbridge/enrich-cli/internal/model"
)

// querySpec is one targeted search plus the schema fields its results are
// expected to answer. Queries within an entity are independent; the
// orchestrator runs them concurrently and each one's results are extracted
// against its own field subset.
type querySpec struct {
	suffix string
	fields []string
}

var querySpecs = []querySpec{
	{"startup founders", []string{
		extract.FieldFounderNames, extract.FieldFounderRole,
		extract.FieldFounderLinkedIn, extract.FieldWebsite,
	}},
	{"startup funding raised", []string{
		extract.FieldFundingStage, extract.FieldAmountRaised,
		extract.FieldDateRaised,
	}},
	{"company team size location industry", []string{
		extract.FieldTeamSize, extract.FieldLocation, extract.FieldIndustry,
	}},
	{"founder email contact", []string{extract.FieldFounderEmail}},
	{"jobs hiring open roles", []string{extract.FieldJobOpenings}},
}

// searchExtract runs every targeted query and folds the per-query
// extractions into one result, keeping the higher-confidence value when two
// queries answer the same field.
func (p *Pipeline) searchExtract(ctx context.Context, companyName string) model.ExtractionResult {
	if p.searcher == nil || p.extractor == nil {
		return nil
	}

	queries := make([]string, len(querySpecs))
	for i, spec := range querySpecs {
		queries[i] = "\"" + companyName + "\" " + spec.suffix
	}
	resultsByQuery := p.searcher.SearchAll(ctx, queries, p.queryConcurrency)

	combined := make(model.ExtractionResult)
	for i, spec := range querySpecs {
		results := resultsByQuery[queries[i]]
		if len(results) == 0 {
			continue
		}
		extracted := p.extractor.Extract(ctx, p.sess, companyName, results, p.schema.Subset(spec.fields...))
		for key, field := range extracted {
			if existing, ok := combined[key]; ok && existing.Confidence >= field.Confidence {
				continue
			}
			combined[key] = field
		}
	}
	return combined
}

// pageFounders returns the scraper tier's founder observations.
func pageFounders(page *model.PageData) []model.FounderRecord {
	if page == nil {
		return nil
	}
	return page.Founders
}

// extractFounders converts the extraction tier's founder fields into
// observations. Role, link, and email attach only when the tier saw exactly
// one founder; spreading a single role across several people would fabricate
// data.
func extractFounders(extracted model.ExtractionResult) []model.FounderRecord {
	names := extracted.Get(extract.FieldFounderNames)
	if names == "" {
		return nil
	}
	conf := extracted[extract.FieldFounderNames].Confidence

	var out []model.FounderRecord
	for _, name := range strings.Split(names, ";") {
		parts := strings.Fields(strings.TrimSpace(name))
		if len(parts) < 2 {
			continue
		}
		out = append(out, model.FounderRecord{
			FirstName:  parts[0],
			LastName:   strings.Join(parts[1:], " "),
			Confidence: conf,
		})
	}

	if len(out) == 1 {
		f := &out[0]
		f.Role = extracted.Get(extract.FieldFounderRole)
		f.LinkedIn = extracted.Get(extract.FieldFounderLinkedIn)
		if email := extracted.Get(extract.FieldFounderEmail); email != "" {
			f.Email = email
			f.EmailSource = model.EmailSourceExtract
		}
	}
	return out
}

// resolvedDomain picks the domain email discovery should generate against:
// the record's own website first, then the page tier's, then the extraction
// tier's.
func resolvedDomain(r *model.StartupRecord, page *model.PageData, extracted model.ExtractionResult) string {
	for _, candidate := range []string{
		r.Website,
		pageWebsite(page),
		extracted.Get(extract.FieldWebsite),
	} {
		if d := extract.NormalizeDomain(candidate); d != "" {
			return d
		}
	}
	return ""
}

func pageWebsite(page *model.PageData) string {
	if page == nil {
		return ""
	}
	return page.Website
}
