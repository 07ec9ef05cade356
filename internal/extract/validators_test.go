package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateFounderName_AcceptsFullNames(t *testing.T) {
	got, ok := ValidateFounderName("Jane Doe")
	assert.True(t, ok)
	assert.Equal(t, "Jane Doe", got)

	got, ok = ValidateFounderName("Jane Doe; John Roe")
	assert.True(t, ok)
	assert.Equal(t, "Jane Doe; John Roe", got)
}

func TestValidateFounderName_RejectsSingleToken(t *testing.T) {
	_, ok := ValidateFounderName("Jane")
	assert.False(t, ok)
}

func TestValidateFounderName_RejectsPlaceholders(t *testing.T) {
	for _, v := range []string{"Team", "The Team", "Founder", "Co-Founder", "N/A", "unknown"} {
		_, ok := ValidateFounderName(v)
		assert.False(t, ok, "%q must be rejected", v)
	}
}

func TestValidateFounderName_DropsBadEntriesKeepsGood(t *testing.T) {
	got, ok := ValidateFounderName("Team; Jane Doe; Founder")
	assert.True(t, ok)
	assert.Equal(t, "Jane Doe", got)
}

func TestValidateWebsite_NormalizesURL(t *testing.T) {
	got, ok := ValidateWebsite("https://www.acme.io/about?ref=hn")
	assert.True(t, ok)
	assert.Equal(t, "acme.io", got)
}

func TestValidateWebsite_RejectsPlaceholderAndAggregator(t *testing.T) {
	for _, v := range []string{"example.com", "company.com", "linkedin.com", "https://www.crunchbase.com/organization/acme", "sub.linkedin.com"} {
		_, ok := ValidateWebsite(v)
		assert.False(t, ok, "%q must be rejected", v)
	}
}

func TestValidateLinkedIn(t *testing.T) {
	got, ok := ValidateLinkedIn("https://www.linkedin.com/in/jane-doe/")
	assert.True(t, ok)
	assert.Equal(t, "linkedin.com/in/jane-doe", got)

	_, ok = ValidateLinkedIn("https://linkedin.com/in/")
	assert.False(t, ok)

	_, ok = ValidateLinkedIn("https://twitter.com/janedoe")
	assert.False(t, ok)
}

func TestValidateEmail(t *testing.T) {
	got, ok := ValidateEmail("Jane.Doe@Acme.io")
	assert.True(t, ok)
	assert.Equal(t, "jane.doe@acme.io", got)

	_, ok = ValidateEmail("hello@acme.io")
	assert.False(t, ok, "seeded generic local part must not count as enrichment")

	_, ok = ValidateEmail("jane@example.com")
	assert.False(t, ok)

	_, ok = ValidateEmail("not-an-email")
	assert.False(t, ok)
}

func TestValidateAmountRaised(t *testing.T) {
	got, ok := ValidateAmountRaised("$1.5M")
	assert.True(t, ok)
	assert.Equal(t, "$1.5M", got)

	got, ok = ValidateAmountRaised("$2 m")
	assert.True(t, ok)
	assert.Equal(t, "$2M", got)

	_, ok = ValidateAmountRaised("1.5 million")
	assert.False(t, ok)
}

func TestValidateTeamSize_Buckets(t *testing.T) {
	// Ranges and open buckets bucket by their lower bound.
	cases := map[string]string{
		"7":     "1-10",
		"11":    "11-50",
		"10-25": "1-10",
		"120":   "51-200",
		"350":   "201-500",
		"800":   "500+",
		"50+":   "11-50",
	}
	for raw, want := range cases {
		got, ok := ValidateTeamSize(raw)
		assert.True(t, ok, "%q must validate", raw)
		assert.Equal(t, want, got, "bucket for %q", raw)
	}

	_, ok := ValidateTeamSize("a few")
	assert.False(t, ok)
}

func TestValidateTeamSize_RejectsDegenerateCounts(t *testing.T) {
	// A zero headcount and absurdly long digit strings have no bucket and
	// must not slip through as an empty accepted value.
	for _, raw := range []string{"0", "0-10", "99999999999999999999"} {
		got, ok := ValidateTeamSize(raw)
		assert.False(t, ok, "%q must be rejected", raw)
		assert.Empty(t, got)
	}
}

func TestValidateFundingStage(t *testing.T) {
	got, ok := ValidateFundingStage("seed")
	assert.True(t, ok)
	assert.Equal(t, "Seed", got)

	got, ok = ValidateFundingStage("Series A")
	assert.True(t, ok)
	assert.Equal(t, "Series A", got)

	_, ok = ValidateFundingStage("IPO soon")
	assert.False(t, ok)
}

func TestValidateDateRaised(t *testing.T) {
	for _, v := range []string{"Summer 2025", "Q3 2024", "March 2023", "2022"} {
		got, ok := ValidateDateRaised(v)
		assert.True(t, ok, "%q must validate", v)
		assert.Equal(t, v, got)
	}

	for _, v := range []string{"last year", "Summer", "13/2024"} {
		_, ok := ValidateDateRaised(v)
		assert.False(t, ok, "%q must be rejected", v)
	}
}

func TestNormalizeDomain(t *testing.T) {
	assert.Equal(t, "acme.io", NormalizeDomain("https://www.acme.io/jobs?x=1"))
	assert.Equal(t, "acme.io", NormalizeDomain("ACME.IO"))
	assert.Equal(t, "acme.io", NormalizeDomain("acme.io:8080"))
}

func TestSchemaThreshold(t *testing.T) {
	s := DefaultSchema()
	assert.InDelta(t, 0.7, s.Threshold(FieldWebsite), 1e-9)
	assert.InDelta(t, 0.8, s.Threshold(FieldFounderEmail), 1e-9)
}

func TestSchemaSubset(t *testing.T) {
	s := DefaultSchema().Subset(FieldFounderNames, FieldFounderEmail, "nonexistent")
	assert.Len(t, s.Fields, 2)
	assert.Equal(t, FieldFounderNames, s.Fields[0].Key)
	assert.InDelta(t, 0.8, s.Threshold(FieldFounderEmail), 1e-9)
}
