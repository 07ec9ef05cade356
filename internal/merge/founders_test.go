package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentbridge/enrich-cli/internal/model"
)

func TestNormalizeName_FoldsCaseAndDiacritics(t *testing.T) {
	assert.Equal(t, "tomas novak", NormalizeName("Tomáš  Novák"))
	assert.Equal(t, "jane doe", NormalizeName("  Jane   Doe "))
}

func TestNormalizeName_Idempotent(t *testing.T) {
	for _, name := range []string{"Tomáš Novák", "JANE DOE", "josé maría azar"} {
		once := NormalizeName(name)
		assert.Equal(t, once, NormalizeName(once))
	}
}

func TestKey_PrefersLinkPresence(t *testing.T) {
	withLink := model.FounderRecord{FirstName: "Jane", LastName: "Doe", LinkedIn: "linkedin.com/in/jane-doe"}
	withoutLink := model.FounderRecord{FirstName: "Jane", LastName: "Doe"}

	assert.Equal(t, "link:linkedin.com/in/jane-doe", Key(withLink))
	assert.Equal(t, "name:jane doe", Key(withoutLink))
}

func TestFounders_CollidesOnNormalizedName(t *testing.T) {
	got := Founders(
		[]model.FounderRecord{{FirstName: "Tomáš", LastName: "Novák", Confidence: 0.8}},
		[]model.FounderRecord{{FirstName: "Tomas", LastName: "Novak", Role: "CEO", Confidence: 0.6}},
	)

	require.Len(t, got, 1)
	// First-seen spelling wins.
	assert.Equal(t, "Tomáš", got[0].FirstName)
	assert.Equal(t, "CEO", got[0].Role)
}

func TestFounders_ConfidenceIsMaxNotSum(t *testing.T) {
	got := Founders(
		[]model.FounderRecord{{FirstName: "Jane", LastName: "Doe", Confidence: 0.6}},
		[]model.FounderRecord{{FirstName: "Jane", LastName: "Doe", Confidence: 0.8}},
		[]model.FounderRecord{{FirstName: "Jane", LastName: "Doe", Confidence: 0.7}},
	)

	require.Len(t, got, 1)
	assert.InDelta(t, 0.8, got[0].Confidence, 1e-9)
}

func TestFounders_LowerConfidenceNeverOverwrites(t *testing.T) {
	got := Founders(
		[]model.FounderRecord{{FirstName: "Jane", LastName: "Doe", Role: "CEO", Confidence: 0.8}},
		[]model.FounderRecord{{FirstName: "Jane", LastName: "Doe", Role: "Advisor", Confidence: 0.5}},
	)

	require.Len(t, got, 1)
	assert.Equal(t, "CEO", got[0].Role)
}

func TestFounders_HigherConfidenceOverwrites(t *testing.T) {
	got := Founders(
		[]model.FounderRecord{{FirstName: "Jane", LastName: "Doe", Role: "Team Member", Confidence: 0.6}},
		[]model.FounderRecord{{FirstName: "Jane", LastName: "Doe", Role: "Co-founder & CEO", Confidence: 0.9}},
	)

	require.Len(t, got, 1)
	assert.Equal(t, "Co-founder & CEO", got[0].Role)
}

func TestFounders_FillsEmptyFieldsFromAnySource(t *testing.T) {
	got := Founders(
		[]model.FounderRecord{{FirstName: "Jane", LastName: "Doe", Confidence: 0.8}},
		[]model.FounderRecord{{
			FirstName: "Jane", LastName: "Doe",
			Email: "jane@acme.io", EmailSource: model.EmailSourceExtract,
			Background: "Previously at BigCo", Confidence: 0.5,
		}},
	)

	require.Len(t, got, 1)
	assert.Equal(t, "jane@acme.io", got[0].Email)
	assert.Equal(t, model.EmailSourceExtract, got[0].EmailSource)
	assert.Equal(t, "Previously at BigCo", got[0].Background)
	assert.InDelta(t, 0.8, got[0].Confidence, 1e-9)
}

func TestFounders_EmailVerifiedTravelsWithWinningEmail(t *testing.T) {
	got := Founders(
		[]model.FounderRecord{{
			FirstName: "Jane", LastName: "Doe",
			Email: "j.doe@acme.io", EmailVerified: false, Confidence: 0.9,
		}},
		[]model.FounderRecord{{
			FirstName: "Jane", LastName: "Doe",
			Email: "other@acme.io", EmailVerified: true, Confidence: 0.4,
		}},
	)

	require.Len(t, got, 1)
	// The losing email's verification must not attach to the kept address.
	assert.Equal(t, "j.doe@acme.io", got[0].Email)
	assert.False(t, got[0].EmailVerified)
}

func TestFounders_ReviewFlagAccumulates(t *testing.T) {
	got := Founders(
		[]model.FounderRecord{{FirstName: "Jane", LastName: "Doe", NeedsManualReview: true, Confidence: 0.5}},
		[]model.FounderRecord{{FirstName: "Jane", LastName: "Doe", Confidence: 0.9}},
	)

	require.Len(t, got, 1)
	assert.True(t, got[0].NeedsManualReview)
}

func TestFounders_PreservesFirstSeenOrder(t *testing.T) {
	got := Founders(
		[]model.FounderRecord{
			{FirstName: "Jane", LastName: "Doe", Confidence: 0.8},
			{FirstName: "John", LastName: "Roe", Confidence: 0.8},
		},
		[]model.FounderRecord{
			{FirstName: "Ada", LastName: "Park", Confidence: 0.6},
			{FirstName: "Jane", LastName: "Doe", Confidence: 0.9},
		},
	)

	require.Len(t, got, 3)
	assert.Equal(t, "Jane", got[0].FirstName)
	assert.Equal(t, "John", got[1].FirstName)
	assert.Equal(t, "Ada", got[2].FirstName)
}

func TestFounders_DistinctLinksStayDistinct(t *testing.T) {
	got := Founders(
		[]model.FounderRecord{
			{FirstName: "Jane", LastName: "Doe", LinkedIn: "linkedin.com/in/jane-doe", Confidence: 0.8},
			{FirstName: "Jane", LastName: "Doe", LinkedIn: "linkedin.com/in/jane-doe-2", Confidence: 0.8},
		},
	)

	assert.Len(t, got, 2)
}

func TestFoldByName_LinkedAndUnlinkedObservationsFold(t *testing.T) {
	stored := model.FounderRecord{
		ID: "f1", FirstName: "Jane", LastName: "Doe",
		Email: "jane@acme.io", EmailVerified: true,
		LinkedIn: "linkedin.com/in/jane-doe", Confidence: 0.85,
	}
	observed := model.FounderRecord{FirstName: "Jane", LastName: "Doe", Confidence: 0.6}

	// Distinct merge keys (link vs name), but a single person: persistence
	// keys by name, so they must fold before the write.
	got := FoldByName(Founders([]model.FounderRecord{stored}, []model.FounderRecord{observed}))

	require.Len(t, got, 1)
	assert.Equal(t, "f1", got[0].ID)
	assert.Equal(t, "jane@acme.io", got[0].Email)
	assert.True(t, got[0].EmailVerified)
	assert.Equal(t, "linkedin.com/in/jane-doe", got[0].LinkedIn)
	assert.InDelta(t, 0.85, got[0].Confidence, 1e-9)
}

func TestFoldByName_DistinctNamesStayDistinct(t *testing.T) {
	got := FoldByName([]model.FounderRecord{
		{FirstName: "Jane", LastName: "Doe", Confidence: 0.8},
		{FirstName: "John", LastName: "Roe", Confidence: 0.6},
	})

	assert.Len(t, got, 2)
}
