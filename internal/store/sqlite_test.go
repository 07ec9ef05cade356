package store

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentbridge/enrich-cli/internal/model"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() }) //nolint:errcheck
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func seedStartup(t *testing.T, s *SQLiteStore, r model.StartupRecord) {
	t.Helper()
	if r.Status == "" {
		r.Status = model.StatusPending
	}
	_, err := s.db.Exec(
		`INSERT INTO startups (id, name, website, batch, founder_email,
			amount_raised, date_raised, enrichment_status, needs_enrichment, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Name, r.Website, r.Batch, r.FounderEmail, r.AmountRaised,
		r.DateRaised, string(r.Status), r.NeedsEnrichment, time.Now().UTC(),
	)
	require.NoError(t, err)
}

func TestSQLite_GetRecord(t *testing.T) {
	s := openTestStore(t)
	seedStartup(t, s, model.StartupRecord{ID: "s1", Name: "Acme", Website: "acme.io", NeedsEnrichment: true})

	got, err := s.GetRecord(context.Background(), "s1")
	require.NoError(t, err)

	assert.Equal(t, "Acme", got.Name)
	assert.Equal(t, "acme.io", got.Website)
	assert.Equal(t, model.StatusPending, got.Status)
	assert.True(t, got.NeedsEnrichment)
}

func TestSQLite_GetRecordNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetRecord(context.Background(), "missing")
	assert.True(t, eris.Is(err, ErrNotFound))
}

func TestSQLite_ListRecordsFilters(t *testing.T) {
	s := openTestStore(t)
	seedStartup(t, s, model.StartupRecord{ID: "s1", Name: "Acme", Batch: "W25", Status: model.StatusPending, NeedsEnrichment: true})
	seedStartup(t, s, model.StartupRecord{ID: "s2", Name: "Beta", Batch: "W25", Status: model.StatusComplete})
	seedStartup(t, s, model.StartupRecord{ID: "s3", Name: "Gamma", Batch: "S25", Status: model.StatusPending, NeedsEnrichment: true})

	byStatus, err := s.ListRecords(context.Background(), RecordFilter{Status: model.StatusPending})
	require.NoError(t, err)
	assert.Len(t, byStatus, 2)

	byBatch, err := s.ListRecords(context.Background(), RecordFilter{Batch: "W25"})
	require.NoError(t, err)
	assert.Len(t, byBatch, 2)

	both, err := s.ListRecords(context.Background(), RecordFilter{Batch: "W25", NeedsEnrichment: true})
	require.NoError(t, err)
	require.Len(t, both, 1)
	assert.Equal(t, "s1", both[0].ID)
}

func TestSQLite_ListRecordsLimitOffset(t *testing.T) {
	s := openTestStore(t)
	seedStartup(t, s, model.StartupRecord{ID: "s1", Name: "Acme"})
	seedStartup(t, s, model.StartupRecord{ID: "s2", Name: "Beta"})
	seedStartup(t, s, model.StartupRecord{ID: "s3", Name: "Gamma"})

	page, err := s.ListRecords(context.Background(), RecordFilter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 2)
	// Name ordering makes pagination stable.
	assert.Equal(t, "Beta", page[0].Name)
	assert.Equal(t, "Gamma", page[1].Name)
}

func TestSQLite_RecordsNeedingEnrichment(t *testing.T) {
	s := openTestStore(t)
	seedStartup(t, s, model.StartupRecord{ID: "s1", Name: "Acme", NeedsEnrichment: true})
	seedStartup(t, s, model.StartupRecord{ID: "s2", Name: "Beta"})

	got, err := s.RecordsNeedingEnrichment(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "s1", got[0].ID)
}

func TestSQLite_UpdateRecord(t *testing.T) {
	s := openTestStore(t)
	seedStartup(t, s, model.StartupRecord{ID: "s1", Name: "Acme", NeedsEnrichment: true})

	r, err := s.GetRecord(context.Background(), "s1")
	require.NoError(t, err)
	r.Website = "acme-robotics.io"
	r.FundingStage = "Seed"
	r.Status = model.StatusComplete
	r.NeedsEnrichment = false
	require.NoError(t, s.UpdateRecord(context.Background(), r))

	got, err := s.GetRecord(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "acme-robotics.io", got.Website)
	assert.Equal(t, "Seed", got.FundingStage)
	assert.Equal(t, model.StatusComplete, got.Status)
	assert.False(t, got.NeedsEnrichment)
}

func TestSQLite_UpdateRecordNotFound(t *testing.T) {
	s := openTestStore(t)

	err := s.UpdateRecord(context.Background(), &model.StartupRecord{ID: "missing", Name: "Ghost"})
	assert.True(t, eris.Is(err, ErrNotFound))
}

func TestSQLite_SetStatus(t *testing.T) {
	s := openTestStore(t)
	seedStartup(t, s, model.StartupRecord{ID: "s1", Name: "Acme"})

	require.NoError(t, s.SetStatus(context.Background(), "s1", model.StatusInProgress))

	got, err := s.GetRecord(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, got.Status)
}

func TestSQLite_UpsertFoundersInsertThenUpdate(t *testing.T) {
	s := openTestStore(t)
	seedStartup(t, s, model.StartupRecord{ID: "s1", Name: "Acme"})

	first := []model.FounderRecord{{FirstName: "Jane", LastName: "Doe", Role: "CEO", Confidence: 0.6}}
	require.NoError(t, s.UpsertFounders(context.Background(), "s1", first))

	// A later tier learns the email; same name lands on the same row.
	second := []model.FounderRecord{{
		FirstName: "Jane", LastName: "Doe", Role: "CEO",
		Email: "jane@acme.io", EmailSource: model.EmailSourcePattern,
		EmailVerified: true, Confidence: 0.78,
	}}
	require.NoError(t, s.UpsertFounders(context.Background(), "s1", second))

	got, err := s.ListFounders(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "jane@acme.io", got[0].Email)
	assert.True(t, got[0].EmailVerified)
	assert.InDelta(t, 0.78, got[0].Confidence, 1e-9)
}

func TestSQLite_UpsertFoundersNameKeyFoldsSpelling(t *testing.T) {
	s := openTestStore(t)
	seedStartup(t, s, model.StartupRecord{ID: "s1", Name: "Acme"})

	require.NoError(t, s.UpsertFounders(context.Background(), "s1",
		[]model.FounderRecord{{FirstName: "Tomáš", LastName: "Novák", Confidence: 0.6}}))
	require.NoError(t, s.UpsertFounders(context.Background(), "s1",
		[]model.FounderRecord{{FirstName: "Tomas", LastName: "Novak", Confidence: 0.8}}))

	got, err := s.ListFounders(context.Background(), "s1")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSQLite_ListFoundersOrdering(t *testing.T) {
	s := openTestStore(t)
	seedStartup(t, s, model.StartupRecord{ID: "s1", Name: "Acme"})

	require.NoError(t, s.UpsertFounders(context.Background(), "s1", []model.FounderRecord{
		{FirstName: "John", LastName: "Roe", Confidence: 0.6},
		{FirstName: "Jane", LastName: "Doe", Confidence: 0.9},
	}))

	got, err := s.ListFounders(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Jane", got[0].FirstName)
	assert.Equal(t, "John", got[1].FirstName)
}

func TestSQLite_FoundersScopedToStartup(t *testing.T) {
	s := openTestStore(t)
	seedStartup(t, s, model.StartupRecord{ID: "s1", Name: "Acme"})
	seedStartup(t, s, model.StartupRecord{ID: "s2", Name: "Beta"})

	require.NoError(t, s.UpsertFounders(context.Background(), "s1",
		[]model.FounderRecord{{FirstName: "Jane", LastName: "Doe"}}))
	require.NoError(t, s.UpsertFounders(context.Background(), "s2",
		[]model.FounderRecord{{FirstName: "Jane", LastName: "Doe"}}))

	s1Founders, err := s.ListFounders(context.Background(), "s1")
	require.NoError(t, err)
	assert.Len(t, s1Founders, 1)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "")
	assert.Error(t, err)
}
