package store

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentbridge/enrich-cli/internal/model"
)

func mockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresWithPool(mock), mock
}

func startupRow(r model.StartupRecord) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "name", "website", "profile_url", "industry", "location",
		"batch", "team_size", "funding_stage", "amount_raised", "date_raised",
		"job_openings", "founder_first", "founder_last", "founder_email",
		"founder_linkedin", "enrichment_status", "needs_enrichment", "updated_at",
	}).AddRow(
		r.ID, r.Name, r.Website, r.ProfileURL, r.Industry, r.Location,
		r.Batch, r.TeamSize, r.FundingStage, r.AmountRaised, r.DateRaised,
		r.JobOpenings, r.FounderFirst, r.FounderLast, r.FounderEmail,
		r.FounderLinkedIn, string(r.Status), r.NeedsEnrichment, time.Now().UTC(),
	)
}

func TestPostgres_GetRecord(t *testing.T) {
	s, mock := mockStore(t)
	mock.ExpectQuery("FROM startups WHERE id").
		WithArgs("s1").
		WillReturnRows(startupRow(model.StartupRecord{
			ID: "s1", Name: "Acme", Website: "acme.io",
			Status: model.StatusPending, NeedsEnrichment: true,
		}))

	got, err := s.GetRecord(context.Background(), "s1")
	require.NoError(t, err)

	assert.Equal(t, "Acme", got.Name)
	assert.Equal(t, model.StatusPending, got.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetRecordNotFound(t *testing.T) {
	s, mock := mockStore(t)
	mock.ExpectQuery("FROM startups WHERE id").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	_, err := s.GetRecord(context.Background(), "missing")
	assert.True(t, eris.Is(err, ErrNotFound))
}

func TestPostgres_SetStatus(t *testing.T) {
	s, mock := mockStore(t)
	mock.ExpectExec("UPDATE startups SET enrichment_status").
		WithArgs(string(model.StatusInProgress), pgxmock.AnyArg(), "s1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := s.SetStatus(context.Background(), "s1", model.StatusInProgress)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_SetStatusNotFound(t *testing.T) {
	s, mock := mockStore(t)
	mock.ExpectExec("UPDATE startups SET enrichment_status").
		WithArgs(string(model.StatusFailed), pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.SetStatus(context.Background(), "missing", model.StatusFailed)
	assert.True(t, eris.Is(err, ErrNotFound))
}

func TestPostgres_ListRecordsBuildsFilterQuery(t *testing.T) {
	s, mock := mockStore(t)
	mock.ExpectQuery(`FROM startups WHERE enrichment_status = \$1 AND batch = \$2 AND needs_enrichment ORDER BY name LIMIT \$3`).
		WithArgs(string(model.StatusPending), "W25", 5).
		WillReturnRows(startupRow(model.StartupRecord{
			ID: "s1", Name: "Acme", Batch: "W25",
			Status: model.StatusPending, NeedsEnrichment: true,
		}))

	got, err := s.ListRecords(context.Background(), RecordFilter{
		Status: model.StatusPending, Batch: "W25", NeedsEnrichment: true, Limit: 5,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "s1", got[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Migrate(t *testing.T) {
	s, mock := mockStore(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS startups").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
