package store

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/talentbridge/enrich-cli/internal/db"
	"github.com/talentbridge/enrich-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool db.Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool. Used by tests with pgxmock.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS startups (
	id                TEXT PRIMARY KEY,
	name              TEXT NOT NULL,
	website           TEXT NOT NULL DEFAULT '',
	profile_url       TEXT NOT NULL DEFAULT '',
	industry          TEXT NOT NULL DEFAULT '',
	location          TEXT NOT NULL DEFAULT '',
	batch             TEXT NOT NULL DEFAULT '',
	team_size         TEXT NOT NULL DEFAULT '',
	funding_stage     TEXT NOT NULL DEFAULT '',
	amount_raised     TEXT NOT NULL DEFAULT '',
	date_raised       TEXT NOT NULL DEFAULT '',
	job_openings      TEXT NOT NULL DEFAULT '',
	founder_first     TEXT NOT NULL DEFAULT '',
	founder_last      TEXT NOT NULL DEFAULT '',
	founder_email     TEXT NOT NULL DEFAULT '',
	founder_linkedin  TEXT NOT NULL DEFAULT '',
	enrichment_status TEXT NOT NULL DEFAULT 'pending',
	needs_enrichment  BOOLEAN NOT NULL DEFAULT TRUE,
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS founders (
	id                  TEXT PRIMARY KEY,
	startup_id          TEXT NOT NULL REFERENCES startups(id),
	name_key            TEXT NOT NULL,
	first_name          TEXT NOT NULL,
	last_name           TEXT NOT NULL DEFAULT '',
	email               TEXT NOT NULL DEFAULT '',
	role                TEXT NOT NULL DEFAULT '',
	linkedin            TEXT NOT NULL DEFAULT '',
	background          TEXT NOT NULL DEFAULT '',
	email_source        TEXT NOT NULL DEFAULT '',
	email_verified      BOOLEAN NOT NULL DEFAULT FALSE,
	confidence          DOUBLE PRECISION NOT NULL DEFAULT 0,
	needs_manual_review BOOLEAN NOT NULL DEFAULT FALSE,
	UNIQUE (startup_id, name_key)
);

CREATE INDEX IF NOT EXISTS idx_startups_status ON startups(enrichment_status);
CREATE INDEX IF NOT EXISTS idx_startups_needs ON startups(needs_enrichment);
CREATE INDEX IF NOT EXISTS idx_startups_batch ON startups(batch);
CREATE INDEX IF NOT EXISTS idx_founders_startup ON founders(startup_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func scanStartupPgx(row pgx.Row) (*model.StartupRecord, error) {
	var r model.StartupRecord
	var status string
	err := row.Scan(&r.ID, &r.Name, &r.Website, &r.ProfileURL, &r.Industry,
		&r.Location, &r.Batch, &r.TeamSize, &r.FundingStage, &r.AmountRaised,
		&r.DateRaised, &r.JobOpenings, &r.FounderFirst, &r.FounderLast,
		&r.FounderEmail, &r.FounderLinkedIn, &status, &r.NeedsEnrichment,
		&r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	r.Status = model.EnrichmentStatus(status)
	return &r, nil
}

func (s *PostgresStore) GetRecord(ctx context.Context, id string) (*model.StartupRecord, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+startupColumns+` FROM startups WHERE id = $1`, id)
	r, err := scanStartupPgx(row)
	if eris.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "startup %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get startup %s", id)
	}
	return r, nil
}

func (s *PostgresStore) ListRecords(ctx context.Context, filter RecordFilter) ([]model.StartupRecord, error) {
	query := `SELECT ` + startupColumns + ` FROM startups`
	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if filter.Status != "" {
		conds = append(conds, "enrichment_status = "+arg(string(filter.Status)))
	}
	if filter.Batch != "" {
		conds = append(conds, "batch = "+arg(filter.Batch))
	}
	if filter.NeedsEnrichment {
		conds = append(conds, "needs_enrichment")
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY name"
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET " + arg(filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list startups")
	}
	defer rows.Close()

	var out []model.StartupRecord
	for rows.Next() {
		r, err := scanStartupPgx(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan startup")
		}
		out = append(out, *r)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list startups")
}

func (s *PostgresStore) RecordsNeedingEnrichment(ctx context.Context, limit int) ([]model.StartupRecord, error) {
	return s.ListRecords(ctx, RecordFilter{NeedsEnrichment: true, Limit: limit})
}

func (s *PostgresStore) UpdateRecord(ctx context.Context, r *model.StartupRecord) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE startups SET name = $1, website = $2, profile_url = $3,
			industry = $4, location = $5, batch = $6, team_size = $7,
			funding_stage = $8, amount_raised = $9, date_raised = $10,
			job_openings = $11, founder_first = $12, founder_last = $13,
			founder_email = $14, founder_linkedin = $15,
			enrichment_status = $16, needs_enrichment = $17, updated_at = $18
		WHERE id = $19`,
		r.Name, r.Website, r.ProfileURL, r.Industry, r.Location, r.Batch,
		r.TeamSize, r.FundingStage, r.AmountRaised, r.DateRaised, r.JobOpenings,
		r.FounderFirst, r.FounderLast, r.FounderEmail, r.FounderLinkedIn,
		string(r.Status), r.NeedsEnrichment, time.Now().UTC(), r.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update startup %s", r.ID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "startup %s", r.ID)
	}
	return nil
}

func (s *PostgresStore) SetStatus(ctx context.Context, id string, status model.EnrichmentStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE startups SET enrichment_status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: set status %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "startup %s", id)
	}
	return nil
}

var founderColumns = []string{
	"id", "startup_id", "name_key", "first_name", "last_name", "email",
	"role", "linkedin", "background", "email_source", "email_verified",
	"confidence", "needs_manual_review",
}

func (s *PostgresStore) UpsertFounders(ctx context.Context, startupID string, founders []model.FounderRecord) error {
	if len(founders) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(founders))
	for _, f := range founders {
		rows = append(rows, []any{
			uuid.New().String(), startupID, founderNameKey(f), f.FirstName,
			f.LastName, f.Email, f.Role, f.LinkedIn, f.Background,
			f.EmailSource, f.EmailVerified, f.Confidence, f.NeedsManualReview,
		})
	}
	_, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "founders",
		Columns:      founderColumns,
		ConflictKeys: []string{"startup_id", "name_key"},
		UpdateCols: []string{
			"email", "role", "linkedin", "background", "email_source",
			"email_verified", "confidence", "needs_manual_review",
		},
	}, rows)
	return eris.Wrapf(err, "postgres: upsert founders for %s", startupID)
}

func (s *PostgresStore) ListFounders(ctx context.Context, startupID string) ([]model.FounderRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, startup_id, first_name, last_name, email, role, linkedin,
			background, email_source, email_verified, confidence,
			needs_manual_review
		FROM founders WHERE startup_id = $1
		ORDER BY confidence DESC, first_name`,
		startupID)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list founders for %s", startupID)
	}
	defer rows.Close()

	var out []model.FounderRecord
	for rows.Next() {
		var f model.FounderRecord
		if err := rows.Scan(&f.ID, &f.StartupID, &f.FirstName, &f.LastName,
			&f.Email, &f.Role, &f.LinkedIn, &f.Background, &f.EmailSource,
			&f.EmailVerified, &f.Confidence, &f.NeedsManualReview); err != nil {
			return nil, eris.Wrap(err, "postgres: scan founder")
		}
		out = append(out, f)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list founders")
}
