package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/talentbridge/enrich-cli/internal/merge"
	"github.com/talentbridge/enrich-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
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
	needs_enrichment  INTEGER NOT NULL DEFAULT 1,
	updated_at        DATETIME NOT NULL DEFAULT (datetime('now'))
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
	email_verified      INTEGER NOT NULL DEFAULT 0,
	confidence          REAL NOT NULL DEFAULT 0,
	needs_manual_review INTEGER NOT NULL DEFAULT 0,
	UNIQUE (startup_id, name_key)
);

CREATE INDEX IF NOT EXISTS idx_startups_status ON startups(enrichment_status);
CREATE INDEX IF NOT EXISTS idx_startups_needs ON startups(needs_enrichment);
CREATE INDEX IF NOT EXISTS idx_startups_batch ON startups(batch);
CREATE INDEX IF NOT EXISTS idx_founders_startup ON founders(startup_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const startupColumns = `id, name, website, profile_url, industry, location, batch,
	team_size, funding_stage, amount_raised, date_raised, job_openings,
	founder_first, founder_last, founder_email, founder_linkedin,
	enrichment_status, needs_enrichment, updated_at`

func scanStartup(row interface{ Scan(...any) error }) (*model.StartupRecord, error) {
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

func (s *SQLiteStore) GetRecord(ctx context.Context, id string) (*model.StartupRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+startupColumns+` FROM startups WHERE id = ?`, id)
	r, err := scanStartup(row)
	if eris.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "startup %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get startup %s", id)
	}
	return r, nil
}

func (s *SQLiteStore) ListRecords(ctx context.Context, filter RecordFilter) ([]model.StartupRecord, error) {
	query := `SELECT ` + startupColumns + ` FROM startups`
	var conds []string
	var args []any
	if filter.Status != "" {
		conds = append(conds, "enrichment_status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Batch != "" {
		conds = append(conds, "batch = ?")
		args = append(args, filter.Batch)
	}
	if filter.NeedsEnrichment {
		conds = append(conds, "needs_enrichment = 1")
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY name"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list startups")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.StartupRecord
	for rows.Next() {
		r, err := scanStartup(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan startup")
		}
		out = append(out, *r)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list startups")
}

func (s *SQLiteStore) RecordsNeedingEnrichment(ctx context.Context, limit int) ([]model.StartupRecord, error) {
	return s.ListRecords(ctx, RecordFilter{NeedsEnrichment: true, Limit: limit})
}

func (s *SQLiteStore) UpdateRecord(ctx context.Context, r *model.StartupRecord) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE startups SET name = ?, website = ?, profile_url = ?, industry = ?,
			location = ?, batch = ?, team_size = ?, funding_stage = ?,
			amount_raised = ?, date_raised = ?, job_openings = ?,
			founder_first = ?, founder_last = ?, founder_email = ?,
			founder_linkedin = ?, enrichment_status = ?, needs_enrichment = ?,
			updated_at = ?
		WHERE id = ?`,
		r.Name, r.Website, r.ProfileURL, r.Industry, r.Location, r.Batch,
		r.TeamSize, r.FundingStage, r.AmountRaised, r.DateRaised, r.JobOpenings,
		r.FounderFirst, r.FounderLast, r.FounderEmail, r.FounderLinkedIn,
		string(r.Status), r.NeedsEnrichment, time.Now().UTC(), r.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update startup %s", r.ID)
	}
	return checkRowsAffected(res, "startup", r.ID)
}

func (s *SQLiteStore) SetStatus(ctx context.Context, id string, status model.EnrichmentStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE startups SET enrichment_status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: set status %s", id)
	}
	return checkRowsAffected(res, "startup", id)
}

func (s *SQLiteStore) UpsertFounders(ctx context.Context, startupID string, founders []model.FounderRecord) error {
	for _, f := range founders {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO founders (id, startup_id, name_key, first_name, last_name,
				email, role, linkedin, background, email_source, email_verified,
				confidence, needs_manual_review)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (startup_id, name_key) DO UPDATE SET
				email = excluded.email,
				role = excluded.role,
				linkedin = excluded.linkedin,
				background = excluded.background,
				email_source = excluded.email_source,
				email_verified = excluded.email_verified,
				confidence = excluded.confidence,
				needs_manual_review = excluded.needs_manual_review`,
			uuid.New().String(), startupID, founderNameKey(f), f.FirstName,
			f.LastName, f.Email, f.Role, f.LinkedIn, f.Background,
			f.EmailSource, f.EmailVerified, f.Confidence, f.NeedsManualReview,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: upsert founder %s", f.FullName())
		}
	}
	return nil
}

func (s *SQLiteStore) ListFounders(ctx context.Context, startupID string) ([]model.FounderRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, startup_id, first_name, last_name, email, role, linkedin,
			background, email_source, email_verified, confidence,
			needs_manual_review
		FROM founders WHERE startup_id = ? ORDER BY confidence DESC, first_name`,
		startupID)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list founders for %s", startupID)
	}
	defer rows.Close() //nolint:errcheck

	var out []model.FounderRecord
	for rows.Next() {
		var f model.FounderRecord
		if err := rows.Scan(&f.ID, &f.StartupID, &f.FirstName, &f.LastName,
			&f.Email, &f.Role, &f.LinkedIn, &f.Background, &f.EmailSource,
			&f.EmailVerified, &f.Confidence, &f.NeedsManualReview); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan founder")
		}
		out = append(out, f)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list founders")
}

// founderNameKey is the dedup key: normalized full name. LinkedIn is not
// part of the key so a later tier that learns the link still lands on the
// same row.
func founderNameKey(f model.FounderRecord) string {
	return merge.NormalizeName(f.FullName())
}
