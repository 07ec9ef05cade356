package store

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"

	"github.com/talentbridge/enrich-cli/internal/model"
)

// RecordFilter specifies criteria for listing startup records.
type RecordFilter struct {
	Status          model.EnrichmentStatus `json:"status,omitempty"`
	Batch           string                 `json:"batch,omitempty"`
	NeedsEnrichment bool                   `json:"needs_enrichment,omitempty"`
	Limit           int                    `json:"limit,omitempty"`
	Offset          int                    `json:"offset,omitempty"`
}

// Store defines the persistence interface for the enrichment pipeline.
type Store interface {
	// Startup records
	GetRecord(ctx context.Context, id string) (*model.StartupRecord, error)
	ListRecords(ctx context.Context, filter RecordFilter) ([]model.StartupRecord, error)
	RecordsNeedingEnrichment(ctx context.Context, limit int) ([]model.StartupRecord, error)
	UpdateRecord(ctx context.Context, r *model.StartupRecord) error
	SetStatus(ctx context.Context, id string, status model.EnrichmentStatus) error

	// Founders
	UpsertFounders(ctx context.Context, startupID string, founders []model.FounderRecord) error
	ListFounders(ctx context.Context, startupID string) ([]model.FounderRecord, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = eris.New("store: not found")

// Open builds a Store for the configured driver.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "postgres":
		return NewPostgres(ctx, dsn, nil)
	case "sqlite", "":
		return NewSQLite(dsn)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
}

func checkRowsAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrapf(err, "store: rows affected for %s %s", kind, id)
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "%s %s", kind, id)
	}
	return nil
}
