// Package pipeline drives batch enrichment: normalize pre-pass, then one
// entity at a time through scrape, search/extract, email discovery, merge,
// and persistence. No entity failure aborts the batch.
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/talentbridge/enrich-cli/internal/email"
	"github.com/talentbridge/enrich-cli/internal/extract"
	"github.com/talentbridge/enrich-cli/internal/model"
	"github.com/talentbridge/enrich-cli/internal/normalize"
	"github.com/talentbridge/enrich-cli/internal/scrape"
	"github.com/talentbridge/enrich-cli/internal/search"
	"github.com/talentbridge/enrich-cli/internal/session"
	"github.com/talentbridge/enrich-cli/internal/store"
)

// Pipeline holds the collaborators for one enrichment batch.
type Pipeline struct {
	store      store.Store
	sess       *session.Session
	scraper    *scrape.Scraper
	searcher   *search.Orchestrator
	extractor  *extract.Extractor
	discoverer *email.Discoverer
	schema     extract.Schema

	entityDelay      time.Duration
	queryConcurrency int
}

// Options tunes batch behavior.
type Options struct {
	// EntityDelay is the pause between entities, to avoid hammering the
	// external services. Zero means 1.5s.
	EntityDelay time.Duration
	// QueryConcurrency bounds how many targeted searches run at once within
	// one entity. Zero means 4.
	QueryConcurrency int
}

// New assembles a Pipeline. scraper and discoverer may be nil when the
// browser or the verification service is not configured; those tiers are
// then skipped.
func New(
	st store.Store,
	sess *session.Session,
	scraper *scrape.Scraper,
	searcher *search.Orchestrator,
	extractor *extract.Extractor,
	discoverer *email.Discoverer,
	schema extract.Schema,
	opts Options,
) *Pipeline {
	if opts.EntityDelay <= 0 {
		opts.EntityDelay = 1500 * time.Millisecond
	}
	if opts.QueryConcurrency <= 0 {
		opts.QueryConcurrency = 4
	}
	return &Pipeline{
		store:            st,
		sess:             sess,
		scraper:          scraper,
		searcher:         searcher,
		extractor:        extractor,
		discoverer:       discoverer,
		schema:           schema,
		entityDelay:      opts.EntityDelay,
		queryConcurrency: opts.QueryConcurrency,
	}
}

// Normalize runs the placeholder pre-pass over every stored record and
// returns how many records had fields cleared. Safe to run repeatedly.
func (p *Pipeline) Normalize(ctx context.Context) (int, error) {
	records, err := p.store.ListRecords(ctx, store.RecordFilter{})
	if err != nil {
		return 0, eris.Wrap(err, "pipeline: list records for normalize")
	}

	changed := 0
	for i := range records {
		r := &records[i]
		cleared := normalize.Record(r)
		if len(cleared) == 0 {
			continue
		}
		if err := p.store.UpdateRecord(ctx, r); err != nil {
			return changed, eris.Wrapf(err, "pipeline: persist normalized record %s", r.ID)
		}
		zap.L().Info("cleared placeholder fields",
			zap.String("startup", r.Name),
			zap.Strings("fields", cleared))
		changed++
	}
	return changed, nil
}

// RunOne enriches a single record by id.
func (p *Pipeline) RunOne(ctx context.Context, id string) (*model.EntityResult, error) {
	r, err := p.store.GetRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	res := p.enrichEntity(ctx, r)
	return &res, nil
}

// DiscoverEmails runs pattern-based address discovery for one record's
// stored founders and persists the outcome, review flags included. Returns
// the founders as persisted and how many addresses verified.
func (p *Pipeline) DiscoverEmails(ctx context.Context, id string) ([]model.FounderRecord, int, error) {
	if p.discoverer == nil {
		return nil, 0, eris.New("pipeline: email discovery is not configured")
	}
	r, err := p.store.GetRecord(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	founders, err := p.store.ListFounders(ctx, id)
	if err != nil {
		return nil, 0, eris.Wrapf(err, "pipeline: list founders for %s", id)
	}
	if len(founders) == 0 {
		return nil, 0, nil
	}

	domain := resolvedDomain(r, nil, nil)
	if domain == "" {
		return founders, 0, eris.Errorf("pipeline: record %s has no domain to build candidates from", id)
	}

	founders, found := p.discoverer.Discover(ctx, founders, domain)
	if err := p.store.UpsertFounders(ctx, id, founders); err != nil {
		return nil, found, eris.Wrapf(err, "pipeline: persist founders for %s", id)
	}
	if applyFounderSummary(r, founders) > 0 {
		if err := p.store.UpdateRecord(ctx, r); err != nil {
			return founders, found, eris.Wrapf(err, "pipeline: persist record %s", id)
		}
	}
	return founders, found, nil
}

// RunOptions filters one batch run.
type RunOptions struct {
	// Limit bounds how many records are processed. Zero means all.
	Limit int
	// Batch restricts the run to records carrying this batch label.
	Batch string
	// DryRun reports which records would be enriched without touching
	// anything, the normalize pre-pass included.
	DryRun bool
}

// Run enriches the records that need it, one at a time, and returns the
// batch summary. The normalize pre-pass runs first so fabricated defaults
// never mask missing data.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) (*model.BatchSummary, error) {
	filter := store.RecordFilter{NeedsEnrichment: true, Batch: opts.Batch, Limit: opts.Limit}

	if opts.DryRun {
		records, err := p.store.ListRecords(ctx, filter)
		if err != nil {
			return nil, eris.Wrap(err, "pipeline: list records needing enrichment")
		}
		summary := &model.BatchSummary{StartedAt: time.Now().UTC()}
		for i := range records {
			summary.Add(model.EntityResult{
				StartupID: records[i].ID,
				Name:      records[i].Name,
				Outcome:   model.OutcomeSkipped,
				Reason:    "dry run",
			})
		}
		summary.Elapsed = time.Since(summary.StartedAt)
		return summary, nil
	}

	if _, err := p.Normalize(ctx); err != nil {
		return nil, err
	}

	records, err := p.store.ListRecords(ctx, filter)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: list records needing enrichment")
	}

	summary := &model.BatchSummary{StartedAt: time.Now().UTC()}
	for i := range records {
		if i > 0 {
			time.Sleep(p.entityDelay)
		}
		summary.Add(p.enrichEntity(ctx, &records[i]))
	}
	summary.Elapsed = time.Since(summary.StartedAt)

	zap.L().Info("batch finished",
		zap.Int("processed", summary.Processed),
		zap.Int("enriched", summary.Enriched),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
		zap.Duration("elapsed", summary.Elapsed))
	return summary, nil
}
