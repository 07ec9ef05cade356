package search

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/talentbridge/enrich-cli/internal/model"
	"github.com/talentbridge/enrich-cli/internal/resilience"
	"github.com/talentbridge/enrich-cli/internal/session"
)

// Orchestrator tries backends in priority order with per-backend retry.
type Orchestrator struct {
	backends   []Backend
	sess       *session.Session
	maxResults int
	retry      resilience.RetryConfig
}

// New creates an orchestrator over the given backends, tried in order.
func New(sess *session.Session, maxResults int, backends ...Backend) *Orchestrator {
	if maxResults <= 0 {
		maxResults = 8
	}
	return &Orchestrator{
		backends:   backends,
		sess:       sess,
		maxResults: maxResults,
		retry:      resilience.DefaultRetryConfig(),
	}
}

// WithRetry overrides the per-backend retry policy.
func (o *Orchestrator) WithRetry(cfg resilience.RetryConfig) *Orchestrator {
	o.retry = cfg
	return o
}

// Search runs the query through the backend chain and returns the first
// non-empty result set, capped at maxResults. Total failure returns an empty
// slice and no error: callers treat "no results" as a normal outcome.
func (o *Orchestrator) Search(ctx context.Context, query string) []model.SearchResult {
	for _, b := range o.backends {
		if !b.Available(o.sess) {
			continue
		}

		cfg := o.retry
		cfg.OnRetry = resilience.RetryLogger("search", b.Name())
		results, err := resilience.DoVal(ctx, cfg, func(ctx context.Context) ([]model.SearchResult, error) {
			return b.Search(ctx, o.sess, query)
		})
		if err != nil {
			if resilience.IsQuota(err) {
				o.sess.DisableService("search backend " + b.Name() + " reported quota exhaustion")
			}
			zap.L().Debug("search backend failed, trying next",
				zap.String("backend", b.Name()),
				zap.String("query", query),
				zap.Error(err),
			)
			continue
		}
		if len(results) == 0 {
			continue
		}
		if len(results) > o.maxResults {
			results = results[:o.maxResults]
		}
		zap.L().Debug("search succeeded",
			zap.String("backend", b.Name()),
			zap.String("query", query),
			zap.Int("results", len(results)),
		)
		return results
	}

	zap.L().Info("all search backends empty", zap.String("query", query))
	return nil
}

// SearchAll issues several targeted queries concurrently and returns results
// keyed by query. Queries are independent of one another; a failed query just
// maps to an empty slice.
func (o *Orchestrator) SearchAll(ctx context.Context, queries []string, concurrency int) map[string][]model.SearchResult {
	if concurrency <= 0 {
		concurrency = 4
	}

	var mu sync.Mutex
	out := make(map[string][]model.SearchResult, len(queries))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, q := range queries {
		g.Go(func() error {
			results := o.Search(gCtx, q)
			mu.Lock()
			out[q] = results
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return out
}
