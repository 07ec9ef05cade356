// Package search issues text queries against multiple backends in priority
// order and normalizes results. No backend failure is fatal: the orchestrator
// always returns a best-effort (possibly empty) result set.
package search

import (
	"context"

	"github.com/talentbridge/enrich-cli/internal/model"
	"github.com/talentbridge/enrich-cli/internal/session"
)

// Backend is one search strategy in the fallback chain. Adding or reordering
// backends is a data change on the orchestrator's list, not a control-flow
// rewrite.
type Backend interface {
	Name() string
	// Available reports whether the backend may be tried in this session
	// (e.g. the grounded backend requires the elevated tier and a live
	// inference service).
	Available(sess *session.Session) bool
	Search(ctx context.Context, sess *session.Session, query string) ([]model.SearchResult, error)
}
