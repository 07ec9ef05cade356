package search

import (
	"context"

	"github.com/talentbridge/enrich-cli/internal/model"
	"github.com/talentbridge/enrich-cli/internal/session"
	"github.com/talentbridge/enrich-cli/pkg/jina"
)

// APIBackend queries the plain search API endpoint.
type APIBackend struct {
	client jina.Client
}

// NewAPI creates the search-API backend.
func NewAPI(client jina.Client) *APIBackend {
	return &APIBackend{client: client}
}

func (b *APIBackend) Name() string { return "api" }

func (b *APIBackend) Available(*session.Session) bool { return true }

func (b *APIBackend) Search(ctx context.Context, _ *session.Session, query string) ([]model.SearchResult, error) {
	resp, err := b.client.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	out := make([]model.SearchResult, 0, len(resp.Data))
	for _, r := range resp.Data {
		snippet := r.Description
		if snippet == "" {
			snippet = truncate(r.Content, 400)
		}
		out = append(out, model.SearchResult{
			Title:   r.Title,
			URL:     r.URL,
			Snippet: snippet,
		})
	}
	return out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
