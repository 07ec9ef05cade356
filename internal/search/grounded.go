package search

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"

	"github.com/talentbridge/enrich-cli/internal/model"
	"github.com/talentbridge/enrich-cli/internal/session"
	"github.com/talentbridge/enrich-cli/pkg/anthropic"
)

const groundedSystem = "You are a web research assistant. Use the web search tool to find " +
	"current results for the user's query, then reply with ONLY a JSON array of the " +
	"results you found: [{\"title\": \"...\", \"url\": \"...\", \"snippet\": \"...\"}]. " +
	"Do not add commentary. Do not invent results."

// GroundedBackend answers queries through the inference service's search
// grounding. It is only available on the elevated tier and consumes the
// session's single-slot inference budget.
type GroundedBackend struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewGrounded creates the grounded backend.
func NewGrounded(client anthropic.Client, modelID string, maxTokens int64) *GroundedBackend {
	if maxTokens <= 0 {
		maxTokens = 2048
	}
	return &GroundedBackend{client: client, model: modelID, maxTokens: maxTokens}
}

func (b *GroundedBackend) Name() string { return "grounded" }

// Available requires the elevated tier and a live inference service.
func (b *GroundedBackend) Available(sess *session.Session) bool {
	return sess.Elevated && !sess.ServiceDisabled()
}

func (b *GroundedBackend) Search(ctx context.Context, sess *session.Session, query string) ([]model.SearchResult, error) {
	// Only the grounded path draws on the inference budget.
	sess.WaitInference()

	resp, err := b.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:        b.model,
		MaxTokens:    b.maxTokens,
		System:       groundedSystem,
		Messages:     []anthropic.Message{{Role: "user", Content: query}},
		EnableSearch: true,
	})
	if err != nil {
		return nil, err
	}

	raw := anthropic.StripFences(resp.Text())
	var results []model.SearchResult
	if err := json.Unmarshal([]byte(raw), &results); err != nil {
		return nil, eris.Wrap(err, "search: parse grounded results")
	}

	out := results[:0]
	for _, r := range results {
		if r.URL == "" {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}
