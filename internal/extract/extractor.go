package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/talentbridge/enrich-cli/internal/model"
	"github.com/talentbridge/enrich-cli/internal/resilience"
	"github.com/talentbridge/enrich-cli/internal/session"
	"github.com/talentbridge/enrich-cli/pkg/anthropic"
)

const extractSystem = "You are a data extraction analyst. You extract ONLY facts that are " +
	"explicitly stated in the provided evidence. You never infer, guess, or fill in " +
	"common knowledge. If the evidence does not state a field's value, return null for " +
	"it with confidence 0. Respond with a single JSON object and nothing else."

const extractPromptTmpl = `Company: %s

Evidence (web search results — the ONLY permitted source of facts):
%s

Extract the following fields. For each field return {"value": <string or null>, "confidence": <0.0-1.0>}.
Confidence reflects how explicitly the evidence states the value, not how plausible it sounds.

Fields:
%s

Return a JSON object keyed by field name:
{%s}`

// Extractor fills a field schema from search snippets via the inference
// service, with a deterministic pattern fallback.
type Extractor struct {
	client       anthropic.Client
	model        string
	maxTokens    int64
	schema       Schema
	validators   Registry
	fallbackConf float64
}

// New creates an extractor. A nil client forces the pattern fallback on
// every call.
func New(client anthropic.Client, modelID string, maxTokens int64, schema Schema) *Extractor {
	if maxTokens <= 0 {
		maxTokens = 2048
	}
	return &Extractor{
		client:       client,
		model:        modelID,
		maxTokens:    maxTokens,
		schema:       schema,
		validators:   DefaultRegistry(),
		fallbackConf: 0.6,
	}
}

// WithFallbackConfidence overrides the flat confidence assigned to pattern
// fallback matches.
func (e *Extractor) WithFallbackConfidence(c float64) *Extractor {
	if c > 0 {
		e.fallbackConf = c
	}
	return e
}

// rawField is the per-field shape the model must return.
type rawField struct {
	Value      any     `json:"value"`
	Confidence float64 `json:"confidence"`
}

// Extract fills the requested fields from the search results. The returned
// result only contains fields that cleared both the confidence threshold and
// their validator; everything else is absent.
//
// Quota exhaustion sticky-disables the inference path on the session; any
// other inference failure falls back to pattern extraction for this call
// only.
func (e *Extractor) Extract(ctx context.Context, sess *session.Session, companyName string, results []model.SearchResult, fields Schema) model.ExtractionResult {
	if len(fields.Fields) == 0 {
		fields = e.schema
	}
	if len(results) == 0 {
		return model.ExtractionResult{}
	}

	if e.client == nil || sess.ServiceDisabled() {
		return e.fallback(companyName, results, fields)
	}

	parsed, err := e.inferenceExtract(ctx, sess, companyName, results, fields)
	if err != nil {
		if resilience.IsQuota(err) {
			sess.DisableService("extractor hit inference quota")
		} else {
			zap.L().Warn("inference extraction failed, using pattern fallback",
				zap.String("company", companyName),
				zap.Error(err),
			)
		}
		return e.fallback(companyName, results, fields)
	}

	return e.gate(companyName, parsed, fields)
}

func (e *Extractor) inferenceExtract(ctx context.Context, sess *session.Session, companyName string, results []model.SearchResult, fields Schema) (map[string]rawField, error) {
	prompt := e.buildPrompt(companyName, results, fields)

	cfg := resilience.DefaultRetryConfig()
	cfg.OnRetry = resilience.RetryLogger("anthropic", "extract")
	resp, err := resilience.DoVal(ctx, cfg, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		sess.WaitInference()
		return e.client.CreateMessage(ctx, anthropic.MessageRequest{
			Model:     e.model,
			MaxTokens: e.maxTokens,
			System:    extractSystem,
			Messages:  []anthropic.Message{{Role: "user", Content: prompt}},
		})
	})
	if err != nil {
		return nil, err
	}

	raw := anthropic.StripFences(resp.Text())
	var parsed map[string]rawField
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, eris.Wrap(err, "extract: parse model response")
	}
	return parsed, nil
}

// gate applies the confidence threshold then the per-field validator.
// Validators override confidence: a placeholder with reported confidence
// 0.95 is still dropped.
func (e *Extractor) gate(companyName string, parsed map[string]rawField, fields Schema) model.ExtractionResult {
	out := model.ExtractionResult{}
	for _, f := range fields.Fields {
		rf, ok := parsed[f.Key]
		if !ok || rf.Value == nil {
			continue
		}
		raw := coerceString(rf.Value)
		if raw == "" {
			continue
		}

		threshold := fields.Threshold(f.Key)
		if rf.Confidence < threshold {
			zap.L().Debug("field below confidence gate",
				zap.String("company", companyName),
				zap.String("field", f.Key),
				zap.Float64("confidence", rf.Confidence),
				zap.Float64("threshold", threshold),
			)
			continue
		}

		clean, ok := e.validators.Validate(f.Key, raw)
		if !ok {
			zap.L().Debug("field rejected by validator",
				zap.String("company", companyName),
				zap.String("field", f.Key),
				zap.String("raw", raw),
			)
			continue
		}

		out[f.Key] = model.ExtractedField{Value: clean, Confidence: rf.Confidence}
	}
	return out
}

func (e *Extractor) buildPrompt(companyName string, results []model.SearchResult, fields Schema) string {
	var evidence strings.Builder
	for i, r := range results {
		fmt.Fprintf(&evidence, "[%d] %s\n%s\n%s\n\n", i+1, r.Title, r.URL, r.Snippet)
	}

	var fieldLines strings.Builder
	var keyList []string
	for _, f := range fields.Fields {
		fmt.Fprintf(&fieldLines, "- %s: %s\n", f.Key, f.Description)
		keyList = append(keyList, fmt.Sprintf("%q: {...}", f.Key))
	}

	return fmt.Sprintf(extractPromptTmpl,
		companyName,
		strings.TrimSpace(evidence.String()),
		strings.TrimSpace(fieldLines.String()),
		strings.Join(keyList, ", "),
	)
}

// coerceString renders whatever JSON type the model produced as a string.
// Arrays join with "; " to match the multi-name convention.
func coerceString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := coerceString(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "; ")
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	case bool:
		return fmt.Sprintf("%t", t)
	default:
		return ""
	}
}
