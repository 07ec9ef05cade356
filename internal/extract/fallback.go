package extract

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/talentbridge/enrich-cli/internal/model"
)

// Pattern fallback: when the inference service is disabled, over quota, or
// unavailable, each field is matched against hand-built patterns over the
// snippet text. Matches carry a flat confidence; misses are simply absent.

var (
	// "Jane Doe, Co-founder and CEO" / "founded by John Smith"
	nameBeforeTitleRe = regexp.MustCompile(`([A-Z][\p{L}'’.-]+(?: [A-Z][\p{L}'’.-]+){1,3}),? (?:\(?[Cc]o-?[Ff]ounder|[Ff]ounder|CEO|CTO)`)
	foundedByRe       = regexp.MustCompile(`[Ff]ounded by ([A-Z][\p{L}'’.-]+(?: [A-Z][\p{L}'’.-]+){1,3})`)
	linkedinRe        = regexp.MustCompile(`linkedin\.com/in/[A-Za-z0-9%_-]+`)
	emailFallbackRe   = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	amountFallbackRe  = regexp.MustCompile(`\$\d+(?:\.\d+)?\s?[KMBkmb]\b`)
	stageFallbackRe   = regexp.MustCompile(`(?i)\b(pre-?seed|seed|series [a-d]|angel)\b(?:\s+(?:round|funding|stage))?`)
	teamFallbackRe    = regexp.MustCompile(`(?i)\b(\d{1,4})\s*(?:\+\s*)?(?:employees|people|person team|team members)\b`)
	dateFallbackRe    = regexp.MustCompile(`(?i)\b(?:spring|summer|fall|autumn|winter|q[1-4]|january|february|march|april|may|june|july|august|september|october|november|december)\s+(?:19|20)\d{2}\b`)
	urlRe             = regexp.MustCompile(`https?://[^\s"')\]]+`)
)

// fallback runs pattern extraction over the concatenated snippets. Results
// still pass through the validators so a garbage match cannot leak through.
func (e *Extractor) fallback(companyName string, results []model.SearchResult, fields Schema) model.ExtractionResult {
	var b strings.Builder
	for _, r := range results {
		b.WriteString(r.Title)
		b.WriteByte('\n')
		b.WriteString(r.Snippet)
		b.WriteByte('\n')
	}
	text := b.String()

	out := model.ExtractionResult{}
	for _, f := range fields.Fields {
		raw := e.matchField(f.Key, text, results, companyName)
		if raw == "" {
			continue
		}
		clean, ok := e.validators.Validate(f.Key, raw)
		if !ok {
			continue
		}
		// Fields with a stricter-than-default gate (emails) never accept a
		// pattern match; those wait for the verification tier.
		if fields.Threshold(f.Key) > fields.DefaultMinConfidence {
			continue
		}
		out[f.Key] = model.ExtractedField{Value: clean, Confidence: e.fallbackConf}
	}

	zap.L().Debug("pattern fallback extraction",
		zap.String("company", companyName),
		zap.Int("fields", len(out)),
	)
	return out
}

func (e *Extractor) matchField(key, text string, results []model.SearchResult, companyName string) string {
	switch key {
	case FieldFounderNames:
		names := uniqueStrings(append(
			captures(nameBeforeTitleRe, text),
			captures(foundedByRe, text)...,
		))
		return strings.Join(names, "; ")
	case FieldFounderLinkedIn:
		return linkedinRe.FindString(text)
	case FieldFounderEmail:
		return emailFallbackRe.FindString(text)
	case FieldWebsite:
		return fallbackWebsite(results, companyName)
	case FieldAmountRaised:
		m := amountFallbackRe.FindString(text)
		return strings.ReplaceAll(m, " ", "")
	case FieldFundingStage:
		if m := stageFallbackRe.FindStringSubmatch(text); m != nil {
			return m[1]
		}
		return ""
	case FieldTeamSize:
		if m := teamFallbackRe.FindStringSubmatch(text); m != nil {
			return m[1]
		}
		return ""
	case FieldDateRaised:
		return dateFallbackRe.FindString(text)
	default:
		// Free-text fields have no reliable pattern; stay absent rather
		// than guessing.
		return ""
	}
}

// fallbackWebsite picks the first result URL whose host survives the
// website validator's deny lists, preferring hosts that echo the company
// name.
func fallbackWebsite(results []model.SearchResult, companyName string) string {
	slug := slugify(companyName)
	var first string
	for _, r := range results {
		host, ok := ValidateWebsite(r.URL)
		if !ok {
			continue
		}
		if slug != "" && strings.Contains(strings.ReplaceAll(host, "-", ""), slug) {
			return host
		}
		if first == "" {
			first = host
		}
	}
	return first
}

func captures(re *regexp.Regexp, text string) []string {
	var out []string
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		if len(m) > 1 {
			out = append(out, m[1])
		}
	}
	return out
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		key := strings.ToLower(strings.TrimSpace(s))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, strings.TrimSpace(s))
	}
	return out
}

// slugify lowercases a company name and strips everything but letters and
// digits, matching how seed websites were derived from names.
func slugify(name string) string {
	var b strings.Builder
	for _, c := range strings.ToLower(name) {
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			b.WriteRune(c)
		}
	}
	return b.String()
}
