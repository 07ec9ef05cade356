package extract

import (
	"regexp"
	"strings"
)

// Validator inspects a raw extracted value and either returns the cleaned
// value or rejects it. Validators run after the confidence gate and reject
// placeholder-looking values even when the model reported high confidence.
type Validator func(raw string) (string, bool)

// placeholderValues are strings models produce when they have no real answer.
// Checked lowercase, exact match.
var placeholderValues = map[string]bool{
	"team": true, "the team": true, "n/a": true, "na": true, "none": true,
	"unknown": true, "tbd": true, "not found": true, "not available": true,
	"null": true, "founder": true, "co-founder": true, "founders": true,
	"ceo": true, "staff": true,
}

// placeholderDomains never count as a company's own website.
var placeholderDomains = map[string]bool{
	"example.com": true, "example.org": true, "example.net": true,
	"test.com": true, "domain.com": true, "website.com": true,
	"company.com": true, "yourcompany.com": true, "mysite.com": true,
	"localhost": true,
}

// aggregatorDomains are social networks, search engines, and directories
// that show up in search results but are never the company's own site.
var aggregatorDomains = map[string]bool{
	"linkedin.com": true, "facebook.com": true, "twitter.com": true,
	"x.com": true, "instagram.com": true, "youtube.com": true,
	"tiktok.com": true, "crunchbase.com": true, "pitchbook.com": true,
	"ycombinator.com": true, "wikipedia.org": true, "google.com": true,
	"github.com": true, "medium.com": true, "angel.co": true,
	"wellfound.com": true, "glassdoor.com": true, "indeed.com": true,
	"bloomberg.com": true, "techcrunch.com": true, "duckduckgo.com": true,
}

var (
	nameTokenRe   = regexp.MustCompile(`^[A-Z][\p{L}'’.-]*$`)
	emailRe       = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	amountRe      = regexp.MustCompile(`^\$\d+(?:\.\d+)?[KMB]$`)
	teamSizeRe    = regexp.MustCompile(`^\d+(?:\s*-\s*\d+|\+)?$`)
	dateRaisedRe  = regexp.MustCompile(`(?i)^(?:(?:spring|summer|fall|autumn|winter|q[1-4]|january|february|march|april|may|june|july|august|september|october|november|december)\s+)?(?:19|20)\d{2}$`)
	domainRe      = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*(?:\.[a-z0-9][a-z0-9-]*)+$`)
)

// IsPlaceholder reports whether a value is a known no-answer stand-in.
func IsPlaceholder(s string) bool {
	return placeholderValues[strings.ToLower(strings.TrimSpace(s))]
}

// ValidateFounderName accepts one or more full names (semicolon separated).
// A name needs at least a first and last token; label-only strings like
// "Founder" or "Team" are rejected regardless of reported confidence.
func ValidateFounderName(raw string) (string, bool) {
	var kept []string
	for _, part := range strings.Split(raw, ";") {
		name := strings.TrimSpace(part)
		if name == "" || IsPlaceholder(name) {
			continue
		}
		tokens := strings.Fields(name)
		if len(tokens) < 2 || len(tokens) > 4 {
			continue
		}
		ok := true
		for _, t := range tokens {
			if IsPlaceholder(t) || !nameTokenRe.MatchString(t) {
				ok = false
				break
			}
		}
		if ok {
			kept = append(kept, name)
		}
	}
	if len(kept) == 0 {
		return "", false
	}
	return strings.Join(kept, "; "), true
}

// ValidateWebsite normalizes a URL or bare domain to a lowercase host and
// rejects placeholder and aggregator domains.
func ValidateWebsite(raw string) (string, bool) {
	host := NormalizeDomain(raw)
	if host == "" || !domainRe.MatchString(host) {
		return "", false
	}
	if placeholderDomains[host] || aggregatorDomains[host] || aggregatorDomains[registrableDomain(host)] {
		return "", false
	}
	return host, true
}

// ValidateLinkedIn accepts URLs carrying the expected host fragment and
// normalizes away scheme and www.
func ValidateLinkedIn(raw string) (string, bool) {
	v := strings.TrimSpace(strings.ToLower(raw))
	v = strings.TrimPrefix(v, "https://")
	v = strings.TrimPrefix(v, "http://")
	v = strings.TrimPrefix(v, "www.")
	v = strings.TrimSuffix(v, "/")
	if !strings.HasPrefix(v, "linkedin.com/in/") && !strings.HasPrefix(v, "linkedin.com/company/") {
		return "", false
	}
	if len(v) <= len("linkedin.com/in/") {
		return "", false
	}
	return v, true
}

// ValidateEmail accepts syntactically valid addresses that are not generic
// placeholders. hello@ addresses are the stand-in the seeding process used,
// so they never count as evidence of enrichment.
func ValidateEmail(raw string) (string, bool) {
	v := strings.TrimSpace(strings.ToLower(raw))
	if !emailRe.MatchString(v) {
		return "", false
	}
	local, domain, _ := strings.Cut(v, "@")
	if local == "hello" || local == "example" || local == "test" {
		return "", false
	}
	if placeholderDomains[domain] {
		return "", false
	}
	return v, true
}

// ValidateAmountRaised requires the canonical $<number>[KMB] form.
func ValidateAmountRaised(raw string) (string, bool) {
	v := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(raw), " ", ""))
	if !amountRe.MatchString(v) {
		return "", false
	}
	return v, true
}

// ValidateTeamSize accepts a number, a range, or an open bucket ("50+") and
// normalizes it into one of the standard buckets.
func ValidateTeamSize(raw string) (string, bool) {
	v := strings.TrimSpace(raw)
	if !teamSizeRe.MatchString(v) {
		return "", false
	}
	b := BucketTeamSize(v)
	return b, b != ""
}

var fundingStages = map[string]string{
	"pre-seed": "Pre-Seed", "preseed": "Pre-Seed", "seed": "Seed",
	"series a": "Series A", "series b": "Series B", "series c": "Series C",
	"series d": "Series D", "angel": "Angel", "bootstrapped": "Bootstrapped",
}

// ValidateFundingStage canonicalizes known round names.
func ValidateFundingStage(raw string) (string, bool) {
	stage, ok := fundingStages[strings.ToLower(strings.TrimSpace(raw))]
	return stage, ok
}

// ValidateDateRaised accepts season/quarter/month + year or a bare year.
func ValidateDateRaised(raw string) (string, bool) {
	v := strings.TrimSpace(raw)
	if !dateRaisedRe.MatchString(v) {
		return "", false
	}
	return v, true
}

// ValidateRole rejects label-only titles but accepts anything with substance.
func ValidateRole(raw string) (string, bool) {
	v := strings.TrimSpace(raw)
	if v == "" || IsPlaceholder(v) {
		return "", false
	}
	return v, true
}

// validateText accepts any non-placeholder free text.
func validateText(raw string) (string, bool) {
	v := strings.TrimSpace(raw)
	if v == "" || IsPlaceholder(v) {
		return "", false
	}
	return v, true
}

// Registry maps field keys to validators so adding an enrichable field means
// registering one function, not threading new conditionals through the
// extractor.
type Registry map[string]Validator

// DefaultRegistry returns the validator set for the default schema.
func DefaultRegistry() Registry {
	return Registry{
		FieldFounderNames:    ValidateFounderName,
		FieldFounderRole:     ValidateRole,
		FieldFounderLinkedIn: ValidateLinkedIn,
		FieldFounderEmail:    ValidateEmail,
		FieldWebsite:         ValidateWebsite,
		FieldLocation:        validateText,
		FieldIndustry:        validateText,
		FieldTeamSize:        ValidateTeamSize,
		FieldFundingStage:    ValidateFundingStage,
		FieldAmountRaised:    ValidateAmountRaised,
		FieldDateRaised:      ValidateDateRaised,
		FieldJobOpenings:     validateText,
	}
}

// Validate runs the field's validator, falling back to the generic text
// check for unregistered keys.
func (r Registry) Validate(key, raw string) (string, bool) {
	if v, ok := r[key]; ok {
		return v(raw)
	}
	return validateText(raw)
}

// NormalizeDomain lowercases and strips scheme, www, path, and port from a
// URL or bare domain.
func NormalizeDomain(raw string) string {
	v := strings.TrimSpace(strings.ToLower(raw))
	v = strings.TrimPrefix(v, "https://")
	v = strings.TrimPrefix(v, "http://")
	v = strings.TrimPrefix(v, "www.")
	if i := strings.IndexAny(v, "/?#"); i >= 0 {
		v = v[:i]
	}
	if i := strings.IndexByte(v, ':'); i >= 0 {
		v = v[:i]
	}
	return v
}

// registrableDomain reduces a host to its last two labels, enough to match
// the deny lists ("sub.linkedin.com" -> "linkedin.com").
func registrableDomain(host string) string {
	parts := strings.Split(host, ".")
	if len(parts) <= 2 {
		return host
	}
	return strings.Join(parts[len(parts)-2:], ".")
}

// BucketTeamSize maps a raw count or range onto the standard size buckets.
func BucketTeamSize(raw string) string {
	v := strings.TrimSpace(raw)
	// A range or open bucket keeps its lower bound for bucketing.
	v = strings.TrimSuffix(v, "+")
	if i := strings.IndexByte(v, '-'); i >= 0 {
		v = strings.TrimSpace(v[:i])
	}
	// More than seven digits is garbage, not a headcount.
	if v == "" || len(v) > 7 {
		return ""
	}
	n := 0
	for _, c := range v {
		if c < '0' || c > '9' {
			return ""
		}
		n = n*10 + int(c-'0')
	}
	switch {
	case n <= 0:
		return ""
	case n <= 10:
		return "1-10"
	case n <= 50:
		return "11-50"
	case n <= 200:
		return "51-200"
	case n <= 500:
		return "201-500"
	default:
		return "500+"
	}
}
