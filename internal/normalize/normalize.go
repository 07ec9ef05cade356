// Package normalize detects and clears placeholder values that record
// seeding wrote into startup rows. A record whose website is just its own
// name with a TLD bolted on was never enriched; nulling those defaults lets
// the pipeline tell "never enriched" apart from "enriched."
package normalize

import (
	"regexp"
	"strings"

	"github.com/talentbridge/enrich-cli/internal/model"
)

// Seeding-path constants. Any field exactly equal to one of these was
// machine-generated, never discovered.
const (
	PlaceholderAmount  = "$1.5M"
	PlaceholderDate    = "Summer 2025"
	PlaceholderFounder = "Team"
)

// commonTLDs are the suffixes the seeding path appended to a slugified
// company name to fabricate a website.
var commonTLDs = []string{".com", ".io", ".ai", ".co", ".app", ".dev", ".xyz"}

// genericLocals are mailbox local parts that identify a company inbox, not a
// founder.
var genericLocals = map[string]struct{}{
	"hello": {}, "info": {}, "contact": {}, "team": {}, "support": {},
	"admin": {}, "sales": {}, "founders": {},
}

var nonSlugRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify reduces a company name to the lowercase alphanumeric form the
// seeding path used when fabricating domains.
func Slugify(name string) string {
	return nonSlugRe.ReplaceAllString(strings.ToLower(name), "")
}

// IsPlaceholderWebsite reports whether website is exactly the slugified
// company name plus a common TLD, with or without scheme and www.
func IsPlaceholderWebsite(website, companyName string) bool {
	if website == "" || companyName == "" {
		return false
	}
	host := strings.ToLower(website)
	host = strings.TrimPrefix(host, "https://")
	host = strings.TrimPrefix(host, "http://")
	host = strings.TrimPrefix(host, "www.")
	host = strings.TrimSuffix(host, "/")

	slug := Slugify(companyName)
	if slug == "" {
		return false
	}
	for _, tld := range commonTLDs {
		if host == slug+tld {
			return true
		}
	}
	return false
}

// IsPlaceholderEmail reports whether email is a generic company inbox rather
// than a person's address.
func IsPlaceholderEmail(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 {
		return false
	}
	_, generic := genericLocals[strings.ToLower(email[:at])]
	return generic
}

// IsPlaceholderFounder reports whether the founder name field holds the
// generic seeding label instead of a person.
func IsPlaceholderFounder(first, last string) bool {
	name := strings.TrimSpace(first + " " + last)
	return name == "" || strings.EqualFold(name, PlaceholderFounder)
}

// Record clears every placeholder field on r in place and returns the names
// of the fields it cleared. A cleared record re-enters the enrichment pool.
// Running it again on the result is a no-op: cleared fields are empty and
// empty fields never match a placeholder fingerprint.
func Record(r *model.StartupRecord) []string {
	var cleared []string

	if IsPlaceholderWebsite(r.Website, r.Name) {
		r.Website = ""
		cleared = append(cleared, "website")
	}
	if IsPlaceholderEmail(r.FounderEmail) {
		r.FounderEmail = ""
		cleared = append(cleared, "founder_email")
	}
	if r.FounderFirst != "" || r.FounderLast != "" {
		if IsPlaceholderFounder(r.FounderFirst, r.FounderLast) {
			r.FounderFirst = ""
			r.FounderLast = ""
			cleared = append(cleared, "founder_name")
		}
	}
	if r.AmountRaised == PlaceholderAmount {
		r.AmountRaised = ""
		cleared = append(cleared, "amount_raised")
	}
	if r.DateRaised == PlaceholderDate {
		r.DateRaised = ""
		cleared = append(cleared, "date_raised")
	}

	if len(cleared) > 0 {
		r.NeedsEnrichment = true
		if r.Status == model.StatusComplete {
			r.Status = model.StatusPending
		}
	}
	return cleared
}
