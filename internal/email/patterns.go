// Package email discovers founder contact addresses by generating candidate
// mailboxes from name and domain patterns and checking them against a
// verification service.
package email

import (
	"regexp"
	"strings"

	"github.com/talentbridge/enrich-cli/internal/merge"
	"github.com/talentbridge/enrich-cli/internal/model"
)

// patternSpec generates one candidate local part from normalized name parts.
type patternSpec struct {
	id    string
	build func(first, last string) string
}

// patterns is ordered by how common each convention is at small companies.
// Generation is deterministic: same name and domain always yield the same
// candidates in the same order.
var patterns = []patternSpec{
	{"first", func(f, _ string) string { return f }},
	{"first.last", func(f, l string) string { return f + "." + l }},
	{"firstlast", func(f, l string) string { return f + l }},
	{"f.last", func(f, l string) string { return f[:1] + "." + l }},
	{"flast", func(f, l string) string { return f[:1] + l }},
	{"last", func(_, l string) string { return l }},
	{"first_last", func(f, l string) string { return f + "_" + l }},
	{"firstl", func(f, l string) string { return f + l[:1] }},
}

var nonAlphaRe = regexp.MustCompile(`[^a-z]`)

// titleWords disqualify a token from being a genuine name part. These show
// up when a name was regex-extracted from messy text.
var titleWords = map[string]struct{}{
	"dr": {}, "mr": {}, "mrs": {}, "ms": {}, "prof": {}, "jr": {}, "sr": {},
	"ceo": {}, "cto": {}, "coo": {}, "founder": {}, "cofounder": {},
	"the": {}, "team": {}, "and": {},
}

// localPart lowercases a name token, strips diacritics, and drops anything
// that cannot appear in a mailbox local part.
func localPart(token string) string {
	return nonAlphaRe.ReplaceAllString(merge.NormalizeName(token), "")
}

// LegitimateName reports whether a first/last pair is plausible input for
// pattern generation. Single letters, title words, and regex-extraction
// garbage are skipped rather than guessed at.
func LegitimateName(first, last string) bool {
	lastTokens := strings.Fields(last)
	if len(lastTokens) == 0 {
		return false
	}
	f, l := localPart(first), localPart(lastTokens[len(lastTokens)-1])
	if len(f) < 2 || len(l) < 2 || len(f) > 20 || len(l) > 20 {
		return false
	}
	if _, bad := titleWords[f]; bad {
		return false
	}
	if _, bad := titleWords[l]; bad {
		return false
	}
	return true
}

// Candidates generates up to max candidate addresses for a founder at
// domain, in pattern-likelihood order. Returns nil when the name fails the
// legitimacy check.
func Candidates(first, last, domain string, max int) []model.EmailCandidate {
	if !LegitimateName(first, last) || domain == "" {
		return nil
	}
	if max <= 0 || max > len(patterns) {
		max = len(patterns)
	}

	f := localPart(first)
	// A multi-token last name contributes its final token ("de la Cruz" →
	// "cruz"), matching how people usually pick mailbox names.
	lastTokens := strings.Fields(last)
	l := localPart(lastTokens[len(lastTokens)-1])

	seen := make(map[string]struct{}, max)
	out := make([]model.EmailCandidate, 0, max)
	for _, p := range patterns {
		if len(out) == max {
			break
		}
		addr := p.build(f, l) + "@" + domain
		if _, dup := seen[addr]; dup {
			continue
		}
		seen[addr] = struct{}{}
		out = append(out, model.EmailCandidate{Address: addr, Pattern: p.id})
	}
	return out
}
