package merge

import (
	"github.com/talentbridge/enrich-cli/internal/model"
)

// Key returns the identity key for a founder observation: profile link when
// present, else the normalized full name.
func Key(f model.FounderRecord) string {
	if f.LinkedIn != "" {
		return "link:" + f.LinkedIn
	}
	return "name:" + NormalizeName(f.FullName())
}

// Founders merges observations in input order. The first-seen spelling of a
// name wins; every other field comes from whichever source reported the
// higher confidence; merged confidence is the max across sources, never a
// sum or average.
func Founders(sources ...[]model.FounderRecord) []model.FounderRecord {
	var order []string
	byKey := make(map[string]model.FounderRecord)

	for _, src := range sources {
		for _, f := range src {
			k := Key(f)
			existing, seen := byKey[k]
			if !seen {
				order = append(order, k)
				byKey[k] = f
				continue
			}
			byKey[k] = combine(existing, f)
		}
	}

	out := make([]model.FounderRecord, 0, len(order))
	for _, k := range order {
		out = append(out, byKey[k])
	}
	return out
}

// FoldByName collapses observations sharing a normalized full name into one
// record, regardless of profile link. Persistence keys founders by name, so
// a linked and an unlinked sighting of the same person must land on a single
// row rather than racing each other for it.
func FoldByName(founders []model.FounderRecord) []model.FounderRecord {
	var order []string
	byName := make(map[string]model.FounderRecord)

	for _, f := range founders {
		k := NormalizeName(f.FullName())
		existing, seen := byName[k]
		if !seen {
			order = append(order, k)
			byName[k] = f
			continue
		}
		byName[k] = combine(existing, f)
	}

	out := make([]model.FounderRecord, 0, len(order))
	for _, k := range order {
		out = append(out, byName[k])
	}
	return out
}

// combine folds a later observation into an earlier one. Fields move only in
// the higher-confidence direction: a low-confidence tier never overwrites
// data a more trusted tier already supplied.
func combine(first, next model.FounderRecord) model.FounderRecord {
	out := first

	nextWins := next.Confidence > first.Confidence
	if out.Email == "" || (nextWins && next.Email != "") {
		if next.Email != "" {
			out.Email = next.Email
			out.EmailSource = next.EmailSource
			out.EmailVerified = next.EmailVerified
		}
	}
	if out.Role == "" || (nextWins && next.Role != "") {
		if next.Role != "" {
			out.Role = next.Role
		}
	}
	if out.Background == "" || (nextWins && next.Background != "") {
		if next.Background != "" {
			out.Background = next.Background
		}
	}
	if out.LinkedIn == "" && next.LinkedIn != "" {
		out.LinkedIn = next.LinkedIn
	}
	if next.Confidence > out.Confidence {
		out.Confidence = next.Confidence
	}
	// Review flags accumulate; a tier asking for review is never undone by
	// another tier merely disagreeing.
	out.NeedsManualReview = out.NeedsManualReview || next.NeedsManualReview

	return out
}
