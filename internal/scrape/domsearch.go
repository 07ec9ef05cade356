package scrape

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// maxClimb bounds how far searchNear walks up from a starting element.
// Profile cards rarely nest deeper than a handful of wrappers.
const maxClimb = 5

const headingSelector = "h1, h2, h3, h4, h5, h6"

var whitespaceRe = regexp.MustCompile(`\s+`)

// textOf returns the selection's text with whitespace collapsed.
func textOf(sel *goquery.Selection) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(sel.Text(), " "))
}

// searchNear looks for an element matching find in the containers around
// start. It climbs one ancestor level at a time up to maxClimb: at each level
// it first searches the ancestor's own subtree, then the current element's
// siblings ordered by proximity, so the nearest match always wins over a
// farther one.
func searchNear(start *goquery.Selection, find func(*goquery.Selection) *goquery.Selection) *goquery.Selection {
	cur := start
	for level := 0; level < maxClimb; level++ {
		parent := cur.Parent()
		if parent.Length() == 0 {
			return nil
		}
		if hit := find(parent); hit != nil && hit.Length() > 0 {
			return hit
		}
		if hit := searchSiblings(cur, find); hit != nil && hit.Length() > 0 {
			return hit
		}
		cur = parent
	}
	return nil
}

// searchSiblings probes the element's siblings in order of index distance,
// alternating before and after.
func searchSiblings(sel *goquery.Selection, find func(*goquery.Selection) *goquery.Selection) *goquery.Selection {
	if sel.Length() == 0 {
		return nil
	}
	node := sel.Get(0)
	sibs := sel.Parent().Children()
	idx := -1
	sibs.Each(func(i int, s *goquery.Selection) {
		if s.Get(0) == node {
			idx = i
		}
	})
	if idx < 0 {
		return nil
	}
	for dist := 1; dist < sibs.Length(); dist++ {
		for _, j := range []int{idx - dist, idx + dist} {
			if j < 0 || j >= sibs.Length() || j == idx {
				continue
			}
			if hit := find(sibs.Eq(j)); hit != nil && hit.Length() > 0 {
				return hit
			}
		}
	}
	return nil
}

// headingMatching returns the first heading whose text equals one of labels
// (case-insensitive), or nil.
func headingMatching(doc *goquery.Document, labels []string) *goquery.Selection {
	var found *goquery.Selection
	doc.Find(headingSelector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.ToLower(textOf(s))
		for _, l := range labels {
			if text == l {
				found = s
				return false
			}
		}
		return true
	})
	return found
}

// elementsAfter collects up to limit elements that follow marker in document
// order.
func elementsAfter(doc *goquery.Document, marker *goquery.Selection, limit int) []*goquery.Selection {
	if marker == nil || marker.Length() == 0 {
		return nil
	}
	mark := marker.Get(0)
	var out []*goquery.Selection
	passed := false
	doc.Find("*").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.Get(0) == mark {
			passed = true
			return true
		}
		if !passed {
			return true
		}
		out = append(out, s)
		return len(out) < limit
	})
	return out
}

// insideAny reports whether sel sits inside an ancestor matching selector.
func insideAny(sel *goquery.Selection, selector string) bool {
	return sel.ParentsFiltered(selector).Length() > 0
}
