package scrape

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/talentbridge/enrich-cli/internal/merge"
	"github.com/talentbridge/enrich-cli/internal/model"
)

// Observation confidence tiers. A candidate backed by an explicit
// founder-style role reads stronger than one inferred purely from sitting in
// the founders section.
const (
	confRoleMention = 0.8
	confSectionOnly = 0.6
)

var founderSectionLabels = []string{
	"founders",
	"active founders",
	"founding team",
	"team",
	"meet the team",
	"our team",
	"leadership",
}

var (
	nameShapedRe  = regexp.MustCompile(`^[A-Z][a-zA-Z'.-]+(?: [A-Z][a-zA-Z'.-]*){1,3}$`)
	roleMentionRe = regexp.MustCompile(`(?i)\b(co[- ]?founder|founder|founding|ceo|cto|coo|cpo|chief \w+ officer|president)\b`)
	profileLinkRe = regexp.MustCompile(`(?i)(linkedin\.com/in/|twitter\.com/|x\.com/)[\w%.-]+`)
)

// bioMarkers are phrases that make a blurb read as biographical prose even
// when it never names a role. Many profile pages describe a founder without
// using the word "founder" anywhere near them.
var bioMarkers = []string{
	"previously", "studied", "led ", "building", "worked at",
	"graduated", "before that", "spent", "founded",
}

// nameStopTokens are capitalized words that disqualify a phrase from being a
// person name. Headings like "Open Roles" or "Meet The Team" are name-shaped
// to the regex but never names.
var nameStopTokens = map[string]struct{}{
	"the": {}, "our": {}, "your": {}, "team": {}, "about": {}, "meet": {},
	"contact": {}, "privacy": {}, "terms": {}, "jobs": {}, "careers": {},
	"open": {}, "roles": {}, "news": {}, "blog": {}, "home": {}, "sign": {},
	"log": {}, "company": {}, "read": {}, "more": {}, "learn": {}, "view": {},
	"all": {}, "san": {}, "new": {}, "united": {},
}

// nameShaped reports whether text looks like a person name: two to four
// capitalized tokens, none of them a known non-name word.
func nameShaped(text string) bool {
	if !nameShapedRe.MatchString(text) {
		return false
	}
	for _, tok := range strings.Fields(text) {
		if _, stop := nameStopTokens[strings.ToLower(strings.Trim(tok, ".'-"))]; stop {
			return false
		}
	}
	return true
}

// extractFounders runs the layered founder search over a rendered profile
// page. Strategies run in order and the first one producing candidates wins;
// the last-resort global link scan only fires when everything structural came
// up empty.
func (s *Scraper) extractFounders(doc *goquery.Document, companyName string) []model.FounderRecord {
	heading := headingMatching(doc, founderSectionLabels)

	var found []model.FounderRecord
	if heading != nil {
		section := sectionContainer(heading)
		if section != nil {
			found = s.foundersFromSection(section, companyName)
		}
		if len(found) == 0 {
			found = s.foundersFromText(doc, heading, companyName)
		}
	}
	if len(found) == 0 {
		found = s.foundersFromGlobalLinks(doc, companyName)
	}
	return merge.Founders(found)
}

// sectionContainer walks up from the section heading until an ancestor holds
// at least one candidate name element, and returns that ancestor.
func sectionContainer(heading *goquery.Selection) *goquery.Selection {
	headText := textOf(heading)
	cur := heading
	for level := 0; level < maxClimb; level++ {
		parent := cur.Parent()
		if parent.Length() == 0 {
			return nil
		}
		hasNames := false
		nameElements(parent).Each(func(_ int, s *goquery.Selection) {
			if textOf(s) != headText {
				hasNames = true
			}
		})
		if hasNames {
			return parent
		}
		cur = parent
	}
	return nil
}

// nameElements returns the innermost elements within container whose text is
// name-shaped. Wrapper elements that merely contain a name-shaped descendant
// are skipped so each person yields one element.
func nameElements(container *goquery.Selection) *goquery.Selection {
	candidates := container.Find("h1, h2, h3, h4, h5, h6, strong, b, a, p, span, li, div")
	return candidates.FilterFunction(func(_ int, s *goquery.Selection) bool {
		if !nameShaped(textOf(s)) {
			return false
		}
		inner := false
		s.Children().Each(func(_ int, c *goquery.Selection) {
			if nameShaped(textOf(c)) {
				inner = true
			}
		})
		return !inner
	})
}

// foundersFromSection extracts one FounderRecord per name element in the
// founders section, pairing each name with the nearest bio and profile link.
func (s *Scraper) foundersFromSection(section *goquery.Selection, companyName string) []model.FounderRecord {
	companyKey := merge.NormalizeName(companyName)
	var out []model.FounderRecord
	nameElements(section).Each(func(_ int, nameEl *goquery.Selection) {
		name := textOf(nameEl)
		if isSectionLabel(name) || merge.NormalizeName(name) == companyKey {
			return
		}
		f := founderFromName(name)
		f.LinkedIn = nearestProfileLink(nameEl)
		bio, fromRole := nearestBio(nameEl, name)
		if bio != "" {
			f.Background = bio
			if role := extractRole(bio); role != "" {
				f.Role = role
			}
		}
		if fromRole {
			f.Confidence = confRoleMention
		} else {
			// Inside the founders section; membership alone is evidence,
			// just weaker than an explicit role.
			f.Confidence = confSectionOnly
		}
		out = append(out, f)
	})
	return out
}

// foundersFromText scans elements after the section heading for name-shaped
// text. Used when the section holds no structural name elements at all.
func (s *Scraper) foundersFromText(doc *goquery.Document, heading *goquery.Selection, companyName string) []model.FounderRecord {
	companyKey := merge.NormalizeName(companyName)
	var out []model.FounderRecord
	for _, el := range elementsAfter(doc, heading, 200) {
		if len(out) >= 10 {
			break
		}
		if el.Children().Length() > 0 {
			continue
		}
		text := textOf(el)
		if !nameShaped(text) || isSectionLabel(text) || merge.NormalizeName(text) == companyKey {
			continue
		}
		f := founderFromName(text)
		f.Confidence = confSectionOnly
		f.LinkedIn = nearestProfileLink(el)
		out = append(out, f)
	}
	return out
}

// foundersFromGlobalLinks is the last resort: profile links anywhere outside
// navigation and footer regions, each paired with the nearest name-shaped
// text.
func (s *Scraper) foundersFromGlobalLinks(doc *goquery.Document, companyName string) []model.FounderRecord {
	companyKey := merge.NormalizeName(companyName)
	var out []model.FounderRecord
	doc.Find(`a[href*="linkedin.com/in/"]`).Each(func(_ int, link *goquery.Selection) {
		if insideAny(link, "nav, footer") {
			return
		}
		name := textOf(link)
		if !nameShaped(name) {
			hit := searchNear(link, func(container *goquery.Selection) *goquery.Selection {
				match := nameElements(container)
				if match.Length() == 0 {
					return nil
				}
				return match.First()
			})
			if hit == nil {
				return
			}
			name = textOf(hit)
		}
		if isSectionLabel(name) || merge.NormalizeName(name) == companyKey {
			return
		}
		f := founderFromName(name)
		f.LinkedIn, _ = link.Attr("href")
		f.Confidence = confSectionOnly
		out = append(out, f)
	})
	return out
}

// personContainer returns the widest ancestor of nameEl that still holds no
// other name element. Bios and profile links are only trusted inside that
// boundary; past it they could belong to the neighboring card.
func personContainer(nameEl *goquery.Selection) *goquery.Selection {
	cur := nameEl
	for level := 0; level < maxClimb; level++ {
		parent := cur.Parent()
		if parent.Length() == 0 {
			break
		}
		if nameElements(parent).Length() > 1 {
			break
		}
		cur = parent
	}
	if cur == nameEl {
		return nil
	}
	return cur
}

// nearestBio finds a biographical blurb in the name's card. It returns the
// text and whether it carried an explicit founder-style role mention; a
// blurb with no role is still accepted on biographical markers, since the
// caller already knows the element sits inside the founders section.
func nearestBio(nameEl *goquery.Selection, name string) (string, bool) {
	card := personContainer(nameEl)
	if card == nil {
		return "", false
	}
	var bio string
	fromRole := false
	card.Find("p, div, span").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.Children().Length() > 0 {
			return true
		}
		text := textOf(s)
		if text == name || len(text) < 40 {
			return true
		}
		if roleMentionRe.MatchString(text) {
			bio, fromRole = text, true
			return false
		}
		if bio == "" && hasBioMarker(text) {
			bio = text
		}
		return true
	})
	return bio, fromRole
}

// nearestProfileLink returns a personal profile URL on the name element or in
// its card, or "".
func nearestProfileLink(nameEl *goquery.Selection) string {
	if href, ok := nameEl.Attr("href"); ok && profileLinkRe.MatchString(href) {
		return href
	}
	card := personContainer(nameEl)
	if card == nil {
		return ""
	}
	var link string
	card.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if profileLinkRe.MatchString(href) {
			link = href
			return false
		}
		return true
	})
	return link
}

func hasBioMarker(text string) bool {
	lower := strings.ToLower(text)
	for _, m := range bioMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

func isSectionLabel(text string) bool {
	lower := strings.ToLower(text)
	for _, l := range founderSectionLabels {
		if lower == l {
			return true
		}
	}
	return false
}

// extractRole pulls a canonical role phrase out of a bio.
func extractRole(bio string) string {
	m := roleMentionRe.FindString(bio)
	if m == "" {
		return ""
	}
	lower := strings.ToLower(m)
	// Short acronym roles stay uppercase.
	if len(lower) <= 4 && !strings.ContainsAny(lower, " -") {
		return strings.ToUpper(lower)
	}
	return cases.Title(language.English).String(lower)
}

// founderFromName splits a display name into first and last parts.
func founderFromName(name string) model.FounderRecord {
	parts := strings.Fields(name)
	f := model.FounderRecord{FirstName: parts[0]}
	if len(parts) > 1 {
		f.LastName = strings.Join(parts[1:], " ")
	}
	return f
}
