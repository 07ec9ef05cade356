package scrape

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/talentbridge/enrich-cli/internal/extract"
	"github.com/talentbridge/enrich-cli/internal/model"
)

var (
	teamSizeRe   = regexp.MustCompile(`(?i)\b(\d{1,5})\s*(?:employees|people|person team|team members)\b`)
	teamLabelRe  = regexp.MustCompile(`(?i)^team size:?\s*(\d{1,5})`)
	amountTextRe = regexp.MustCompile(`\$\d+(?:\.\d+)?\s*[KMB]\b`)
	stageTextRe  = regexp.MustCompile(`(?i)\b(pre-seed|seed|series [a-e]|angel|bootstrapped)\b`)
	dateTextRe   = regexp.MustCompile(`(?i)\b(spring|summer|fall|autumn|winter|q[1-4]|january|february|march|april|may|june|july|august|september|october|november|december)\s+(20\d\d)\b`)
	locationRe   = regexp.MustCompile(`^[A-Z][A-Za-z .'-]+,\s*[A-Z]{2}(?:,\s*[A-Z]{2,3})?$|^[A-Z][A-Za-z .'-]+,\s*[A-Z][A-Za-z .'-]+$`)
)

// jobKeywords flag a short text as a plausible job-posting title.
var jobKeywords = []string{
	"engineer", "developer", "designer", "scientist", "manager", "analyst",
	"marketer", "marketing", "sales", "recruiter", "operations", "founding",
	"intern", "lead", "head of", "product", "researcher", "support",
	"account executive", "growth",
}

// extractWebsite finds the company's external website link, skipping
// navigation/footer chrome and anything on the social/aggregator deny list.
func extractWebsite(doc *goquery.Document) string {
	var website string
	doc.Find(`a[href^="http"]`).EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if insideAny(a, "nav, footer") {
			return true
		}
		href, _ := a.Attr("href")
		if clean, ok := extract.ValidateWebsite(href); ok {
			website = clean
			return false
		}
		return true
	})
	return website
}

// extractTeamSize looks for an employee-count mention and buckets it.
func extractTeamSize(doc *goquery.Document) string {
	body := textOf(doc.Selection)
	if m := teamSizeRe.FindStringSubmatch(body); m != nil {
		return extract.BucketTeamSize(m[1])
	}
	var bucket string
	doc.Find("span, div, p, li").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if m := teamLabelRe.FindStringSubmatch(textOf(s)); m != nil {
			bucket = extract.BucketTeamSize(m[1])
			return false
		}
		return true
	})
	return bucket
}

// extractLocation prefers a labeled location element, then falls back to the
// first "City, Region" shaped short text.
func extractLocation(doc *goquery.Document) string {
	var loc string
	doc.Find("span, div, dt, th, strong, b").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		label := strings.ToLower(textOf(s))
		if label != "location" && label != "location:" && label != "headquarters" {
			return true
		}
		hit := searchNear(s, func(container *goquery.Selection) *goquery.Selection {
			var match *goquery.Selection
			container.Find("span, div, dd, td, p").EachWithBreak(func(_ int, c *goquery.Selection) bool {
				text := textOf(c)
				if c.Children().Length() == 0 && text != "" && len(text) < 80 &&
					!strings.EqualFold(text, label) && locationRe.MatchString(text) {
					match = c
					return false
				}
				return true
			})
			return match
		})
		if hit != nil {
			loc = textOf(hit)
			return false
		}
		return true
	})
	if loc != "" {
		return loc
	}
	doc.Find("span, div, p, li").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := textOf(s)
		if s.Children().Length() == 0 && locationRe.MatchString(text) {
			loc = text
			return false
		}
		return true
	})
	return loc
}

// extractFunding pulls amount, stage, and date from prominent page text via
// pattern matching. Amount is normalized through the shared validator so a
// page quoting "$2.5 M" and an extractor answer of "$2.5M" land identically.
func extractFunding(doc *goquery.Document) (amount, stage, date string) {
	body := textOf(doc.Selection)
	if m := amountTextRe.FindString(body); m != "" {
		if clean, ok := extract.ValidateAmountRaised(strings.ReplaceAll(m, " ", "")); ok {
			amount = clean
		}
	}
	if m := stageTextRe.FindString(body); m != "" {
		if clean, ok := extract.ValidateFundingStage(m); ok {
			stage = clean
		}
	}
	if m := dateTextRe.FindString(body); m != "" {
		if clean, ok := extract.ValidateDateRaised(m); ok {
			date = clean
		}
	}
	return amount, stage, date
}

// extractJobs collects job-posting titles, preferring containers hinted as
// job sections, then any links/headings passing the keyword heuristic.
func extractJobs(doc *goquery.Document, baseURL string) []model.JobPosting {
	var jobs []model.JobPosting
	seen := make(map[string]struct{})

	add := func(title, href string) {
		title = strings.TrimSpace(title)
		if title == "" || len(title) > 90 || !looksLikeJobTitle(title) {
			return
		}
		key := strings.ToLower(title)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		jobs = append(jobs, model.JobPosting{Title: title, URL: resolveURL(baseURL, href)})
	}

	hinted := doc.Find(`[class*="job"], [id*="job"], [class*="career"], [id*="career"], [class*="hiring"]`)
	hinted.Find("a, h3, h4, li").Each(func(_ int, s *goquery.Selection) {
		if s.Children().Length() > 0 && s.Find("a").Length() > 0 {
			return
		}
		href, _ := s.Attr("href")
		add(textOf(s), href)
	})
	if len(jobs) > 0 {
		return jobs
	}

	doc.Find("a, h3, h4").Each(func(_ int, s *goquery.Selection) {
		if insideAny(s, "nav, footer") {
			return
		}
		href, _ := s.Attr("href")
		add(textOf(s), href)
	})
	return jobs
}

func looksLikeJobTitle(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range jobKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// jobsPageURL finds a link to a dedicated jobs/careers sub-page, or "".
func jobsPageURL(doc *goquery.Document, baseURL string) string {
	var href string
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		raw, _ := a.Attr("href")
		lowerHref := strings.ToLower(raw)
		lowerText := strings.ToLower(textOf(a))
		if strings.Contains(lowerHref, "/jobs") || strings.Contains(lowerHref, "/careers") ||
			lowerText == "jobs" || lowerText == "careers" || lowerText == "open roles" {
			href = raw
			return false
		}
		return true
	})
	if href == "" {
		return ""
	}
	return resolveURL(baseURL, href)
}

// mergeJobs appends secondary postings not already present by title.
func mergeJobs(primary, secondary []model.JobPosting) []model.JobPosting {
	seen := make(map[string]struct{}, len(primary))
	for _, j := range primary {
		seen[strings.ToLower(j.Title)] = struct{}{}
	}
	out := primary
	for _, j := range secondary {
		key := strings.ToLower(j.Title)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, j)
	}
	return out
}

// resolveURL makes href absolute against base; returns "" for junk.
func resolveURL(base, href string) string {
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	h, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return b.ResolveReference(h).String()
}
