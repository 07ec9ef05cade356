package scrape

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/talentbridge/enrich-cli/internal/model"
	"github.com/talentbridge/enrich-cli/pkg/browser"
)

// Renderer loads a URL in a headless browser and returns the rendered HTML.
// Satisfied by *browser.Session.
type Renderer interface {
	Navigate(ctx context.Context, url string, mode browser.WaitMode, timeout time.Duration) (string, error)
}

// Scraper recovers structured startup facts from a rendered company profile
// page. It is the primary evidence tier; search/extraction only fills what
// the page did not yield.
type Scraper struct {
	renderer       Renderer
	navTimeout     time.Duration
	minJobsPrimary int
}

// New builds a Scraper. Zero navTimeout and minJobsPrimary get defaults
// (20s, 3).
func New(r Renderer, navTimeout time.Duration, minJobsPrimary int) *Scraper {
	if navTimeout <= 0 {
		navTimeout = 20 * time.Second
	}
	if minJobsPrimary <= 0 {
		minJobsPrimary = 3
	}
	return &Scraper{renderer: r, navTimeout: navTimeout, minJobsPrimary: minJobsPrimary}
}

// Scrape loads the profile page and runs every extraction heuristic over it.
// Navigation failure after the permissive retry, and obvious error pages,
// return a nil PageData with an error; the caller skips the page tier and
// moves on.
func (s *Scraper) Scrape(ctx context.Context, pageURL, companyName string) (*model.PageData, error) {
	html, err := s.navigate(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, eris.Wrap(err, "scrape: parse html")
	}
	if isErrorPage(doc) {
		return nil, eris.Errorf("scrape: error page at %s", pageURL)
	}

	// Script and style text would pollute the pattern-matching extractors.
	doc.Find("script, style, noscript").Remove()

	page := &model.PageData{URL: pageURL, CompanyName: companyName}
	page.Website = extractWebsite(doc)
	page.TeamSize = extractTeamSize(doc)
	page.Location = extractLocation(doc)
	page.AmountRaised, page.FundingStage, page.DateRaised = extractFunding(doc)
	page.Founders = s.extractFounders(doc, companyName)
	page.Jobs = extractJobs(doc, pageURL)

	if len(page.Jobs) < s.minJobsPrimary {
		if jobsURL := jobsPageURL(doc, pageURL); jobsURL != "" && jobsURL != pageURL {
			page.Jobs = mergeJobs(page.Jobs, s.scrapeJobsPage(ctx, jobsURL))
		}
	}

	zap.L().Debug("scraped profile page",
		zap.String("url", pageURL),
		zap.Int("founders", len(page.Founders)),
		zap.Int("jobs", len(page.Jobs)))
	return page, nil
}

// navigate tries the strict wait condition first, then retries once with the
// permissive one. Pages that never fire a stable visibility signal still
// often have usable DOM by ready-state.
func (s *Scraper) navigate(ctx context.Context, pageURL string) (string, error) {
	html, err := s.renderer.Navigate(ctx, pageURL, browser.WaitVisibleBody, s.navTimeout)
	if err == nil {
		return html, nil
	}
	zap.L().Debug("strict navigation failed, retrying permissive",
		zap.String("url", pageURL), zap.Error(err))

	html, err = s.renderer.Navigate(ctx, pageURL, browser.WaitPermissive, s.navTimeout)
	if err != nil {
		return "", eris.Wrapf(err, "scrape: navigate %s", pageURL)
	}
	return html, nil
}

// scrapeJobsPage fetches a jobs sub-page best-effort; failures just mean no
// extra postings.
func (s *Scraper) scrapeJobsPage(ctx context.Context, jobsURL string) []model.JobPosting {
	html, err := s.renderer.Navigate(ctx, jobsURL, browser.WaitPermissive, s.navTimeout)
	if err != nil {
		zap.L().Debug("jobs sub-page fetch failed", zap.String("url", jobsURL), zap.Error(err))
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	return extractJobs(doc, jobsURL)
}

var errorPageMarkers = []string{
	"404", "not found", "page not found", "doesn't exist", "does not exist",
}

// isErrorPage detects soft 404s by title and headline text.
func isErrorPage(doc *goquery.Document) bool {
	title := strings.ToLower(textOf(doc.Find("title").First()))
	h1 := strings.ToLower(textOf(doc.Find("h1").First()))
	for _, m := range errorPageMarkers {
		if strings.Contains(title, m) || (h1 != "" && strings.Contains(h1, m)) {
			return true
		}
	}
	return false
}
