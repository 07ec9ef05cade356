package search

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/talentbridge/enrich-cli/internal/model"
	"github.com/talentbridge/enrich-cli/internal/session"
	"github.com/talentbridge/enrich-cli/pkg/browser"
)

// PageRenderer renders a URL and returns the document HTML. Satisfied by
// *browser.Session.
type PageRenderer interface {
	Navigate(ctx context.Context, url string, mode browser.WaitMode, timeout time.Duration) (string, error)
}

// RenderedBackend scrapes a search engine's HTML results page through the
// headless browser. Last resort when the API backends return nothing.
type RenderedBackend struct {
	renderer PageRenderer
	baseURL  string
	timeout  time.Duration
}

// NewRendered creates the rendered-HTML backend.
func NewRendered(renderer PageRenderer) *RenderedBackend {
	return &RenderedBackend{
		renderer: renderer,
		baseURL:  "https://html.duckduckgo.com/html/",
		timeout:  20 * time.Second,
	}
}

// WithBaseURL overrides the results-page URL (for tests).
func (b *RenderedBackend) WithBaseURL(u string) *RenderedBackend {
	b.baseURL = u
	return b
}

func (b *RenderedBackend) Name() string { return "rendered" }

func (b *RenderedBackend) Available(*session.Session) bool { return b.renderer != nil }

func (b *RenderedBackend) Search(ctx context.Context, _ *session.Session, query string) ([]model.SearchResult, error) {
	target := b.baseURL + "?q=" + url.QueryEscape(query)
	html, err := b.renderer.Navigate(ctx, target, browser.WaitPermissive, b.timeout)
	if err != nil {
		return nil, eris.Wrap(err, "search: render results page")
	}
	return ParseResultsHTML(html)
}

// ParseResultsHTML extracts (title, url, snippet) tuples from a rendered
// results page.
func ParseResultsHTML(html string) ([]model.SearchResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, eris.Wrap(err, "search: parse results html")
	}

	var out []model.SearchResult
	doc.Find(".result").Each(func(_ int, s *goquery.Selection) {
		link := s.Find(".result__a").First()
		href, _ := link.Attr("href")
		title := strings.TrimSpace(link.Text())
		snippet := strings.TrimSpace(s.Find(".result__snippet").First().Text())
		href = cleanRedirect(href)
		if href == "" || title == "" {
			return
		}
		out = append(out, model.SearchResult{Title: title, URL: href, Snippet: snippet})
	})
	return out, nil
}

// cleanRedirect unwraps the engine's /l/?uddg= redirect links to the real
// destination URL.
func cleanRedirect(href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if dest := u.Query().Get("uddg"); dest != "" {
		if unescaped, err := url.QueryUnescape(dest); err == nil {
			return unescaped
		}
		return dest
	}
	return href
}
