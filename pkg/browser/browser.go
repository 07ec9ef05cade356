// Package browser wraps chromedp behind the small surface the scraper needs:
// navigate, wait for a condition, grab rendered HTML, close.
package browser

import (
	"context"
	"os"
	"time"

	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"
)

// WaitMode controls how long Navigate waits for page content.
type WaitMode int

const (
	// WaitVisibleBody waits until the body element is visible, then settles
	// briefly for client-side rendering.
	WaitVisibleBody WaitMode = iota
	// WaitPermissive only waits for the document to be ready. Used on the
	// retry after a strict-wait navigation failure.
	WaitPermissive
)

// Session owns one headless browser instance. Acquire per run and Close on
// every exit path.
type Session struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	browserCtx  context.Context
	cancel      context.CancelFunc
}

// Config controls browser startup.
type Config struct {
	ChromePath string
	Headless   bool
}

// NewSession launches a browser. The caller must Close it.
func NewSession(cfg Config) (*Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if !cfg.Headless {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	path := cfg.ChromePath
	if path == "" {
		path = detectChromePath()
	}
	if path != "" {
		opts = append(opts, chromedp.ExecPath(path))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, cancel := chromedp.NewContext(allocCtx)

	// Start the browser process eagerly so a missing binary fails here
	// rather than on the first Navigate.
	if err := chromedp.Run(browserCtx); err != nil {
		cancel()
		allocCancel()
		return nil, eris.Wrap(err, "browser: launch")
	}

	return &Session{
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		browserCtx:  browserCtx,
		cancel:      cancel,
	}, nil
}

// Navigate loads url in a fresh tab, waits according to mode, and returns the
// rendered document HTML.
func (s *Session) Navigate(ctx context.Context, url string, mode WaitMode, timeout time.Duration) (string, error) {
	tabCtx, tabCancel := chromedp.NewContext(s.browserCtx)
	defer tabCancel()

	tabCtx, timeoutCancel := context.WithTimeout(tabCtx, timeout)
	defer timeoutCancel()

	// Watch for cancellation of the caller's context too.
	if done := ctx.Done(); done != nil {
		go func() {
			select {
			case <-done:
				tabCancel()
			case <-tabCtx.Done():
			}
		}()
	}

	tasks := []chromedp.Action{chromedp.Navigate(url)}
	switch mode {
	case WaitPermissive:
		tasks = append(tasks, chromedp.WaitReady("body", chromedp.ByQuery))
	default:
		tasks = append(tasks,
			chromedp.WaitVisible("body", chromedp.ByQuery),
			chromedp.Sleep(1500*time.Millisecond),
		)
	}

	var html string
	tasks = append(tasks, chromedp.ActionFunc(func(ctx context.Context) error {
		node, err := dom.GetDocument().Do(ctx)
		if err != nil {
			return err
		}
		html, err = dom.GetOuterHTML().WithNodeID(node.NodeID).Do(ctx)
		return err
	}))

	if err := chromedp.Run(tabCtx, tasks...); err != nil {
		return "", eris.Wrapf(err, "browser: navigate %s", url)
	}
	return html, nil
}

// Close shuts the browser down.
func (s *Session) Close() {
	s.cancel()
	s.allocCancel()
}

func detectChromePath() string {
	candidates := []string{
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/usr/bin/google-chrome",
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
