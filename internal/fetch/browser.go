// Package fetch renders the waiting-list page in a headless browser and
// extracts its table rows. The page builds its table client-side, so a
// plain HTTP GET returns an empty shell; rendering requires a real browser
// engine. Requires Chrome/Chromium to be installed on the system.
package fetch

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/jonathan/waitlist-monitor/internal/waitlist"
)

// DefaultTimeout bounds one render attempt end to end.
const DefaultTimeout = 60 * time.Second

// settleDelay gives client-side scripts time to populate the table after
// the document is ready.
const settleDelay = 3 * time.Second

// RenderError reports that the browser could not produce a rendered page.
type RenderError struct {
	URL   string
	Cause error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render failed for %s: %v", e.URL, e.Cause)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// RenderedHTML navigates to url in a headless browser, waits for
// client-side rendering to settle, and returns the final HTML.
func RenderedHTML(ctx context.Context, url string, timeout time.Duration, verbose bool) (string, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if verbose {
		log.Printf("[BROWSER] Launching headless browser for: %s", url)
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(settleDelay),
		// Wait for the table if it appears; pages that never grow one
		// still return their HTML and fail later with ErrNoRows.
		chromedp.ActionFunc(func(ctx context.Context) error {
			waitCtx, cancel := context.WithTimeout(ctx, settleDelay)
			defer cancel()
			_ = chromedp.WaitVisible("table tbody tr", chromedp.ByQuery).Do(waitCtx)
			return nil
		}),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", &RenderError{URL: url, Cause: err}
	}

	if verbose {
		log.Printf("[BROWSER] Rendered HTML: %d bytes", len(html))
	}
	return html, nil
}

// Table renders url and returns its extracted table rows.
func Table(ctx context.Context, url string, timeout time.Duration, verbose bool) ([]waitlist.TableRow, error) {
	html, err := RenderedHTML(ctx, url, timeout, verbose)
	if err != nil {
		return nil, err
	}
	rows, err := TableRows(html)
	if err != nil {
		return nil, err
	}
	if verbose {
		log.Printf("[BROWSER] Extracted %d table rows", len(rows))
	}
	return rows, nil
}
