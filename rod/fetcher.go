// Package rod implements telcheck.Fetcher with headless Chrome driven
// through the DevTools protocol.
package rod

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/fwojciec/telcheck"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultFetchTimeout bounds a single page load, matching the navigation
// timeout browsers use by default under automation.
const DefaultFetchTimeout = 30 * time.Second

// Ensure Fetcher implements telcheck.Fetcher at compile time.
var _ telcheck.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves the DOM of pages using Chrome browser automation.
// Each Fetch opens a fresh tab, aborts sub-requests matching the blocklist,
// waits for DOMContentLoaded and serializes the document.
//
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	manager   *BrowserManager
	timeout   time.Duration
	userAgent string
	blocklist telcheck.Blocklist
	logger    *slog.Logger
	maxPages  int64
	closed    atomic.Bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithFetchTimeout sets the per-page timeout. Defaults to DefaultFetchTimeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent overrides the browser's User-Agent. Defaults to
// telcheck.DefaultUserAgent; an empty string keeps Chrome's own.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithBlocklist sets the sub-request URL substrings to abort.
// Defaults to telcheck.DefaultBlocklist.
func WithBlocklist(b telcheck.Blocklist) Option {
	return func(f *Fetcher) {
		f.blocklist = b
	}
}

// WithLogger sets the logger used for blocked requests.
func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = l
	}
}

// WithRecycleAfter sets how many pages the browser serves before it is
// replaced with a fresh instance. Defaults to DefaultMaxPages.
func WithRecycleAfter(n int64) Option {
	return func(f *Fetcher) {
		f.maxPages = n
	}
}

// NewFetcher creates a new Fetcher that launches a headless Chrome browser.
// Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		timeout:   DefaultFetchTimeout,
		userAgent: telcheck.DefaultUserAgent,
		blocklist: telcheck.DefaultBlocklist(),
		logger:    slog.New(slog.DiscardHandler),
		maxPages:  DefaultMaxPages,
	}
	for _, opt := range opts {
		opt(f)
	}

	manager, err := NewBrowserManager(WithMaxPages(f.maxPages))
	if err != nil {
		return nil, err
	}
	f.manager = manager

	return f, nil
}

// Fetch navigates to the URL and returns the document HTML once
// DOMContentLoaded has fired.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.closed.Load() {
		return "", telcheck.Errorf(telcheck.EINVALID, "fetcher is closed")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	browser, release, err := f.manager.Acquire()
	if err != nil {
		return "", err
	}
	defer release()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", err
	}
	defer page.Close()

	page = page.Context(ctx)

	if f.userAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: f.userAgent}); err != nil {
			return "", err
		}
	}

	if len(f.blocklist) > 0 {
		router := page.HijackRequests()
		if err := router.Add("*", "", f.filterRequest); err != nil {
			return "", err
		}
		go router.Run()
		defer func() { _ = router.Stop() }()
	}

	wait := page.WaitNavigation(proto.PageLifecycleEventNameDOMContentLoaded)
	if err := page.Navigate(url); err != nil {
		return "", err
	}
	wait()

	html, err := page.HTML()
	if err != nil {
		return "", err
	}

	return html, nil
}

// filterRequest aborts sub-requests on the blocklist and lets the rest
// through unchanged.
func (f *Fetcher) filterRequest(h *rod.Hijack) {
	u := h.Request.URL().String()
	if f.blocklist.Blocks(u) {
		f.logger.Info("blocked request", "url", u)
		h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
		return
	}
	h.ContinueRequest(&proto.FetchContinueRequest{})
}

// Close releases browser resources. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}
	return f.manager.Close()
}

// LauncherPID returns the process ID of the browser launcher.
// This method exists for testing purposes to verify proper cleanup.
func (f *Fetcher) LauncherPID() int {
	return f.manager.LauncherPID()
}
