// Package crawl provides the tel: link crawl engine.
// It walks a site from its base URL, visits every in-scope page at most once
// and collects the tel: anchors found on each page.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fwojciec/telcheck"
	"golang.org/x/sync/errgroup"
)

// Visited-set configuration.
const (
	// visitedExpectedURLs is the expected number of URLs for Bloom filter sizing.
	visitedExpectedURLs = 10000
	// visitedFalsePositiveRate is the Bloom filter false positive rate.
	visitedFalsePositiveRate = 0.01
)

// Engine crawls sites for tel: links. An Engine holds configuration only;
// every call to Crawl builds its own visited set, frontier and result, so
// one Engine may run several crawls at once.
type Engine struct {
	Fetcher telcheck.Fetcher
	Links   telcheck.LinkQuery

	// Logger receives per-page diagnostics. Nil discards them.
	Logger *slog.Logger

	// Progress, if set, is called from the coordinating goroutine as pages
	// are dispatched and completed.
	Progress ProgressFunc

	// Concurrency is the number of pages fetched at once. Values below 2
	// give a sequential depth-first crawl.
	Concurrency int

	// RecordEmptyPages keeps an entry with no links for pages without
	// tel: anchors. When false such pages are omitted and logged as a warning.
	RecordEmptyPages bool

	// MaxPages caps the number of pages visited. Zero means no cap.
	MaxPages int
}

// ProgressEvent reports progress during a crawl.
type ProgressEvent struct {
	Type    ProgressType
	URL     string
	Visited int
	Links   int
	Error   error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting crawl progress.
type ProgressFunc func(event ProgressEvent)

// pageVisit holds the outcome of visiting a single page.
type pageVisit struct {
	url      string
	telLinks []telcheck.TelLink
	hrefs    []string
	err      error
}

// crawlState is owned by one Crawl call.
type crawlState struct {
	baseURL  string
	scope    *scopeFilter
	visited  *VisitedSet
	frontier *Frontier
	pages    []telcheck.PageResult
	failures []telcheck.PageFailure
	limitHit bool
}

// Crawl visits baseURL and, depending on scope, the internal pages reachable
// from it, and returns the tel: links found.
//
// Per-page failures never abort the crawl; they are logged and listed in
// CrawlResult.Failures. An error is returned only for an unusable base URL
// or engine, or when ctx ends, in which case the pages completed so far are
// returned alongside ctx.Err().
func (e *Engine) Crawl(ctx context.Context, baseURL string, scope telcheck.Scope) (*telcheck.CrawlResult, error) {
	if e.Fetcher == nil || e.Links == nil {
		return nil, telcheck.Errorf(telcheck.EINVALID, "crawl engine requires a fetcher and a link query")
	}

	filter, err := newScopeFilter(baseURL, scope)
	if err != nil {
		return nil, err
	}

	st := &crawlState{
		baseURL:  baseURL,
		scope:    filter,
		visited:  NewVisitedSet(visitedExpectedURLs, visitedFalsePositiveRate),
		frontier: NewFrontier(),
	}

	// The homepage is always visited first, whatever the scope.
	st.frontier.Push(baseURL)

	e.logger().Info("crawl started", "url", baseURL, "scope", scope.String())

	walkErr := e.walk(ctx, st)

	result := &telcheck.CrawlResult{
		BaseURL:  baseURL,
		Scope:    scope,
		Pages:    st.pages,
		Failures: st.failures,
		Visited:  st.visited.Len(),
	}
	if result.Pages == nil {
		result.Pages = []telcheck.PageResult{}
	}

	e.logger().Info("crawl finished",
		"url", baseURL,
		"visited", result.Visited,
		"pages", result.Len(),
		"links", result.TotalLinks(),
		"failed", len(result.Failures),
	)
	e.progress(ProgressEvent{
		Type:    ProgressFinished,
		Visited: result.Visited,
		Links:   result.TotalLinks(),
	})

	if walkErr != nil {
		return result, fmt.Errorf("crawl %s: %w", baseURL, walkErr)
	}
	return result, nil
}

// walk dispatches frontier URLs to a pool of workers and folds their
// results back into st. Only this goroutine touches st.pages, st.failures
// and the frontier; workers see nothing but the URL they are given.
func (e *Engine) walk(ctx context.Context, st *crawlState) error {
	concurrency := max(e.Concurrency, 1)
	onlyHomepage := st.scope.scope == telcheck.ScopeHomepageOnly

	workCh := make(chan string)
	resultCh := make(chan pageVisit)

	g, gctx := errgroup.WithContext(ctx)
	for range concurrency {
		g.Go(func() error {
			for url := range workCh {
				v := e.visit(gctx, url, onlyHomepage)
				select {
				case resultCh <- v:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}

	go func() {
		_ = g.Wait()
		close(resultCh)
	}()

	pending := 0
	next := ""

coordinatorLoop:
	for {
		// Pop only when a worker is free so that a sequential crawl descends
		// into a page's links before moving on to its siblings.
		if next == "" && pending < concurrency {
			next = e.nextURL(st)
		}
		if next == "" && pending == 0 {
			break
		}

		var work chan<- string
		if next != "" {
			work = workCh
		}

		select {
		case <-ctx.Done():
			break coordinatorLoop
		case work <- next:
			pending++
			e.progress(ProgressEvent{Type: ProgressStarted, URL: next, Visited: st.visited.Len()})
			next = ""
		case v := <-resultCh:
			pending--
			e.fold(ctx, st, v)
		}
	}

	close(workCh)
	for v := range resultCh {
		e.fold(ctx, st, v)
	}

	return ctx.Err()
}

// nextURL pops frontier entries until one is claimed in the visited set.
// It returns "" when the frontier is exhausted or the page cap is reached.
func (e *Engine) nextURL(st *crawlState) string {
	for {
		if e.MaxPages > 0 && st.visited.Len() >= e.MaxPages {
			if !st.limitHit && st.frontier.Len() > 0 {
				st.limitHit = true
				e.logger().Warn("page limit reached", "limit", e.MaxPages, "remaining", st.frontier.Len())
			}
			return ""
		}

		raw, ok := st.frontier.Pop()
		if !ok {
			return ""
		}
		key := Normalize(raw)
		if st.visited.Add(key) {
			return key
		}
	}
}

// visit fetches one page and extracts its tel: links and, unless only the
// homepage is checked, every anchor href on it.
func (e *Engine) visit(ctx context.Context, url string, onlyHomepage bool) pageVisit {
	v := pageVisit{url: url}

	e.logger().Debug("checking", "url", url)

	html, err := e.Fetcher.Fetch(ctx, url)
	if err != nil {
		v.err = err
		return v
	}

	anchors, err := e.Links.QueryLinks(html, telcheck.TelSelector, url)
	if err != nil {
		v.err = fmt.Errorf("querying tel links: %w", err)
		return v
	}
	v.telLinks = make([]telcheck.TelLink, 0, len(anchors))
	for _, a := range anchors {
		v.telLinks = append(v.telLinks, telcheck.TelLink{Href: a.Href, Text: a.Text})
	}

	if onlyHomepage {
		return v
	}

	anchors, err = e.Links.QueryLinks(html, telcheck.AnchorSelector, url)
	if err != nil {
		// The tel: links are complete; only discovery from this page is lost.
		e.logger().Warn("link discovery failed", "url", url, "err", err)
		return v
	}
	v.hrefs = make([]string, 0, len(anchors))
	for _, a := range anchors {
		v.hrefs = append(v.hrefs, a.Href)
	}
	return v
}

// fold records a completed visit and queues its in-scope links.
func (e *Engine) fold(ctx context.Context, st *crawlState, v pageVisit) {
	if v.err != nil {
		if ctx.Err() != nil && (errors.Is(v.err, context.Canceled) || errors.Is(v.err, context.DeadlineExceeded)) {
			return
		}
		e.logger().Warn("page failed", "url", v.url, "err", v.err)
		st.failures = append(st.failures, telcheck.PageFailure{URL: v.url, Reason: v.err.Error()})
		e.progress(ProgressEvent{Type: ProgressFailed, URL: v.url, Visited: st.visited.Len(), Error: v.err})
		return
	}

	switch {
	case len(v.telLinks) > 0:
		e.logger().Info("found tel links", "url", v.url, "count", len(v.telLinks))
		st.pages = append(st.pages, telcheck.PageResult{URL: v.url, TelLinks: v.telLinks})
	case e.RecordEmptyPages:
		e.logger().Info("no tel links", "url", v.url)
		st.pages = append(st.pages, telcheck.PageResult{URL: v.url, TelLinks: v.telLinks})
	default:
		e.logger().Warn("no tel links found", "url", v.url)
	}
	e.progress(ProgressEvent{Type: ProgressCompleted, URL: v.url, Visited: st.visited.Len(), Links: len(v.telLinks)})

	var next []string
	for _, href := range v.hrefs {
		if !st.scope.allow(href) {
			continue
		}
		if st.visited.Contains(Normalize(href)) {
			continue
		}
		next = append(next, href)
	}
	st.frontier.Push(next...)
}

func (e *Engine) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return e.Logger
}

func (e *Engine) progress(event ProgressEvent) {
	if e.Progress != nil {
		e.Progress(event)
	}
}
