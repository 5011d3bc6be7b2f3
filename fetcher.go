package telcheck

import "context"

// Fetcher retrieves the loaded DOM of a page as HTML.
// Implementations may use browser automation to handle JavaScript-rendered content.
type Fetcher interface {
	// Fetch navigates to the URL, waits until the document is minimally
	// loaded and returns its HTML.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases browser resources.
	// Must be called when the Fetcher is no longer needed.
	Close() error
}

// DefaultUserAgent identifies telcheck to the sites it crawls.
const DefaultUserAgent = "telcheck/1.0 (+https://github.com/fwojciec/telcheck)"
