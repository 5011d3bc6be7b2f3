package telcheck

// PageResult holds the tel: links found on one visited page.
type PageResult struct {
	// URL is the normalized page URL.
	URL      string    `json:"url"`
	TelLinks []TelLink `json:"telLinks"`
}

// PageFailure records a page that could not be fetched or queried.
type PageFailure struct {
	URL    string `json:"url"`
	Reason string `json:"reason"`
}

// CrawlResult is the outcome of one crawl. Pages are unique by URL and
// ordered by completion. A CrawlResult is a snapshot: the engine that
// produced it keeps no reference to it.
type CrawlResult struct {
	BaseURL  string        `json:"baseUrl"`
	Scope    Scope         `json:"scope"`
	Pages    []PageResult  `json:"pages"`
	Failures []PageFailure `json:"failures,omitempty"`

	// Visited is the number of distinct normalized URLs the crawl visited,
	// including failed and empty pages.
	Visited int `json:"visited"`
}

// Len returns the number of pages with an entry in the result.
func (r *CrawlResult) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Pages)
}

// Links returns the tel: links recorded for the normalized page URL.
// The bool result is false if the page has no entry.
func (r *CrawlResult) Links(url string) ([]TelLink, bool) {
	if r == nil {
		return nil, false
	}
	for _, p := range r.Pages {
		if p.URL == url {
			return p.TelLinks, true
		}
	}
	return nil, false
}

// TotalLinks returns the number of tel: links across all pages.
func (r *CrawlResult) TotalLinks() int {
	if r == nil {
		return 0
	}
	var n int
	for _, p := range r.Pages {
		n += len(p.TelLinks)
	}
	return n
}

// Failed reports whether the normalized page URL failed to load.
func (r *CrawlResult) Failed(url string) bool {
	if r == nil {
		return false
	}
	for _, f := range r.Failures {
		if f.URL == url {
			return true
		}
	}
	return false
}
