package telcheck

// CSS selectors used by the crawl engine.
const (
	// TelSelector matches anchors whose href uses the tel: scheme.
	TelSelector = `a[href^="tel:"]`

	// AnchorSelector matches every anchor carrying an href.
	AnchorSelector = "a[href]"
)

// Link is an anchor returned by a LinkQuery.
type Link struct {
	// Href is the resolved, absolute value of the href attribute.
	Href string
	// Text is the trimmed text content of the anchor.
	Text string
}

// TelLink is a tel: anchor found on a crawled page.
type TelLink struct {
	Href string `json:"href"`
	Text string `json:"text"`
}

// LinkQuery runs CSS selector queries against loaded page content.
type LinkQuery interface {
	// QueryLinks returns the anchors in html matching selector, in document
	// order. Relative hrefs are resolved against baseURL (or the document's
	// <base> element when present), the same way a browser exposes a.href.
	QueryLinks(html string, selector string, baseURL string) ([]Link, error)
}
