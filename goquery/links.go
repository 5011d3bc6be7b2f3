// Package goquery implements telcheck.LinkQuery on top of goquery.
package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/fwojciec/telcheck"
	"golang.org/x/net/idna"
)

var _ telcheck.LinkQuery = (*LinkQuery)(nil)

// LinkQuery extracts anchors from HTML with CSS selectors.
type LinkQuery struct{}

// NewLinkQuery creates a new LinkQuery.
func NewLinkQuery() *LinkQuery {
	return &LinkQuery{}
}

// QueryLinks returns the anchors in html matching selector in document order.
// Each href is resolved the way the DOM a.href property resolves it: against
// the document's first <base href> if present, otherwise against baseURL.
// Hrefs that cannot be resolved are returned trimmed but otherwise as written.
func (q *LinkQuery) QueryLinks(html string, selector string, baseURL string) ([]telcheck.Link, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, telcheck.Errorf(telcheck.EINVALID, "invalid base URL: %v", err)
	}

	matcher, err := cascadia.Compile(selector)
	if err != nil {
		return nil, telcheck.Errorf(telcheck.EINVALID, "invalid selector %q: %v", selector, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, telcheck.Errorf(telcheck.EINVALID, "failed to parse HTML: %v", err)
	}

	base = documentBase(doc, base)

	links := []telcheck.Link{}
	doc.FindMatcher(matcher).Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		links = append(links, telcheck.Link{
			Href: resolveHref(base, href),
			Text: strings.TrimSpace(sel.Text()),
		})
	})
	return links, nil
}

// documentBase applies the first <base href> element, which is itself
// resolved against the document URL.
func documentBase(doc *goquery.Document, base *url.URL) *url.URL {
	href, ok := doc.Find("base[href]").First().Attr("href")
	if !ok {
		return base
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return base
	}
	return base.ResolveReference(ref)
}

// resolveHref resolves href against base and serializes the result with the
// host in ASCII lower case, the scheme's default port dropped and a "/" path
// for bare hierarchical URLs.
func resolveHref(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}

	u := base.ResolveReference(ref)
	if u.Opaque != "" {
		return u.String()
	}
	u.Host = serializeHost(u.Scheme, u.Host)
	if u.Host != "" && u.Path == "" {
		u.Path = "/"
		u.RawPath = ""
	}
	return u.String()
}

// hostProfile maps hostnames as browsers do without rejecting names that
// DNS accepts but IDNA forbids, such as those with underscores.
var hostProfile = idna.New(
	idna.MapForLookup(),
	idna.StrictDomainName(false),
	idna.Transitional(false),
)

// serializeHost returns host in the form a.href exposes it.
func serializeHost(scheme, host string) string {
	if host == "" {
		return host
	}
	u := url.URL{Host: host}
	hostname, port := u.Hostname(), u.Port()

	if strings.Contains(hostname, ":") {
		hostname = "[" + strings.ToLower(hostname) + "]"
	} else if ascii, err := hostProfile.ToASCII(hostname); err == nil {
		hostname = ascii
	} else {
		hostname = strings.ToLower(hostname)
	}

	if port == "" || port == defaultPorts[scheme] {
		return hostname
	}
	return hostname + ":" + port
}

var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
	"ws":    "80",
	"wss":   "443",
	"ftp":   "21",
}
