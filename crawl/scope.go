package crawl

import (
	"net/url"
	"strings"

	"github.com/fwojciec/telcheck"
)

// scopeFilter decides which discovered hrefs are eligible for a visit.
type scopeFilter struct {
	base   *url.URL
	prefix string
	scope  telcheck.Scope
}

func newScopeFilter(baseURL string, scope telcheck.Scope) (*scopeFilter, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, telcheck.Errorf(telcheck.EINVALID, "invalid base URL %q: %v", baseURL, err)
	}
	if !base.IsAbs() || base.Host == "" {
		return nil, telcheck.Errorf(telcheck.EINVALID, "base URL %q must be absolute", baseURL)
	}

	// Hrefs come back resolved the way a browser serializes them, so the
	// prefix uses the same host casing and root path.
	prefix := *base
	prefix.Host = normalizeHost(base.Scheme, base.Host)
	prefix.Fragment = ""
	prefix.RawFragment = ""
	if prefix.Path == "" {
		prefix.Path = "/"
		prefix.RawPath = ""
	}

	return &scopeFilter{
		base:   &prefix,
		prefix: prefix.String(),
		scope:  scope,
	}, nil
}

// allow reports whether href may be visited. Only hrefs that start with the
// base URL, share its origin and carry no fragment are followed; under
// ScopeTopLevelOnly the path may have at most one non-empty segment.
func (f *scopeFilter) allow(href string) bool {
	if f.scope == telcheck.ScopeHomepageOnly {
		return false
	}
	if strings.Contains(href, "#") {
		return false
	}

	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	if !strings.HasPrefix(canonicalHost(u), f.prefix) {
		return false
	}
	if !sameOrigin(f.base, u) {
		return false
	}

	if f.scope == telcheck.ScopeTopLevelOnly && pathDepth(u.Path) > 1 {
		return false
	}
	return true
}

// canonicalHost serializes u with its host in the form used for the base
// prefix, so that an explicit default port or a Unicode host does not hide
// an internal link.
func canonicalHost(u *url.URL) string {
	c := *u
	if c.Host != "" {
		c.Host = normalizeHost(c.Scheme, c.Host)
		if c.Path == "" {
			c.Path = "/"
			c.RawPath = ""
		}
	}
	return c.String()
}

// sameOrigin compares scheme, host and effective port.
func sameOrigin(a, b *url.URL) bool {
	return a.Scheme == b.Scheme &&
		normalizeHost(a.Scheme, a.Host) == normalizeHost(b.Scheme, b.Host)
}

// pathDepth counts the non-empty segments of a URL path.
func pathDepth(path string) int {
	var n int
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			n++
		}
	}
	return n
}
