package crawl

import (
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// hostProfile maps hostnames the way browsers do for lookup without
// rejecting names (such as those with underscores) that DNS would accept.
var hostProfile = idna.New(
	idna.MapForLookup(),
	idna.StrictDomainName(false),
	idna.Transitional(false),
)

// Normalize returns the canonical form of a URL used as the visited-set and
// result key. The fragment is dropped, scheme and host are lower-cased
// (internationalized hosts are converted to ASCII), default ports are
// removed, an empty path becomes "/" and literal trailing slashes are
// removed from any path other than "/".
//
// Strings that do not parse as absolute URLs are returned unchanged and act
// as their own key.
func Normalize(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() {
		return raw
	}

	u.Fragment = ""
	u.RawFragment = ""

	if u.Opaque != "" {
		return u.String()
	}

	if u.Host != "" {
		u.Host = normalizeHost(u.Scheme, u.Host)
		if u.Path == "" {
			u.Path = "/"
			u.RawPath = ""
		}
	}

	// Trim the escaped form so that an encoded %2F is never taken for a
	// separator.
	escaped := u.EscapedPath()
	for escaped != "/" && strings.HasSuffix(escaped, "/") {
		escaped = strings.TrimSuffix(escaped, "/")
	}
	if escaped == "" && u.Host != "" {
		escaped = "/"
	}
	if path, err := url.PathUnescape(escaped); err == nil {
		u.Path, u.RawPath = path, escaped
	}

	return u.String()
}

// normalizeHost lower-cases the host, drops the scheme's default port and
// converts internationalized names to their ASCII form.
func normalizeHost(scheme, host string) string {
	u := url.URL{Host: host}
	hostname, port := u.Hostname(), u.Port()

	if strings.Contains(hostname, ":") {
		// IPv6 literal
		hostname = strings.ToLower(hostname)
	} else if ascii, err := hostProfile.ToASCII(hostname); err == nil {
		hostname = ascii
	} else {
		hostname = strings.ToLower(hostname)
	}

	if port == defaultPort(scheme) {
		port = ""
	}
	if port == "" {
		if strings.Contains(hostname, ":") {
			return "[" + hostname + "]"
		}
		return hostname
	}
	return net.JoinHostPort(hostname, port)
}

func defaultPort(scheme string) string {
	switch scheme {
	case "http", "ws":
		return "80"
	case "https", "wss":
		return "443"
	case "ftp":
		return "21"
	}
	return ""
}
