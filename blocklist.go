package telcheck

import "strings"

// Blocklist lists substrings of sub-request URLs that a Fetcher should abort.
// It is used to keep tracking and call-tracking scripts from rewriting
// phone numbers on the page before they are read.
type Blocklist []string

// DefaultBlocklist returns the analytics and call-tracking hosts blocked by default.
func DefaultBlocklist() Blocklist {
	return Blocklist{
		"googletagmanager.com",
		"google-analytics.com",
		"gtag/js",
		"analytics.js",
		"tctm.co",
		"callrail.com",
		"js.callrail.com",
	}
}

// Blocks returns true if url contains any blocklist entry.
func (b Blocklist) Blocks(url string) bool {
	for _, s := range b {
		if s != "" && strings.Contains(url, s) {
			return true
		}
	}
	return false
}
