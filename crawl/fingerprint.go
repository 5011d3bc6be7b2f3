package crawl

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/telcheck"
)

// Fingerprint computes a digest of the tel: links in a result using xxhash.
// It does not depend on the order pages were visited in, so two crawls of
// an unchanged site produce the same fingerprint.
func Fingerprint(result *telcheck.CrawlResult) string {
	if result == nil {
		return fmt.Sprintf("%016x", xxhash.Sum64(nil))
	}

	pages := slices.Clone(result.Pages)
	slices.SortFunc(pages, func(a, b telcheck.PageResult) int {
		return strings.Compare(a.URL, b.URL)
	})

	h := xxhash.New()
	for _, p := range pages {
		_, _ = h.WriteString(p.URL)
		_, _ = h.WriteString("\x00")
		for _, l := range p.TelLinks {
			_, _ = h.WriteString(l.Href)
			_, _ = h.WriteString("\x1f")
			_, _ = h.WriteString(l.Text)
			_, _ = h.WriteString("\x00")
		}
		_, _ = h.WriteString("\x1e")
	}
	return fmt.Sprintf("%016x", h.Sum64())
}
