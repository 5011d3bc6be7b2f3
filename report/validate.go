// Package report validates crawl results against the phone numbers a site is
// expected to advertise and renders the outcome as text, Markdown or JSON.
package report

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/fwojciec/telcheck"
)

// Mode decides how a crawl that found no tel: links is judged.
type Mode int

const (
	// ModeRequireLinks fails a crawl that found no tel: links at all.
	ModeRequireLinks Mode = iota
	// ModeAllowEmpty passes a crawl that found no tel: links.
	ModeAllowEmpty
)

// ParseMode parses a mode name. The empty string selects ModeRequireLinks.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "require", "require-links":
		return ModeRequireLinks, nil
	case "allow-empty", "allow":
		return ModeAllowEmpty, nil
	}
	return 0, telcheck.Errorf(telcheck.EINVALID, "unknown mode %q", s)
}

// String returns the canonical mode name.
func (m Mode) String() string {
	if m == ModeAllowEmpty {
		return "allow-empty"
	}
	return "require-links"
}

// NoLinksError is recorded when ModeRequireLinks finds nothing.
const NoLinksError = "No tel: links found."

// LinkCheck is the validation outcome of one tel: link.
type LinkCheck struct {
	PageURL string `json:"pageUrl"`
	Href    string `json:"href"`
	Text    string `json:"text"`
	Number  string `json:"number"`
	Valid   bool   `json:"valid"`
}

// Verdict is the outcome of validating a crawl.
type Verdict struct {
	Result *telcheck.CrawlResult
	Mode   Mode

	// Allowed lists every accepted number in first-seen order.
	Allowed []string
	Checks  []LinkCheck
	Errors  []string
}

// Passed reports whether the crawl produced no validation errors.
func (v *Verdict) Passed() bool {
	return len(v.Errors) == 0
}

// Invalid returns the checks that failed.
func (v *Verdict) Invalid() []LinkCheck {
	var out []LinkCheck
	for _, c := range v.Checks {
		if !c.Valid {
			out = append(out, c)
		}
	}
	return out
}

// AllowedFormats returns the accepted tel: numbers for a US phone number.
// Non-digits are ignored; the digits must start with the country code 1,
// otherwise no format is accepted. For 18885551234 the formats are
// +18885551234, +1-888-555-1234 and 1-888-555-1234.
func AllowedFormats(phone string) []string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)

	if !strings.HasPrefix(digits, "1") {
		return nil
	}

	area, exchange, line := span(digits, 1, 4), span(digits, 4, 7), span(digits, 7, len(digits))
	return []string{
		"+" + digits,
		fmt.Sprintf("+1-%s-%s-%s", area, exchange, line),
		fmt.Sprintf("1-%s-%s-%s", area, exchange, line),
	}
}

// span returns s[i:j] clamped to the bounds of s.
func span(s string, i, j int) string {
	i, j = min(i, len(s)), min(j, len(s))
	return s[i:j]
}

// AllowedSet returns the union of the allowed formats of every expected
// number, in first-seen order.
func AllowedSet(expected []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, phone := range expected {
		for _, f := range AllowedFormats(phone) {
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	return out
}

// ExtractNumber returns the number of a tel: href: the first "tel:" is
// removed and surrounding whitespace trimmed.
func ExtractNumber(href string) string {
	return strings.TrimFunc(strings.Replace(href, "tel:", "", 1), unicode.IsSpace)
}

// Validate checks every tel: link in result against the allowed formats of
// the expected numbers. Each link whose number is not allowed adds an error
// naming the page, the allowed formats and the link's text and href.
func Validate(result *telcheck.CrawlResult, expected []string, mode Mode) *Verdict {
	allowed := AllowedSet(expected)
	allowedSet := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		allowedSet[a] = true
	}

	v := &Verdict{
		Result:  result,
		Mode:    mode,
		Allowed: allowed,
		Checks:  []LinkCheck{},
		Errors:  []string{},
	}

	if result.TotalLinks() == 0 {
		if mode == ModeRequireLinks {
			v.Errors = append(v.Errors, NoLinksError)
		}
		return v
	}

	for _, page := range result.Pages {
		for _, link := range page.TelLinks {
			number := ExtractNumber(link.Href)
			check := LinkCheck{
				PageURL: page.URL,
				Href:    link.Href,
				Text:    link.Text,
				Number:  number,
				Valid:   allowedSet[number],
			}
			v.Checks = append(v.Checks, check)
			if !check.Valid {
				v.Errors = append(v.Errors, invalidLinkError(check, allowed))
			}
		}
	}
	return v
}

func invalidLinkError(c LinkCheck, allowed []string) string {
	return fmt.Sprintf("❌ ERROR: Invalid tel: link found on %s - Expected one of [%s], but got: %s or %s",
		c.PageURL, strings.Join(allowed, ", "), c.Text, c.Href)
}
