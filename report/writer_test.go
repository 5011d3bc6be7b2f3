package report_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/fwojciec/telcheck"
	"github.com/fwojciec/telcheck/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newVerdict builds a failing verdict with one valid link, one invalid link
// and one page that could not be loaded.
func newVerdict() *report.Verdict {
	result := &telcheck.CrawlResult{
		BaseURL: "https://site.test/",
		Scope:   telcheck.ScopeTopLevelOnly,
		Pages: []telcheck.PageResult{
			{URL: "https://site.test/", TelLinks: []telcheck.TelLink{{Href: "tel:+18885551234", Text: "Call us"}}},
			{URL: "https://site.test/contact", TelLinks: []telcheck.TelLink{{Href: "tel:5551234", Text: "Front desk"}}},
		},
		Failures: []telcheck.PageFailure{{URL: "https://site.test/careers", Reason: "HTTP 500"}},
		Visited:  3,
	}
	return report.Validate(result, []string{"+18885551234"}, report.ModeRequireLinks)
}

func TestTextWriter(t *testing.T) {
	t.Parallel()

	t.Run("lists pages, links, failures and errors", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := report.NewTextWriter(&buf).Write(newVerdict())

		require.NoError(t, err)
		assert.Equal(t, buf.Len(), n)
		output := buf.String()
		assert.Contains(t, output, "Summary of Tel Links Found:")
		assert.Contains(t, output, "🔍 URL: https://site.test/contact")
		assert.Contains(t, output, "  - 📞 Text: Call us, Href: tel:+18885551234")
		assert.Contains(t, output, "⚠️ https://site.test/careers: HTTP 500")
		assert.Contains(t, output, "❌ ERROR: Invalid tel: link found on https://site.test/contact")
		assert.Contains(t, output, "❌ FAILED: 1 error(s) across 3 page(s) visited")
	})

	t.Run("reports an empty crawl", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		v := report.Validate(&telcheck.CrawlResult{Visited: 1}, []string{"+18885551234"}, report.ModeRequireLinks)
		_, err := report.NewTextWriter(&buf).Write(v)

		require.NoError(t, err)
		assert.Contains(t, buf.String(), "No tel: links found on the entire website.")
		assert.Contains(t, buf.String(), report.NoLinksError)
	})

	t.Run("reports a pass", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		result := &telcheck.CrawlResult{
			Pages:   []telcheck.PageResult{{URL: "https://site.test/", TelLinks: []telcheck.TelLink{{Href: "tel:+18885551234"}}}},
			Visited: 1,
		}
		_, err := report.NewTextWriter(&buf).Write(report.Validate(result, []string{"+18885551234"}, report.ModeRequireLinks))

		require.NoError(t, err)
		assert.Contains(t, buf.String(), "✅ PASSED: 1 tel: link(s) valid across 1 page(s) visited")
	})
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	_, err := report.NewMarkdownWriter(&buf).Write(newVerdict())

	require.NoError(t, err)
	output := buf.String()
	assert.Contains(t, output, "# telcheck Report")
	assert.Contains(t, output, "top-level-only")
	assert.Contains(t, output, "## Errors")
	assert.Contains(t, output, "## Allowed Formats")
	assert.Contains(t, output, "`+1-888-555-1234`")
	assert.Contains(t, output, "## Tel Links")
	assert.Contains(t, output, "Front desk")
	assert.Contains(t, output, "## Failed Pages")
	assert.Contains(t, output, "[!CAUTION]")
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	_, err := report.NewJSONWriter(&buf, report.WithPrettyPrint()).Write(newVerdict())
	require.NoError(t, err)

	var got report.JSONReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.False(t, got.Passed)
	assert.Equal(t, "require-links", got.Mode)
	assert.Equal(t, "top-level-only", got.Scope)
	assert.Equal(t, 3, got.Visited)
	require.Len(t, got.Checks, 2)
	assert.True(t, got.Checks[0].Valid)
	assert.False(t, got.Checks[1].Valid)
	assert.Equal(t, []report.Failure{{URL: "https://site.test/careers", Reason: "HTTP 500"}}, got.Failures)
}

func TestNewWriter(t *testing.T) {
	t.Parallel()

	for _, format := range []string{"", "text", "markdown", "md", "json", "JSON"} {
		w, err := report.NewWriter(format, &bytes.Buffer{})
		require.NoError(t, err, format)
		assert.NotNil(t, w)
	}

	_, err := report.NewWriter("xml", &bytes.Buffer{})
	require.Error(t, err)
	assert.Equal(t, telcheck.EINVALID, telcheck.ErrorCode(err))
}

type failingWriter struct{}

func (failingWriter) Write(*report.Verdict) (int, error) { return 0, errors.New("disk full") }

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var a, b bytes.Buffer
	mw := report.NewMultiWriter(report.NewTextWriter(&a), report.NewJSONWriter(&b))
	n, err := mw.Write(newVerdict())

	require.NoError(t, err)
	assert.Equal(t, a.Len()+b.Len(), n)

	_, err = report.NewMultiWriter(failingWriter{}, report.NewTextWriter(&a)).Write(newVerdict())
	assert.EqualError(t, err, "disk full")
}
