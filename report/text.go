package report

import (
	"fmt"
	"io"
	"strings"
)

// TextWriter outputs the console summary: every page with its tel: links,
// then each validation error and the final status.
type TextWriter struct {
	baseWriter
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer) *TextWriter {
	return &TextWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the verdict as plain text.
func (w *TextWriter) Write(v *Verdict) (int, error) {
	var sb strings.Builder

	sb.WriteString("\nSummary of Tel Links Found:\n")
	if v.Result.TotalLinks() == 0 {
		sb.WriteString("❌ No tel: links found on the entire website.\n")
	}
	for _, page := range v.Result.Pages {
		fmt.Fprintf(&sb, "\n🔍 URL: %s\n", page.URL)
		for _, link := range page.TelLinks {
			fmt.Fprintf(&sb, "  - 📞 Text: %s, Href: %s\n", link.Text, link.Href)
		}
	}

	if len(v.Result.Failures) > 0 {
		sb.WriteString("\nPages that could not be checked:\n")
		for _, f := range v.Result.Failures {
			fmt.Fprintf(&sb, "  - ⚠️ %s: %s\n", f.URL, f.Reason)
		}
	}

	if len(v.Errors) > 0 {
		sb.WriteString("\n")
		for _, e := range v.Errors {
			sb.WriteString(e)
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n")
	sb.WriteString(statusLine(v))
	sb.WriteString("\n")

	return io.WriteString(w.output, sb.String())
}

// statusLine summarizes the verdict in one line.
func statusLine(v *Verdict) string {
	if !v.Passed() {
		return fmt.Sprintf("❌ FAILED: %d error(s) across %d page(s) visited", len(v.Errors), v.Result.Visited)
	}
	return fmt.Sprintf("✅ PASSED: %d tel: link(s) valid across %d page(s) visited", len(v.Checks), v.Result.Visited)
}
