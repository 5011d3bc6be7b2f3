package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
)

// MarkdownWriter outputs the verdict as a Markdown document suitable for
// CI job summaries and pull request comments.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the verdict in Markdown format.
func (w *MarkdownWriter) Write(v *Verdict) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, v)
	w.writeAlert(md, v)
	w.writeAllowed(md, v)
	w.writeLinks(md, v)
	w.writeFailures(md, v)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, v *Verdict) {
	md.H1("telcheck Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Base URL", "`" + v.Result.BaseURL + "`"},
			{"Scope", v.Result.Scope.String()},
			{"Pages Visited", strconv.Itoa(v.Result.Visited)},
			{"Pages With Tel Links", strconv.Itoa(v.Result.Len())},
			{"Tel Links", strconv.Itoa(v.Result.TotalLinks())},
			{"Failed Pages", strconv.Itoa(len(v.Result.Failures))},
			{"Status", statusText(v)},
		},
	})
	md.PlainText("")
}

func statusText(v *Verdict) string {
	if v.Passed() {
		return "✅ Passed"
	}
	return "❌ Failed"
}

func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, v *Verdict) {
	switch {
	case !v.Passed():
		md.Cautionf("%d validation error(s) found.", len(v.Errors))
	case len(v.Result.Failures) > 0:
		md.Warningf("All tel: links are valid, but %d page(s) could not be loaded.", len(v.Result.Failures))
	default:
		md.Tip("All tel: links match the expected phone numbers.")
	}
	md.PlainText("")

	if len(v.Errors) > 0 {
		md.H2("Errors")
		md.PlainText("")
		md.BulletList(v.Errors...)
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeAllowed(md *markdown.Markdown, v *Verdict) {
	md.H2("Allowed Formats")
	md.PlainText("")

	if len(v.Allowed) == 0 {
		md.PlainText("No valid expected phone numbers were configured.")
		md.PlainText("")
		return
	}

	items := make([]string, len(v.Allowed))
	for i, a := range v.Allowed {
		items[i] = "`" + a + "`"
	}
	md.BulletList(items...)
	md.PlainText("")
}

func (w *MarkdownWriter) writeLinks(md *markdown.Markdown, v *Verdict) {
	md.H2("Tel Links")
	md.PlainText("")

	if len(v.Checks) == 0 {
		md.PlainText("No tel: links found.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(v.Checks))
	for i, c := range v.Checks {
		valid := "✅"
		if !c.Valid {
			valid = "❌"
		}
		rows[i] = []string{c.PageURL, c.Text, "`" + c.Href + "`", valid}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Page", "Text", "Href", "Valid"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, v *Verdict) {
	if len(v.Result.Failures) == 0 {
		return
	}

	md.H2("Failed Pages")
	md.PlainText("")

	rows := make([][]string, len(v.Result.Failures))
	for i, f := range v.Result.Failures {
		rows[i] = []string{f.URL, f.Reason}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Page", "Reason"},
		Rows:   rows,
	})
	md.PlainText("")
}
