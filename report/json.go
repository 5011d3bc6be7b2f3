package report

import (
	"encoding/json"
	"io"
)

// JSONWriter outputs the verdict as JSON for tool integration.
type JSONWriter struct {
	baseWriter

	indent       bool
	indentPrefix string
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithPrettyPrint enables indented JSON output.
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = ""
		w.indentString = "  "
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// JSONReport is the document written by JSONWriter.
type JSONReport struct {
	Passed   bool        `json:"passed"`
	Mode     string      `json:"mode"`
	Allowed  []string    `json:"allowed"`
	Errors   []string    `json:"errors"`
	Checks   []LinkCheck `json:"checks"`
	BaseURL  string      `json:"baseUrl"`
	Scope    string      `json:"scope"`
	Visited  int         `json:"visited"`
	Failures []Failure   `json:"failures"`
}

// Failure is a page that could not be checked.
type Failure struct {
	URL    string `json:"url"`
	Reason string `json:"reason"`
}

// NewJSONReport flattens a verdict into its JSON document.
func NewJSONReport(v *Verdict) *JSONReport {
	r := &JSONReport{
		Passed:   v.Passed(),
		Mode:     v.Mode.String(),
		Allowed:  v.Allowed,
		Errors:   v.Errors,
		Checks:   v.Checks,
		BaseURL:  v.Result.BaseURL,
		Scope:    v.Result.Scope.String(),
		Visited:  v.Result.Visited,
		Failures: []Failure{},
	}
	if r.Allowed == nil {
		r.Allowed = []string{}
	}
	for _, f := range v.Result.Failures {
		r.Failures = append(r.Failures, Failure{URL: f.URL, Reason: f.Reason})
	}
	return r
}

// Write outputs the verdict in JSON format.
func (w *JSONWriter) Write(v *Verdict) (int, error) {
	var data []byte
	var err error

	report := NewJSONReport(v)
	if w.indent {
		data, err = json.MarshalIndent(report, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(report)
	}
	if err != nil {
		return 0, err
	}

	data = append(data, '\n')
	return w.output.Write(data)
}
