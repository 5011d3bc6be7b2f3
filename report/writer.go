package report

import (
	"io"
	"strings"

	"github.com/fwojciec/telcheck"
)

// Writer renders a verdict to its destination.
type Writer interface {
	// Write outputs the verdict and returns the number of bytes written.
	Write(v *Verdict) (int, error)
}

// Output formats accepted by NewWriter.
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// NewWriter returns the Writer for a format name.
func NewWriter(format string, output io.Writer) (Writer, error) {
	switch strings.ToLower(format) {
	case "", FormatText:
		return NewTextWriter(output), nil
	case FormatMarkdown, "md":
		return NewMarkdownWriter(output), nil
	case FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint()), nil
	}
	return nil, telcheck.Errorf(telcheck.EINVALID, "unknown report format %q", format)
}

// MultiWriter writes a verdict to several Writers in turn, stopping at the
// first error.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the verdict to all configured Writers.
func (m *MultiWriter) Write(v *Verdict) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(v)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
