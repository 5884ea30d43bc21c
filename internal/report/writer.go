package report

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/nao1215/mathglossary/internal/model"
)

// Writer defines the interface for report output.
type Writer interface {
	// Write outputs the report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.RunReport) (int, error)
}

// ForFile returns a writer whose format matches the extension of path:
// ".json" for JSON, ".md" or ".markdown" for Markdown, plain text otherwise.
func ForFile(path string, output io.Writer) Writer {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return NewJSONWriter(output, WithPrettyPrint())
	case ".md", ".markdown":
		return NewMarkdownWriter(output)
	default:
		return NewSimpleWriter(output)
	}
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
