package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/mathglossary/internal/frequency"
	"github.com/nao1215/mathglossary/internal/model"
)

// SimpleWriter outputs human-readable text reports for terminal display.
type SimpleWriter struct {
	baseWriter

	// showTables controls whether the ranked section and word tables are written.
	showTables bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithTables controls whether the ranked tables follow the summary.
func WithTables(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showTables = show
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showTables: true,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.RunReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSummary(&sb, report)

	if w.showTables {
		writeTable(&sb, "Section", report.TopSections)
		writeTable(&sb, "Word", report.TopWords)
	}

	sb.WriteString(strings.Repeat("=", 40))
	sb.WriteString("\n")

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.RunReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 40))
	sb.WriteString("\n")
	sb.WriteString("          MATH GLOSSARY HARVEST\n")
	sb.WriteString(strings.Repeat("=", 40))
	sb.WriteString("\n\n")

	if report.ID != "" {
		sb.WriteString(fmt.Sprintf("Run ID:        %s\n", report.ID))
	}
	sb.WriteString(fmt.Sprintf("Root Category: %s\n", report.RootCategory))
	sb.WriteString(fmt.Sprintf("Started:       %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Elapsed time:  %ds\n", int(report.Elapsed.Seconds())))
	sb.WriteString(fmt.Sprintf("Status:        %s\n", report.Status()))
	sb.WriteString("\n")
}

// writeSummary writes the run totals.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.RunReport) {
	sb.WriteString(fmt.Sprintf("Finished counting %d words in %d pages in %d categories!\n",
		report.Stats.Words, report.Stats.Pages, report.Stats.Categories))
	if report.Stats.FailedPages > 0 {
		sb.WriteString(fmt.Sprintf("Failed pages:          %d\n", report.Stats.FailedPages))
	}
	sb.WriteString(fmt.Sprintf("Allowed categories:    %d\n", report.AllowedCategories))
	sb.WriteString(fmt.Sprintf("Blacklisted categories: %d\n", report.BlacklistedCategories))
	sb.WriteString("\n")
}

// writeTable writes a two-column ranked table.
func writeTable(sb *strings.Builder, header string, entries []frequency.Entry) {
	sb.WriteString(strings.Repeat("=", 40))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf(" %-29s %s\n", header, "Count"))
	sb.WriteString(strings.Repeat("-", 40))
	sb.WriteString("\n")
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("%-30s %d\n", e.Key, e.Count))
	}
}
