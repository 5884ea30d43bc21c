package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/nao1215/mathglossary/internal/frequency"
	"github.com/nao1215/mathglossary/internal/model"
)

// chartSlices is how many section titles the pie chart shows.
const chartSlices = 10

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.RunReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSections(md, report)
	w.writeWords(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the run information table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.RunReport) {
	md.H1("Math Glossary Harvest")
	md.PlainText("")

	rows := [][]string{}
	if report.ID != "" {
		rows = append(rows, []string{"Run ID", "`" + report.ID + "`"})
	}
	rows = append(rows,
		[]string{"Root Category", report.RootCategory},
		[]string{"Started", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
		[]string{"Elapsed", strconv.Itoa(int(report.Elapsed.Seconds())) + "s"},
		[]string{"Words", strconv.Itoa(report.Stats.Words)},
		[]string{"Pages", strconv.Itoa(report.Stats.Pages)},
		[]string{"Categories", strconv.Itoa(report.Stats.Categories)},
		[]string{"Failed Pages", strconv.Itoa(report.Stats.FailedPages)},
		[]string{"Status", report.Status()},
	)

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	if report.Interrupted {
		md.Warningf("The run was interrupted after %d pages. Counts are partial.", report.Stats.Pages)
		md.PlainText("")
	}
}

// writeSections writes the section ranking and its chart.
func (w *MarkdownWriter) writeSections(md *markdown.Markdown, report *model.RunReport) {
	md.H2("Top Sections")
	md.PlainText("")

	if len(report.TopSections) == 0 {
		md.PlainText("No sections counted.")
		md.PlainText("")
		return
	}

	w.writePieChart(md, report.TopSections)
	writeMarkdownTable(md, "Section", report.TopSections)
}

// writePieChart writes a mermaid pie chart of the most common section titles.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, entries []frequency.Entry) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Most Common Sections"),
		piechart.WithShowData(true),
	)

	for i, e := range entries {
		if i == chartSlices {
			break
		}
		chart.LabelAndIntValue(e.Key, uint64(e.Count)) //nolint:gosec // counts are never negative
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeWords writes the word ranking.
func (w *MarkdownWriter) writeWords(md *markdown.Markdown, report *model.RunReport) {
	md.H2("Top Words")
	md.PlainText("")

	if len(report.TopWords) == 0 {
		md.PlainText("No words counted.")
		md.PlainText("")
		return
	}

	writeMarkdownTable(md, "Word", report.TopWords)
}

// writeMarkdownTable writes a ranked table.
func writeMarkdownTable(md *markdown.Markdown, header string, entries []frequency.Entry) {
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{strconv.Itoa(i + 1), e.Key, strconv.Itoa(e.Count)}
	}

	md.Table(markdown.TableSet{
		Header: []string{"#", header, "Count"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [mathglossary](https://github.com/nao1215/mathglossary)*")
}
