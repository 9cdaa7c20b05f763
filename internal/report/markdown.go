package report

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/spacemirror/internal/model"
)

// MarkdownWriter outputs run reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the run result in Markdown format.
func (w *MarkdownWriter) Write(result *model.MirrorResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, result)
	w.writeSummary(md, result)
	w.writeFailures(md, result)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, result *model.MirrorResult) {
	md.H1("Mirror Run Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Space", "`" + result.Space + "`"},
			{"Root Page", "`" + result.RootID + "`"},
			{"Output", "`" + result.OutputDir + "`"},
			{"Started", result.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", result.Duration.Round(10 * time.Millisecond).String()},
			{"Status", w.getStatusText(result)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on the run state.
func (w *MarkdownWriter) getStatusText(result *model.MirrorResult) string {
	if result.Complete() {
		return "✅ Complete"
	}
	return "⚠️ Completed with " + strconv.Itoa(len(result.Failures)) + " problem(s)"
}

// writeSummary writes the page and asset counter section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, result *model.MirrorResult) {
	md.H2("Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Counter", "Value"},
		Rows: [][]string{
			{"Pages discovered", strconv.Itoa(result.PagesDiscovered)},
			{"Pages written", strconv.Itoa(result.PagesWritten)},
			{"Assets downloaded", strconv.Itoa(result.AssetsDownloaded)},
			{"Assets skipped", strconv.Itoa(result.AssetsSkipped)},
		},
	})
	md.PlainText("")

	w.writeAlert(md, result)
}

// writeAlert writes an appropriate alert based on the run outcome.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, result *model.MirrorResult) {
	switch {
	case result.PagesWritten == 0:
		md.Cautionf("No pages were written. Check the problems below.")
	case !result.Complete():
		md.Warningf(
			"The mirror was written with %d problem(s). Affected pages or assets may be incomplete.",
			len(result.Failures),
		)
	default:
		md.Tip("The mirror was written without problems. Open the root page in a browser to verify.")
	}
	md.PlainText("")
}

// writeFailures writes the recorded problems grouped by stage.
func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, result *model.MirrorResult) {
	md.H2("Problems")
	md.PlainText("")

	if result.Complete() {
		md.PlainText("No problems recorded.")
		md.PlainText("")
		return
	}

	w.writeStageChart(md, result)

	stages := []struct {
		stage  string
		header string
	}{
		{model.StageRender, "### Render"},
		{model.StageIdentity, "### Identity"},
		{model.StageParent, "### Parent"},
		{model.StageAsset, "### Asset"},
		{model.StageWrite, "### Write"},
	}

	for _, s := range stages {
		failures := failuresForStage(result, s.stage)
		if len(failures) == 0 {
			continue
		}

		md.PlainText(s.header)
		md.PlainText("")
		w.writeFailuresTable(md, failures)
	}
}

// writeStageChart writes a mermaid pie chart of problems per stage.
func (w *MarkdownWriter) writeStageChart(md *markdown.Markdown, result *model.MirrorResult) {
	counts := make(map[string]int)
	for _, f := range result.Failures {
		counts[f.Stage]++
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Problems by Stage"),
		piechart.WithShowData(true),
	)
	for _, stage := range []string{
		model.StageRender, model.StageIdentity, model.StageParent,
		model.StageAsset, model.StageWrite,
	} {
		if counts[stage] > 0 {
			chart.LabelAndIntValue(stageLabel(stage), uint64(counts[stage]))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeFailuresTable writes a table of problems with details.
func (w *MarkdownWriter) writeFailuresTable(md *markdown.Markdown, failures []model.Failure) {
	rows := make([][]string, len(failures))
	for i, f := range failures {
		page := f.PageID
		if page == "" {
			page = "-"
		}
		url := f.URL
		if url == "" {
			url = "-"
		}
		rows[i] = []string{
			page,
			truncateString(url, 60),
			truncateString(f.Message, 60),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Page", "URL", "Detail"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [spacemirror](https://github.com/nao1215/spacemirror)*")
}

// stageLabel capitalizes a failure stage name for chart labels.
func stageLabel(stage string) string {
	if stage == "" {
		return stage
	}
	return strings.ToUpper(stage[:1]) + stage[1:]
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
