package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/spacemirror/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no entries are shown.
	showEmpty bool

	// verbose enables additional detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showEmpty:  false,
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the run result in human-readable format.
func (w *SimpleWriter) Write(result *model.MirrorResult) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, result)
	w.writeCounters(&sb, result)
	w.writeFailures(&sb, result)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, result *model.MirrorResult) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                       SPACEMIRROR RUN REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Space:      %s\n", result.Space))
	sb.WriteString(fmt.Sprintf("Root Page:  %s\n", result.RootID))
	sb.WriteString(fmt.Sprintf("Output:     %s\n", result.OutputDir))
	sb.WriteString(fmt.Sprintf("Started:    %s\n", result.StartedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Duration:   %s\n", result.Duration.Round(10*time.Millisecond)))

	if result.Complete() {
		sb.WriteString("Status:     Complete\n")
	} else {
		sb.WriteString(fmt.Sprintf("Status:     Completed with %d problem(s)\n", len(result.Failures)))
	}

	sb.WriteString("\n")
}

// writeCounters writes the page and asset counter section.
func (w *SimpleWriter) writeCounters(sb *strings.Builder, result *model.MirrorResult) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  Pages discovered:  %d\n", result.PagesDiscovered))
	sb.WriteString(fmt.Sprintf("  Pages written:     %d\n", result.PagesWritten))
	sb.WriteString(fmt.Sprintf("  Assets downloaded: %d\n", result.AssetsDownloaded))
	sb.WriteString(fmt.Sprintf("  Assets skipped:    %d\n", result.AssetsSkipped))
	sb.WriteString("\n")
}

// writeFailures writes every recorded problem grouped by stage.
func (w *SimpleWriter) writeFailures(sb *strings.Builder, result *model.MirrorResult) {
	if result.Complete() && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("PROBLEMS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if result.Complete() {
		sb.WriteString("  No problems recorded\n\n")
		return
	}

	stages := []string{
		model.StageRender,
		model.StageIdentity,
		model.StageParent,
		model.StageAsset,
		model.StageWrite,
	}

	for _, stage := range stages {
		failures := failuresForStage(result, stage)
		if len(failures) == 0 && !w.showEmpty {
			continue
		}

		sb.WriteString(fmt.Sprintf("[%s]\n", strings.ToUpper(stage)))
		if len(failures) == 0 {
			sb.WriteString("  None\n\n")
			continue
		}
		for _, f := range failures {
			target := f.URL
			if target == "" {
				target = f.PageID
			}
			sb.WriteString(fmt.Sprintf("  * %s\n", target))
			if f.PageID != "" && f.URL != "" {
				sb.WriteString(fmt.Sprintf("    Page: %s\n", f.PageID))
			}
			if w.verbose && f.Message != "" {
				sb.WriteString(fmt.Sprintf("    Detail: %s\n", f.Message))
			}
		}
		sb.WriteString("\n")
	}
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by spacemirror\n")
	sb.WriteString("https://github.com/nao1215/spacemirror\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

// failuresForStage filters the result's failures by stage.
func failuresForStage(result *model.MirrorResult, stage string) []model.Failure {
	var out []model.Failure
	for _, f := range result.Failures {
		if f.Stage == stage {
			out = append(out, f)
		}
	}
	return out
}
