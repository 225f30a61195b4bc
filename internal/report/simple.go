package report

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/width"

	"github.com/nao1215/kakusu/internal/model"
)

const ruleWidth = 70

// SimpleWriter outputs a plain text ranking for terminal display.
type SimpleWriter struct {
	baseWriter

	// verbose adds every oracle verdict below each result.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the run in human-readable format.
func (w *SimpleWriter) Write(run *model.AnalysisRun) (int, error) {
	var sb strings.Builder

	writeRule(&sb, "=")
	sb.WriteString("                      KAKUSU ANALYSIS REPORT\n")
	writeRule(&sb, "=")
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "Run ID:     %s\n", run.ID)
	fmt.Fprintf(&sb, "Surname:    %s\n", run.Surname)
	fmt.Fprintf(&sb, "Characters: %d\n", run.CharCount)
	fmt.Fprintf(&sb, "Date:       %s\n", run.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&sb, "Patterns:   %d/%d\n", run.CompletedPatterns, run.TotalPatterns)
	if run.Partial {
		sb.WriteString("Status:     INCOMPLETE (partial results)\n")
	} else {
		sb.WriteString("Status:     Complete\n")
	}
	sb.WriteString("\n")

	writeRule(&sb, "-")
	sb.WriteString("TOP RESULTS\n")
	writeRule(&sb, "-")
	sb.WriteString("\n")

	if len(run.TopResults) == 0 {
		sb.WriteString("  No results\n\n")
	} else {
		fmt.Fprintf(&sb, "  %4s  %-10s %-12s %8s %8s %8s\n", "RANK", "NAME", "STROKES", "ENAMAE", "NAMAE", "TOTAL")
		for i := range run.TopResults {
			r := &run.TopResults[i]
			fmt.Fprintf(&sb, "  %4d  %s%s %-12s %8s %8s %8s\n",
				i+1,
				r.Characters,
				padding(r.Characters, 10),
				r.Pattern.String(),
				formatScore(r.EnamaeScore),
				formatScore(r.NamaeuranaiScore),
				formatScore(r.CompositeScore),
			)
			if w.verbose {
				w.writeVerdicts(&sb, r)
			}
		}
		sb.WriteString("\n")
	}

	writeRule(&sb, "=")
	return io.WriteString(w.output, sb.String())
}

// WriteCandidate outputs a single-name evaluation in human-readable format.
func (w *SimpleWriter) WriteCandidate(q model.Query, c *model.CandidateResult) (int, error) {
	var sb strings.Builder

	writeRule(&sb, "=")
	fmt.Fprintf(&sb, "%s %s (%s)\n", q.Surname, q.GivenName, q.Gender.Japanese())
	writeRule(&sb, "=")
	fmt.Fprintf(&sb, "Enamae score:      %s\n", formatScore(c.EnamaeScore))
	fmt.Fprintf(&sb, "Namaeuranai score: %s\n", formatScore(c.NamaeuranaiScore))
	fmt.Fprintf(&sb, "Total score:       %s\n", formatScore(c.CompositeScore))
	sb.WriteString("\n")
	w.writeVerdicts(&sb, c)
	writeRule(&sb, "=")

	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) writeVerdicts(sb *strings.Builder, c *model.CandidateResult) {
	for _, oracle := range model.Oracles {
		lines := verdictLines(oracle, c.Result(oracle))
		if len(lines) == 0 {
			fmt.Fprintf(sb, "        [%s] no answer\n", oracle.Host())
			continue
		}
		fmt.Fprintf(sb, "        [%s]", oracle.Host())
		for _, l := range lines {
			fmt.Fprintf(sb, " %s:%s", l.Category, l.Verdict)
		}
		sb.WriteString("\n")
	}
}

func writeRule(sb *strings.Builder, ch string) {
	sb.WriteString(strings.Repeat(ch, ruleWidth))
	sb.WriteString("\n")
}

// padding fills s up to width terminal columns, counting CJK characters
// as two columns.
func padding(s string, columns int) string {
	cols := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			cols += 2
		default:
			cols++
		}
	}
	if cols >= columns {
		return ""
	}
	return strings.Repeat(" ", columns-cols)
}
