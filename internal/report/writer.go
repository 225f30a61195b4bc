package report

import (
	"io"
	"slices"
	"strconv"

	"github.com/nao1215/kakusu/internal/model"
)

// Writer defines the interface for report output.
type Writer interface {
	// Write outputs an analysis run.
	// Returns the number of bytes written and any error encountered.
	Write(run *model.AnalysisRun) (int, error)

	// WriteCandidate outputs the evaluation of a single full name.
	WriteCandidate(q model.Query, c *model.CandidateResult) (int, error)
}

// MultiWriter writes to multiple Writers in order and stops on the first
// error.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the run to all configured Writers.
func (m *MultiWriter) Write(run *model.AnalysisRun) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(run)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteCandidate outputs the evaluation to all configured Writers.
func (m *MultiWriter) WriteCandidate(q model.Query, c *model.CandidateResult) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteCandidate(q, c)
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

// verdictLine is one category of one oracle's answer.
type verdictLine struct {
	Category    string
	Verdict     string
	Description string
}

// verdictLines orders v for display: the oracle's scored categories first,
// then any other category in lexical order. Description keys are folded
// into their category.
func verdictLines(oracle model.OracleID, v model.Verdicts) []verdictLine {
	seen := make(map[string]bool, len(v))
	var lines []verdictLine
	add := func(category string) {
		verdict, ok := v[category]
		if !ok || seen[category] {
			return
		}
		seen[category] = true
		lines = append(lines, verdictLine{
			Category:    category,
			Verdict:     verdict,
			Description: v[model.DescriptionKey(category)],
		})
	}

	for _, category := range oracle.Categories() {
		add(category)
	}
	var rest []string
	for key := range v {
		if !model.IsDescriptionKey(key) && !seen[key] {
			rest = append(rest, key)
		}
	}
	slices.Sort(rest)
	for _, category := range rest {
		add(category)
	}
	return lines
}

// formatScore renders a score with one decimal.
func formatScore(s float64) string {
	return strconv.FormatFloat(s, 'f', 1, 64)
}

// truncateString shortens s to maxLen characters with an ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
