package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/kakusu/internal/model"
)

// JSONWriter outputs reports in JSON format.
type JSONWriter struct {
	baseWriter

	indent       bool
	indentPrefix string
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint is WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the run in JSON format.
func (w *JSONWriter) Write(run *model.AnalysisRun) (int, error) {
	return w.writeJSON(run)
}

// CandidateReport is the JSON shape of a single-name evaluation.
type CandidateReport struct {
	Surname   string                 `json:"surname"`
	GivenName string                 `json:"given_name"`
	Gender    model.Gender           `json:"gender"`
	Result    *model.CandidateResult `json:"result"`
}

// WriteCandidate outputs a single-name evaluation in JSON format.
func (w *JSONWriter) WriteCandidate(q model.Query, c *model.CandidateResult) (int, error) {
	return w.writeJSON(CandidateReport{
		Surname:   q.Surname,
		GivenName: q.GivenName,
		Gender:    q.Gender,
		Result:    c,
	})
}

func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error
	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	// Trailing newline for terminal output.
	data = append(data, '\n')
	return w.output.Write(data)
}
