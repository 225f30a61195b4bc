package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/nao1215/kakusu/internal/model"
)

// Format is an output format of a report.
type Format string

const (
	// FormatJSON writes the run as indented JSON.
	FormatJSON Format = "json"
	// FormatMarkdown writes a Markdown document.
	FormatMarkdown Format = "markdown"
	// FormatText writes the plain text ranking.
	FormatText Format = "text"
)

// ErrUnknownFormat is returned for a Format outside the constants above.
var ErrUnknownFormat = errors.New("unknown report format")

// Extension returns the file extension of the format, including the dot.
func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatText:
		return ".txt"
	default:
		return ".json"
	}
}

// NewWriter returns the Writer of format f.
func NewWriter(f Format, output io.Writer) (Writer, error) {
	switch f {
	case FormatJSON, "":
		return NewJSONWriter(output, WithPrettyPrint()), nil
	case FormatMarkdown:
		return NewMarkdownWriter(output), nil
	case FormatText:
		return NewSimpleWriter(output, WithVerbose(true)), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

// DefaultFileName returns fortune_analysis_YYYYMMDD_HHMMSS plus the format
// extension, using the local time t.
func DefaultFileName(t time.Time, f Format) string {
	return "fortune_analysis_" + t.Format("20060102_150405") + f.Extension()
}

// SaveFile writes run to dest in format f and returns the written path.
// If dest is empty or an existing directory, DefaultFileName(run.GeneratedAt)
// is used inside it.
func SaveFile(run *model.AnalysisRun, dest string, f Format) (string, error) {
	if _, err := NewWriter(f, io.Discard); err != nil {
		return "", err
	}

	path := dest
	if info, err := os.Stat(dest); dest == "" || (err == nil && info.IsDir()) {
		generated := run.GeneratedAt
		if generated.IsZero() {
			generated = time.Now()
		}
		path = filepath.Join(dest, DefaultFileName(generated.Local(), f))
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return "", fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	file, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}

	w, err := NewWriter(f, file)
	if err != nil {
		_ = file.Close()
		return "", err
	}
	if _, err := w.Write(run); err != nil {
		_ = file.Close()
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close report file: %w", err)
	}
	return path, nil
}
