package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/kakusu/internal/model"
)

// scoreBand groups composite scores for the distribution chart.
type scoreBand struct {
	label string
	min   float64
}

var scoreBands = []scoreBand{
	{label: "90-100", min: 90},
	{label: "80-89", min: 80},
	{label: "70-79", min: 70},
	{label: "60-69", min: 60},
	{label: "0-59", min: 0},
}

// MarkdownWriter outputs reports in Markdown format.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the run in Markdown format.
func (w *MarkdownWriter) Write(run *model.AnalysisRun) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, run)
	w.writeRanking(md, run)
	w.writeDetails(md, run)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteCandidate outputs a single-name evaluation in Markdown format.
func (w *MarkdownWriter) WriteCandidate(q model.Query, c *model.CandidateResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1(fmt.Sprintf("%s %s", q.Surname, q.GivenName))
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Gender", q.Gender.Japanese()},
			{model.OracleEnamae.Host(), formatScore(c.EnamaeScore)},
			{model.OracleNamaeuranai.Host(), formatScore(c.NamaeuranaiScore)},
			{"**Total**", "**" + formatScore(c.CompositeScore) + "**"},
		},
	})
	md.PlainText("")
	w.writeVerdictTables(md, c)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, run *model.AnalysisRun) {
	md.H1("Kakusu Analysis Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run ID", "`" + run.ID + "`"},
			{"Surname", run.Surname},
			{"Characters", strconv.Itoa(run.CharCount)},
			{"Date", run.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Patterns", fmt.Sprintf("%d/%d", run.CompletedPatterns, run.TotalPatterns)},
			{"Status", statusText(run)},
		},
	})
	md.PlainText("")

	if run.Partial {
		md.Warningf("The run stopped early. Only %d of %d patterns were evaluated.",
			run.CompletedPatterns, run.TotalPatterns)
		md.PlainText("")
	}
}

func statusText(run *model.AnalysisRun) string {
	if run.Partial {
		return "⚠️ Incomplete (partial results)"
	}
	return "✅ Complete"
}

func (w *MarkdownWriter) writeRanking(md *markdown.Markdown, run *model.AnalysisRun) {
	md.H2("Top Results")
	md.PlainText("")

	if len(run.TopResults) == 0 {
		md.PlainText("No results.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(run.TopResults))
	for i := range run.TopResults {
		r := &run.TopResults[i]
		rows[i] = []string{
			strconv.Itoa(i + 1),
			run.Surname + " " + r.Characters,
			r.Pattern.String(),
			formatScore(r.EnamaeScore),
			formatScore(r.NamaeuranaiScore),
			"**" + formatScore(r.CompositeScore) + "**",
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Rank", "Name", "Strokes", "enamae.net", "namaeuranai.biz", "Total"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writePieChart(md, run.TopResults)
}

// writePieChart writes a mermaid pie chart of the composite score bands.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, results []model.CandidateResult) {
	counts := make([]uint64, len(scoreBands))
	for _, r := range results {
		for i, band := range scoreBands {
			if r.CompositeScore >= band.min {
				counts[i]++
				break
			}
		}
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Total Score Distribution"),
		piechart.WithShowData(true),
	)
	for i, band := range scoreBands {
		if counts[i] > 0 {
			chart.LabelAndIntValue(band.label, counts[i])
		}
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeDetails(md *markdown.Markdown, run *model.AnalysisRun) {
	if len(run.TopResults) == 0 {
		return
	}
	md.H2("Details")
	md.PlainText("")
	for i := range run.TopResults {
		r := &run.TopResults[i]
		md.H3(fmt.Sprintf("%d. %s %s %s", i+1, run.Surname, r.Characters, r.Pattern.String()))
		md.PlainText("")
		w.writeVerdictTables(md, r)
	}
}

// writeVerdictTables writes one verdict table per oracle and folds the
// explanation texts into collapsible sections.
func (w *MarkdownWriter) writeVerdictTables(md *markdown.Markdown, c *model.CandidateResult) {
	for _, oracle := range model.Oracles {
		lines := verdictLines(oracle, c.Result(oracle))
		md.PlainTextf("**%s** (%s)", oracle.Host(), formatScore(c.Score(oracle)))
		md.PlainText("")
		if len(lines) == 0 {
			md.PlainText("No answer from this site.")
			md.PlainText("")
			continue
		}

		rows := make([][]string, len(lines))
		for i, l := range lines {
			rows[i] = []string{l.Category, l.Verdict}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Category", "Verdict"},
			Rows:   rows,
		})
		md.PlainText("")

		for _, l := range lines {
			if l.Description != "" {
				md.Details(l.Category, truncateString(l.Description, 400))
			}
		}
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [kakusu](https://github.com/nao1215/kakusu)*")
}
