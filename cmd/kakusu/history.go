package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/nao1215/markdown"
	"github.com/spf13/cobra"

	"github.com/nao1215/kakusu/internal/analyzer"
	"github.com/nao1215/kakusu/internal/config"
	"github.com/nao1215/kakusu/internal/database"
	"github.com/nao1215/kakusu/internal/report"
)

// defaultHistoryLimit is the number of runs listed without --limit.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
// This command shows analysis runs stored in the local database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show stored analysis runs",
		Long: `History lists the analysis runs stored in the local database, newest
first, or prints one stored run in full.

Every 'kakusu analyze' run is stored, including runs that stopped early.

Examples:
  # List the latest runs
  kakusu history

  # Only runs for one surname
  kakusu history --surname 田中

  # Print a stored run as Markdown
  kakusu history --show 3f0c9d1e-... --markdown`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("list", "l", false,
		"List stored runs (default when --show is not given)")
	cmd.Flags().String("show", "",
		"Print the stored run with this ID")
	cmd.Flags().String("surname", "",
		"Only list runs for this surname")
	cmd.Flags().Int("limit", defaultHistoryLimit,
		"Maximum number of runs to list (0 lists all)")
	addReportFlags(cmd)

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyReportFlags(cmd, cfg); err != nil {
		return err
	}
	if cfg.JSONReport && cfg.MarkdownReport {
		return fmt.Errorf("configuration error: %w", config.ErrConflictingReportFormats)
	}

	list, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	showID, err := cmd.Flags().GetString("show")
	if err != nil {
		return err
	}
	if list && showID != "" {
		return errors.New("--list and --show are mutually exclusive")
	}
	surname, err := cmd.Flags().GetString("surname")
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()

	if showID != "" {
		run, err := store.GetRun(ctx, showID)
		if err != nil {
			return err
		}
		return writeRun(cmd, cfg, run)
	}

	runs, err := store.ListRuns(ctx, analyzer.NormalizeName(surname), limit)
	if err != nil {
		return err
	}

	out, closeOut, err := reportOutput(cmd, cfg)
	if err != nil {
		return err
	}
	if err := writeRunList(out, reportFormat(cfg), runs); err != nil {
		_ = closeOut()
		return err
	}
	return closeOut()
}

// writeRunList renders run summaries.
func writeRunList(w io.Writer, format report.Format, runs []database.RunMetadata) error {
	switch format {
	case report.FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if runs == nil {
			runs = []database.RunMetadata{}
		}
		return encoder.Encode(runs)
	case report.FormatMarkdown:
		return writeRunListMarkdown(w, runs)
	default:
		return writeRunListText(w, runs)
	}
}

func writeRunListText(w io.Writer, runs []database.RunMetadata) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No stored runs. Run 'kakusu analyze' first.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tSURNAME\tCHARS\tPATTERNS\tBEST")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			r.ID,
			r.GeneratedAt.Local().Format("2006-01-02 15:04"),
			r.Surname,
			r.CharCount,
			patternCount(r),
			bestResult(r),
		)
	}
	return tw.Flush()
}

func writeRunListMarkdown(w io.Writer, runs []database.RunMetadata) error {
	md := markdown.NewMarkdown(w)
	md.H1("Analysis History")
	md.PlainText("")
	if len(runs) == 0 {
		md.PlainText("No stored runs.")
		return md.Build()
	}

	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			"`" + r.ID + "`",
			r.GeneratedAt.Local().Format("2006-01-02 15:04"),
			r.Surname,
			strconv.Itoa(r.CharCount),
			patternCount(r),
			bestResult(r),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"ID", "Date", "Surname", "Chars", "Patterns", "Best"},
		Rows:   rows,
	})
	return md.Build()
}

// patternCount renders "400" or "120/400 (partial)".
func patternCount(r database.RunMetadata) string {
	if r.Partial || r.CompletedPatterns != r.TotalPatterns {
		return fmt.Sprintf("%d/%d (partial)", r.CompletedPatterns, r.TotalPatterns)
	}
	return strconv.Itoa(r.TotalPatterns)
}

// bestResult renders the top result of a run.
func bestResult(r database.RunMetadata) string {
	if r.BestCharacters == "" {
		return "-"
	}
	return fmt.Sprintf("%s %.1f", r.BestCharacters, r.BestScore)
}
