package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/kakusu/internal/analyzer"
	"github.com/nao1215/kakusu/internal/config"
	"github.com/nao1215/kakusu/internal/model"
	"github.com/nao1215/kakusu/internal/report"
	"github.com/nao1215/kakusu/internal/score"
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <surname>",
		Short: "Rank every stroke pattern of a given name",
		Long: `Analyze evaluates every stroke pattern of a given name with the given
number of characters (1 to 3) against both fortune sites and prints the 20
best patterns by combined score.

A pattern has one stroke count (1 to 20) per character: 20 patterns for one
character, 400 for two and 8000 for three. Every pattern costs one request
to each site, so three-character runs take a long time. The run stops after
--run-timeout and reports what was evaluated so far.

Verdicts are cached in the local database, so repeating a run for the same
surname is fast.

Examples:
  # Two-character given names for 田中
  kakusu analyze 田中 --chars 2

  # Markdown report written to a file
  kakusu analyze 田中 --chars 2 --markdown -o report.md

  # Also save the result as fortune_analysis_YYYYMMDD_HHMMSS.json
  kakusu analyze 田中 --chars 1 --save`,
		Args: cobra.ExactArgs(1),
		RunE: runAnalyzeCmd,
	}

	cmd.Flags().IntP("chars", "n", 2,
		"Number of characters of the given name (1-3)")
	cmd.Flags().StringP("gender", "g", "m",
		"Gender sent to the sites (m or f)")
	cmd.Flags().Duration("run-timeout", config.DefaultRunTimeout,
		"Upper bound for the whole run (0 disables it)")
	cmd.Flags().Int("concurrency", config.DefaultConcurrency,
		fmt.Sprintf("Number of patterns evaluated at once (1-%d)", config.MaxConcurrency))
	cmd.Flags().Bool("no-progress", false,
		"Do not print progress to stderr")
	addNetworkFlags(cmd)
	addReportFlags(cmd)
	cmd.Flags().Bool("save", false,
		"Also save the run as a timestamped JSON file in the current directory")

	return cmd
}

// addReportFlags registers the report format flags.
func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
}

// applyReportFlags copies the flags of addReportFlags into cfg.
func applyReportFlags(cmd *cobra.Command, cfg *config.Config) error {
	var err error
	if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return err
	}
	if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return err
	}
	if cfg.ReportFile, err = cmd.Flags().GetString("output"); err != nil {
		return err
	}
	return nil
}

// reportFormat maps the report flags to a format.
func reportFormat(cfg *config.Config) report.Format {
	switch {
	case cfg.JSONReport:
		return report.FormatJSON
	case cfg.MarkdownReport:
		return report.FormatMarkdown
	default:
		return report.FormatText
	}
}

// reportOutput returns where the report goes and a function that closes it.
func reportOutput(cmd *cobra.Command, cfg *config.Config) (io.Writer, func() error, error) {
	if cfg.ReportFile == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.ReportFile), 0o750); err != nil {
		return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	// Reports are only readable by the owner.
	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}

// runAnalyzeCmd executes the analyze command.
func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildAnalyzeConfig(cmd)
	if err != nil {
		return err
	}

	charCount, err := cmd.Flags().GetInt("chars")
	if err != nil {
		return err
	}
	genderFlag, err := cmd.Flags().GetString("gender")
	if err != nil {
		return err
	}
	gender, err := model.ParseGender(genderFlag)
	if err != nil {
		return err
	}
	noProgress, err := cmd.Flags().GetBool("no-progress")
	if err != nil {
		return err
	}

	req := model.AnalysisRequest{Surname: args[0], CharCount: charCount, Gender: gender}
	// Reject bad input before anything touches the network or the database.
	if req, err = analyzer.ValidateRequest(req); err != nil {
		return err
	}

	errOut := &syncWriter{w: cmd.ErrOrStderr()}
	logger := setupLogger(cmd, errOut, cfg.Verbose)
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	enamae, namaeuranai := a.oracles()
	translator := score.NewTranslator(
		score.WithLogger(logger),
		score.WithUnknownVerdictFunc(a.metrics.UnknownVerdict),
	)
	an := analyzer.New(enamae, namaeuranai,
		analyzer.WithLogger(logger),
		analyzer.WithTranslator(translator),
		analyzer.WithConcurrency(cfg.Concurrency),
		analyzer.WithRunTimeout(cfg.RunTimeout),
		analyzer.WithObserver(a.metrics),
	)

	var runOpts []analyzer.RunOption
	if !noProgress {
		runOpts = append(runOpts, analyzer.WithProgress(func(ev model.ProgressEvent) {
			fmt.Fprintf(errOut, "\r[%5.1f%%] %-12s", ev.Percent, ev.Pattern.String())
		}))
	}

	start := time.Now()
	run, runErr := an.Analyze(ctx, req, runOpts...)
	if !noProgress {
		fmt.Fprintln(errOut)
	}
	if run == nil {
		return runErr
	}
	logger.Info("analysis done", "elapsed", elapsedSince(start), "completed", run.CompletedPatterns)

	if err := writeRun(cmd, cfg, run); err != nil {
		return err
	}

	if a.store != nil {
		// Use a fresh context so an interrupted run is still recorded.
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if err := a.store.SaveRun(saveCtx, run); err != nil {
			logger.Error("failed to save analysis run", "error", err)
		}
	}

	if cfg.SaveResult {
		path, err := report.SaveFile(run, "", report.FormatJSON)
		if err != nil {
			return err
		}
		fmt.Fprintf(errOut, "Saved result to %s\n", path)
	}

	// A timed-out run has been reported and stored; the error still sets
	// the exit status.
	return runErr
}

// buildAnalyzeConfig creates a Config from the analyze command flags.
func buildAnalyzeConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if err := applyNetworkFlags(cmd, cfg); err != nil {
		return nil, err
	}
	if err := applyReportFlags(cmd, cfg); err != nil {
		return nil, err
	}
	if cfg.RunTimeout, err = cmd.Flags().GetDuration("run-timeout"); err != nil {
		return nil, err
	}
	if cfg.Concurrency, err = cmd.Flags().GetInt("concurrency"); err != nil {
		return nil, err
	}
	if cfg.SaveResult, err = cmd.Flags().GetBool("save"); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

// writeRun outputs run in the requested format.
func writeRun(cmd *cobra.Command, cfg *config.Config, run *model.AnalysisRun) error {
	out, closeOut, err := reportOutput(cmd, cfg)
	if err != nil {
		return err
	}
	w, err := report.NewWriter(reportFormat(cfg), out)
	if err != nil {
		_ = closeOut()
		return err
	}
	if _, err := w.Write(run); err != nil {
		_ = closeOut()
		return fmt.Errorf("failed to write report: %w", err)
	}
	return closeOut()
}
