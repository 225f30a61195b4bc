package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/kakusu/internal/analyzer"
	"github.com/nao1215/kakusu/internal/model"
	"github.com/nao1215/kakusu/internal/report"
	"github.com/nao1215/kakusu/internal/score"
)

// NewFortuneCmd creates the fortune command.
func NewFortuneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fortune <surname> <given-name>",
		Short: "Look up one concrete name on both fortune sites",
		Long: `Fortune sends one full name to both fortune sites and prints the raw
verdicts together with the per-site and combined scores.

Use it to check a real name after 'kakusu analyze' and 'kakusu candidates'
found a good stroke pattern.

Examples:
  kakusu fortune 田中 太郎
  kakusu fortune 田中 花子 --gender f --markdown`,
		Args: cobra.ExactArgs(2),
		RunE: runFortuneCmd,
	}

	cmd.Flags().StringP("gender", "g", "m",
		"Gender sent to the sites (m or f)")
	addNetworkFlags(cmd)
	addReportFlags(cmd)

	return cmd
}

// runFortuneCmd executes the fortune command.
func runFortuneCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyNetworkFlags(cmd, cfg); err != nil {
		return err
	}
	if err := applyReportFlags(cmd, cfg); err != nil {
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

	q := model.Query{
		Surname:   analyzer.NormalizeName(args[0]),
		GivenName: analyzer.NormalizeName(args[1]),
		Gender:    gender,
	}

	logger := setupLogger(cmd, cmd.ErrOrStderr(), cfg.Verbose)
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	enamae, namaeuranai := a.oracles()
	an := analyzer.New(enamae, namaeuranai,
		analyzer.WithLogger(logger),
		analyzer.WithTranslator(score.NewTranslator(
			score.WithLogger(logger),
			score.WithUnknownVerdictFunc(a.metrics.UnknownVerdict),
		)),
	)

	result, err := an.Evaluate(ctx, q)
	if err != nil {
		return err
	}

	out, closeOut, err := reportOutput(cmd, cfg)
	if err != nil {
		return err
	}
	w, err := report.NewWriter(reportFormat(cfg), out)
	if err != nil {
		_ = closeOut()
		return err
	}
	if _, err := w.WriteCandidate(q, result); err != nil {
		_ = closeOut()
		return fmt.Errorf("failed to write report: %w", err)
	}
	return closeOut()
}
