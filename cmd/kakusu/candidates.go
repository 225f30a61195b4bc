package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nao1215/kakusu/internal/candidate"
	"github.com/nao1215/kakusu/internal/config"
	"github.com/nao1215/kakusu/internal/database"
	"github.com/nao1215/kakusu/internal/model"
)

// NewCandidatesCmd creates the candidates command.
func NewCandidatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "candidates",
		Short: "Find real names with a given stroke pattern",
		Long: `Candidates lists real given names whose characters have the given
stroke counts, from the local name database.

With --ingest the matching names are first collected from b-name.jp and
stored, so later lookups work offline.

Examples:
  # Names whose two characters have 5 and 12 strokes
  kakusu candidates --strokes 5,12

  # Collect female names with 7 and 8 strokes, then list them
  kakusu candidates --strokes 7,8 --gender f --ingest`,
		Args: cobra.NoArgs,
		RunE: runCandidatesCmd,
	}

	cmd.Flags().StringP("strokes", "s", "",
		"Stroke count of each character, e.g. 5,12 (required)")
	cmd.Flags().StringP("gender", "g", "",
		"Only names for this gender (m or f, default: any)")
	cmd.Flags().Bool("ingest", false,
		"Collect matching names from b-name.jp before listing")
	cmd.Flags().Int("limit", database.DefaultNameLimit,
		"Maximum number of names to list")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON")
	addNetworkFlags(cmd)
	_ = cmd.MarkFlagRequired("strokes")

	return cmd
}

// runCandidatesCmd executes the candidates command.
func runCandidatesCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyNetworkFlags(cmd, cfg); err != nil {
		return err
	}
	if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return err
	}

	strokesFlag, err := cmd.Flags().GetString("strokes")
	if err != nil {
		return err
	}
	strokes, err := candidate.ParseStrokes(strokesFlag)
	if err != nil {
		return err
	}

	genderFlag, err := cmd.Flags().GetString("gender")
	if err != nil {
		return err
	}
	var gender model.Gender
	if genderFlag != "" {
		if gender, err = model.ParseGender(genderFlag); err != nil {
			return err
		}
	}

	ingest, err := cmd.Flags().GetBool("ingest")
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	logger := setupLogger(cmd, cmd.ErrOrStderr(), cfg.Verbose)
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()
	if a.store == nil {
		return errors.New("the name database is not available")
	}

	if ingest {
		fetcher, site := a.fetcher(config.SiteBName, false)
		ingester, err := candidate.NewIngester(fetcher, site.BaseURL, a.store,
			candidate.WithLogger(logger))
		if err != nil {
			return err
		}

		// Without a gender both lists are collected.
		genders := []model.Gender{gender}
		if gender == "" {
			genders = []model.Gender{model.GenderMale, model.GenderFemale}
		}
		for _, g := range genders {
			n, err := ingester.Ingest(ctx, strokes, g)
			switch {
			case errors.Is(err, candidate.ErrNoNames):
				logger.Warn("no names found", "strokes", candidate.FormatStrokes(strokes), "gender", g.Word())
			case err != nil:
				return err
			default:
				fmt.Fprintf(cmd.ErrOrStderr(), "Stored %d new %s names\n", n, g.Word())
			}
		}
	}

	q := database.NameQuery{Strokes: strokes, Limit: limit}
	if gender != "" {
		q.Gender = gender.Word()
	}
	names, err := a.store.QueryNames(ctx, q)
	if err != nil {
		return err
	}

	if cfg.JSONReport {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		if names == nil {
			names = []model.NameCandidate{}
		}
		return encoder.Encode(names)
	}
	return writeNamesText(cmd.OutOrStdout(), strokes, names)
}

func writeNamesText(w io.Writer, strokes []int, names []model.NameCandidate) error {
	if len(names) == 0 {
		_, err := fmt.Fprintf(w, "No names with strokes %s. Try --ingest.\n", candidate.FormatStrokes(strokes))
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tYOMI\tSTROKES\tTOTAL\tGENDER")
	for _, n := range names {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
			n.Name,
			n.Yomi,
			candidate.FormatStrokes(n.Pattern()),
			n.TotalStrokes,
			n.Gender,
		)
	}
	return tw.Flush()
}
