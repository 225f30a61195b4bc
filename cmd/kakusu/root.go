package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/kakusu/internal/config"
)

// NewRootCmd creates the root command for kakusu.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kakusu",
		Short: "Find the luckiest stroke patterns for a given name",
		Long: `kakusu evaluates every stroke pattern of a given name against two
Japanese name fortune sites (enamae.net and namaeuranai.biz) and ranks the
patterns by their combined score.

Each pattern is represented by a single character per position, so the
ranking is about stroke counts, not about concrete names. Use
'kakusu candidates' to find real names with a pattern you like.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().String("log-format", "text", "Log format: text or json")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .kakusu in current or home directory)")
	cmd.PersistentFlags().String("data-dir", config.XDGDataDir(),
		"Directory of the local database")

	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewFortuneCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewCandidatesCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
