package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/emitrack/emitrack/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	return newRootCommand(time.Now)
}

func newRootCommand(now func() time.Time) *cobra.Command {
	g := &globals{now: now}

	rootCmd := &cobra.Command{
		Use:     "emitrack",
		Short:   "Track EMIs, income, lending and investments",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&g.dir, "dir", ".", "data directory")
	rootCmd.PersistentFlags().StringVar(&g.owner, "owner", "", "owner to act as (default from config)")
	rootCmd.PersistentFlags().BoolVar(&g.render, "render", false, "render markdown output for the terminal")

	rootCmd.AddCommand(
		newInitCommand(g),
		newEMICommand(g),
		newIncomeCommand(g),
		newLendCommand(g),
		newInvestCommand(g),
		newImportCommand(g),
		newSummaryCommand(g),
		newLoansCommand(g),
		newWatchCommand(g),
		newClearAllCommand(g),
	)

	return rootCmd
}
