package commands

import (
	"github.com/spf13/cobra"

	"github.com/emitrack/emitrack/internal/ledger"
)

func newSummaryCommand(g *globals) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show the monthly dashboard",
		Args:  cobra.NoArgs,
		RunE: g.withEnv(func(cmd *cobra.Command, e *env, _ []string) error {
			p, err := e.period(month)
			if err != nil {
				return err
			}
			v, err := e.svc.Views(cmd.Context(), p, e.now)
			if err != nil {
				return err
			}
			return e.show(e.fmt.Summary(v))
		}),
	}

	cmd.Flags().StringVar(&month, "month", "", "month, YYYY-MM (default: current)")

	return cmd
}

func newLoansCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "loans",
		Short: "Show progress per lender",
		Args:  cobra.NoArgs,
		RunE: g.withEnv(func(cmd *cobra.Command, e *env, _ []string) error {
			v, err := e.svc.Views(cmd.Context(), ledger.PeriodOf(e.now), e.now)
			if err != nil {
				return err
			}
			return e.show(e.fmt.Loans(v))
		}),
	}
}

func newClearAllCommand(g *globals) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear-all",
		Short: "Delete every installment and investment of the owner",
		Args:  cobra.NoArgs,
		RunE: g.withEnv(func(cmd *cobra.Command, e *env, _ []string) error {
			if !yes {
				return errNotConfirmed
			}
			n, err := e.svc.ClearAll(cmd.Context())
			if err != nil {
				return err
			}
			e.printf("Deleted %d records\n", n)
			return nil
		}),
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")

	return cmd
}
