package commands

import (
	"github.com/spf13/cobra"

	"github.com/emitrack/emitrack/internal/ledger"
	"github.com/emitrack/emitrack/internal/tracker"
)

func newIncomeCommand(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "income",
		Short: "Manage monthly income",
	}
	cmd.AddCommand(
		newIncomeAddCommand(g),
		newIncomeEditCommand(g),
		newIncomeRemoveCommand(g),
		newIncomeListCommand(g),
		newIncomeCopyCommand(g),
	)
	return cmd
}

func newIncomeAddCommand(g *globals) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "add <name> <amount>",
		Short: "Record an income entry for a month",
		Args:  cobra.ExactArgs(2),
		RunE: g.withEnv(func(cmd *cobra.Command, e *env, args []string) error {
			amount, err := parseAmount("amount", args[1])
			if err != nil {
				return err
			}
			p, err := e.period(month)
			if err != nil {
				return err
			}
			rec, err := e.svc.AddIncome(cmd.Context(), args[0], amount, p)
			if err != nil {
				return err
			}
			e.printf("Added %s: %s %s for %s\n", rec.ID, rec.Name, e.fmt.Money(rec.Amount), p)
			return nil
		}),
	}

	cmd.Flags().StringVar(&month, "month", "", "month, YYYY-MM (default: current)")

	return cmd
}

type incomeEditOptions struct {
	name   string
	amount string
	month  string
}

func newIncomeEditCommand(g *globals) *cobra.Command {
	var opts incomeEditOptions

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change an income entry",
		Args:  cobra.ExactArgs(1),
		RunE: g.withEnv(func(cmd *cobra.Command, e *env, args []string) error {
			var edit tracker.IncomeEdit
			if cmd.Flags().Changed("name") {
				edit.Name = &opts.name
			}
			if cmd.Flags().Changed("amount") {
				amount, err := parseAmount("amount", opts.amount)
				if err != nil {
					return err
				}
				edit.Amount = &amount
			}
			if cmd.Flags().Changed("month") {
				p, err := ledger.ParsePeriod(opts.month)
				if err != nil {
					return err
				}
				edit.Period = &p
			}
			rec, err := e.svc.EditIncome(cmd.Context(), args[0], edit)
			if err != nil {
				return err
			}
			e.printf("Updated %s: %s %s on %s\n", rec.ID, rec.Name, e.fmt.Money(rec.Amount), rec.Date)
			return nil
		}),
	}

	cmd.Flags().StringVar(&opts.name, "name", "", "new name")
	cmd.Flags().StringVar(&opts.amount, "amount", "", "new amount")
	cmd.Flags().StringVar(&opts.month, "month", "", "move to month, YYYY-MM")

	return cmd
}

func newIncomeRemoveCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete an income entry",
		Args:  cobra.ExactArgs(1),
		RunE: g.withEnv(func(cmd *cobra.Command, e *env, args []string) error {
			if err := e.svc.DeleteIncome(cmd.Context(), args[0]); err != nil {
				return err
			}
			e.printf("Deleted %s\n", args[0])
			return nil
		}),
	}
}

func newIncomeListCommand(g *globals) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List income entries of a month",
		Args:  cobra.NoArgs,
		RunE: g.withEnv(func(cmd *cobra.Command, e *env, _ []string) error {
			p, err := e.period(month)
			if err != nil {
				return err
			}
			recs, err := e.svc.ListIncome(cmd.Context(), p)
			if err != nil {
				return err
			}
			return e.show(e.fmt.Income(recs, p))
		}),
	}

	cmd.Flags().StringVar(&month, "month", "", "month, YYYY-MM (default: current)")

	return cmd
}

func newIncomeCopyCommand(g *globals) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "copy",
		Short: "Copy the previous month's income into a month",
		Args:  cobra.NoArgs,
		RunE: g.withEnv(func(cmd *cobra.Command, e *env, _ []string) error {
			p, err := e.period(month)
			if err != nil {
				return err
			}
			n, err := e.svc.CopyPreviousMonth(cmd.Context(), p)
			if err != nil {
				return err
			}
			if n == 0 {
				e.printf("No income recorded for %s\n", p.Previous())
				return nil
			}
			e.printf("Copied %d entries from %s to %s\n", n, p.Previous(), p)
			return nil
		}),
	}

	cmd.Flags().StringVar(&month, "month", "", "target month, YYYY-MM (default: current)")

	return cmd
}
