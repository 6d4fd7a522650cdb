package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/emitrack/emitrack/internal/ledger"
	"github.com/emitrack/emitrack/internal/model"
	"github.com/emitrack/emitrack/internal/tracker"
)

func newLendCommand(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lend",
		Short: "Track money lent to others",
	}
	cmd.AddCommand(
		newLendAddCommand(g),
		newLendEditCommand(g),
		newLendSettleCommand(g),
		newLendCloseCommand(g),
		newLendRemoveCommand(g),
		newLendListCommand(g),
	)
	return cmd
}

func newLendAddCommand(g *globals) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "add <name> <principal>",
		Short: "Record a new borrower",
		Args:  cobra.ExactArgs(2),
		RunE: g.withEnv(func(cmd *cobra.Command, e *env, args []string) error {
			principal, err := parseAmount("principal", args[1])
			if err != nil {
				return err
			}
			day := date
			if day == "" {
				day = model.FormatDate(e.now)
			}
			b, err := e.svc.AddBorrower(cmd.Context(), args[0], principal, day)
			if err != nil {
				return err
			}
			e.printf("Added %s: %s borrowed %s on %s\n", b.ID, b.Name, e.fmt.Money(b.Principal), b.BorrowedDate)
			return nil
		}),
	}

	cmd.Flags().StringVar(&date, "date", "", "date lent, YYYY-MM-DD (default: today)")

	return cmd
}

type lendEditOptions struct {
	name      string
	principal string
	date      string
}

func newLendEditCommand(g *globals) *cobra.Command {
	var opts lendEditOptions

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a borrower's name, principal or date",
		Args:  cobra.ExactArgs(1),
		RunE: g.withEnv(func(cmd *cobra.Command, e *env, args []string) error {
			var edit tracker.BorrowerEdit
			if cmd.Flags().Changed("name") {
				edit.Name = &opts.name
			}
			if cmd.Flags().Changed("principal") {
				principal, err := parseAmount("principal", opts.principal)
				if err != nil {
					return err
				}
				edit.Principal = &principal
			}
			if cmd.Flags().Changed("date") {
				edit.BorrowedDate = &opts.date
			}
			b, err := e.svc.EditBorrower(cmd.Context(), args[0], edit)
			if err != nil {
				return err
			}
			e.printf("Updated %s: %s, outstanding %s\n", b.ID, b.Name, e.fmt.Money(ledger.Outstanding(b)))
			return nil
		}),
	}

	cmd.Flags().StringVar(&opts.name, "name", "", "new name")
	cmd.Flags().StringVar(&opts.principal, "principal", "", "new principal")
	cmd.Flags().StringVar(&opts.date, "date", "", "new date lent, YYYY-MM-DD")

	return cmd
}

func newLendSettleCommand(g *globals) *cobra.Command {
	var date, note string

	cmd := &cobra.Command{
		Use:   "settle <id> <amount>",
		Short: "Record a repayment from a borrower",
		Args:  cobra.ExactArgs(2),
		RunE: g.withEnv(func(cmd *cobra.Command, e *env, args []string) error {
			amount, err := parseAmount("amount", args[1])
			if err != nil {
				return err
			}
			day := date
			if day == "" {
				day = model.FormatDate(e.now)
			}
			b, err := e.svc.Settle(cmd.Context(), args[0], amount, day, note)
			if err != nil {
				return err
			}
			e.printf("Settled %s from %s, outstanding %s\n", e.fmt.Money(amount), b.Name, e.fmt.Money(ledger.Outstanding(b)))
			return nil
		}),
	}

	cmd.Flags().StringVar(&date, "date", "", "repayment date, YYYY-MM-DD (default: today)")
	cmd.Flags().StringVar(&note, "note", "", "free-text note")

	return cmd
}

func newLendCloseCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "close <id> [description...]",
		Short: "Close a borrower record",
		Args:  cobra.MinimumNArgs(1),
		RunE: g.withEnv(func(cmd *cobra.Command, e *env, args []string) error {
			b, err := e.svc.CloseBorrower(cmd.Context(), args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			e.printf("Closed %s (%s) with %s outstanding\n", b.ID, b.Name, e.fmt.Money(ledger.Outstanding(b)))
			return nil
		}),
	}
}

func newLendRemoveCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a borrower and its settlements",
		Args:  cobra.ExactArgs(1),
		RunE: g.withEnv(func(cmd *cobra.Command, e *env, args []string) error {
			if err := e.svc.DeleteBorrower(cmd.Context(), args[0]); err != nil {
				return err
			}
			e.printf("Deleted %s\n", args[0])
			return nil
		}),
	}
}

func newLendListCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List borrowers with their settlements",
		Args:  cobra.NoArgs,
		RunE: g.withEnv(func(cmd *cobra.Command, e *env, _ []string) error {
			v, err := e.svc.Views(cmd.Context(), ledger.PeriodOf(e.now), e.now)
			if err != nil {
				return err
			}
			return e.show(e.fmt.Lending(v))
		}),
	}
}
