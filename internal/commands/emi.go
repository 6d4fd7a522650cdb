package commands

import (
	"github.com/spf13/cobra"

	"github.com/emitrack/emitrack/internal/ledger"
	"github.com/emitrack/emitrack/internal/model"
	"github.com/emitrack/emitrack/internal/tracker"
)

func newEMICommand(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "emi",
		Short: "Manage installments",
	}
	cmd.AddCommand(
		newEMIAddCommand(g),
		newEMIScheduleCommand(g),
		newEMIListCommand(g),
		newEMIStatusCommand(g),
		newEMIRemoveCommand(g),
		newEMIPurgeCommand(g),
	)
	return cmd
}

type emiAddOptions struct {
	date      string
	amount    string
	category  string
	status    string
	balance   string
	principal string
	interest  string
}

func newEMIAddCommand(g *globals) *cobra.Command {
	var opts emiAddOptions

	cmd := &cobra.Command{
		Use:   "add <group>",
		Short: "Record a single installment",
		Args:  cobra.ExactArgs(1),
		RunE: g.withEnv(func(cmd *cobra.Command, e *env, args []string) error {
			return runEMIAdd(cmd, e, args[0], opts)
		}),
	}

	cmd.Flags().StringVar(&opts.date, "date", "", "due date, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&opts.amount, "amount", "", "installment amount (required)")
	cmd.Flags().StringVar(&opts.category, "category", string(model.CategoryDebt), "debt, planned or investment")
	cmd.Flags().StringVar(&opts.status, "status", "", "paid or unpaid (default: decided by date)")
	cmd.Flags().StringVar(&opts.balance, "balance", "", "outstanding balance after this installment")
	cmd.Flags().StringVar(&opts.principal, "principal", "", "principal component")
	cmd.Flags().StringVar(&opts.interest, "interest", "", "interest component")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func runEMIAdd(cmd *cobra.Command, e *env, group string, opts emiAddOptions) error {
	amount, err := parseAmount("amount", opts.amount)
	if err != nil {
		return err
	}
	category, err := model.ParseCategory(opts.category)
	if err != nil {
		return err
	}
	balance, err := parseOptionalAmount("balance", opts.balance)
	if err != nil {
		return err
	}
	principal, err := parseOptionalAmount("principal", opts.principal)
	if err != nil {
		return err
	}
	interest, err := parseOptionalAmount("interest", opts.interest)
	if err != nil {
		return err
	}

	rec, err := e.svc.AddInstallment(cmd.Context(), tracker.AddInstallmentParams{
		GroupKey:  group,
		Date:      opts.date,
		Amount:    amount,
		Category:  category,
		Status:    model.PaymentStatus(opts.status),
		Balance:   balance,
		Principal: principal,
		Interest:  interest,
	})
	if err != nil {
		return err
	}
	e.printf("Added %s: %s %s %s\n", rec.ID, rec.GroupKey, rec.Date, e.fmt.Money(rec.Amount))
	return nil
}

type emiScheduleOptions struct {
	start    string
	end      string
	amount   string
	category string
}

func newEMIScheduleCommand(g *globals) *cobra.Command {
	var opts emiScheduleOptions

	cmd := &cobra.Command{
		Use:   "schedule <group>",
		Short: "Generate equal monthly installments between two dates",
		Args:  cobra.ExactArgs(1),
		RunE: g.withEnv(func(cmd *cobra.Command, e *env, args []string) error {
			return runEMISchedule(cmd, e, args[0], opts)
		}),
	}

	cmd.Flags().StringVar(&opts.start, "start", "", "first due date, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&opts.end, "end", "", "last possible due date, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&opts.amount, "amount", "", "monthly amount (required)")
	cmd.Flags().StringVar(&opts.category, "category", string(model.CategoryDebt), "debt, planned or investment")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func runEMISchedule(cmd *cobra.Command, e *env, group string, opts emiScheduleOptions) error {
	start, err := parseDay("start", opts.start)
	if err != nil {
		return err
	}
	end, err := parseDay("end", opts.end)
	if err != nil {
		return err
	}
	amount, err := parseAmount("amount", opts.amount)
	if err != nil {
		return err
	}
	category, err := model.ParseCategory(opts.category)
	if err != nil {
		return err
	}

	n, err := e.svc.GenerateSchedule(cmd.Context(), ledger.ScheduleRequest{
		GroupKey:      group,
		Start:         start,
		End:           end,
		MonthlyAmount: amount,
		Category:      category,
	})
	if err != nil {
		return err
	}
	e.printf("Scheduled %d installments for %s\n", n, group)
	return nil
}

func newEMIListCommand(g *globals) *cobra.Command {
	var group string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List installments",
		Args:  cobra.NoArgs,
		RunE: g.withEnv(func(cmd *cobra.Command, e *env, _ []string) error {
			recs, err := e.svc.ListInstallments(cmd.Context())
			if err != nil {
				return err
			}
			if group != "" {
				var kept []model.InstallmentRecord
				for _, r := range recs {
					if r.GroupKey == group {
						kept = append(kept, r)
					}
				}
				recs = kept
			}
			return e.show(e.fmt.Installments(recs, e.now))
		}),
	}

	cmd.Flags().StringVar(&group, "group", "", "only this lender or grouping")

	return cmd
}

func newEMIStatusCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <paid|unpaid|auto>",
		Short: "Set or clear an installment's explicit payment status",
		Args:  cobra.ExactArgs(2),
		RunE: g.withEnv(func(cmd *cobra.Command, e *env, args []string) error {
			status := model.PaymentStatus(args[1])
			if args[1] == "auto" {
				status = model.StatusUnset
			}
			rec, err := e.svc.SetStatus(cmd.Context(), args[0], status)
			if err != nil {
				return err
			}
			state := "unpaid"
			if ledger.IsPaid(rec, e.now) {
				state = "paid"
			}
			e.printf("%s is now %s\n", rec.ID, state)
			return nil
		}),
	}
}

func newEMIRemoveCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete one installment",
		Args:  cobra.ExactArgs(1),
		RunE: g.withEnv(func(cmd *cobra.Command, e *env, args []string) error {
			if err := e.svc.DeleteInstallment(cmd.Context(), args[0]); err != nil {
				return err
			}
			e.printf("Deleted %s\n", args[0])
			return nil
		}),
	}
}

func newEMIPurgeCommand(g *globals) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "purge <group>",
		Short: "Delete every installment of a lender or grouping",
		Args:  cobra.ExactArgs(1),
		RunE: g.withEnv(func(cmd *cobra.Command, e *env, args []string) error {
			if !yes {
				return errNotConfirmed
			}
			n, err := e.svc.PurgeGroup(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			e.printf("Deleted %d installments of %s\n", n, args[0])
			return nil
		}),
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")

	return cmd
}
