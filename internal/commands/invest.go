package commands

import (
	"github.com/spf13/cobra"

	"github.com/emitrack/emitrack/internal/tracker"
)

func newInvestCommand(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invest",
		Short: "Track fixed-rate investments",
	}
	cmd.AddCommand(
		newInvestAddCommand(g),
		newInvestEditCommand(g),
		newInvestRemoveCommand(g),
		newInvestListCommand(g),
	)
	return cmd
}

func newInvestAddCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name> <principal> <roi> <years>",
		Short: "Record an investment and project its maturity",
		Args:  cobra.ExactArgs(4),
		RunE: g.withEnv(func(cmd *cobra.Command, e *env, args []string) error {
			principal, err := parseAmount("principal", args[1])
			if err != nil {
				return err
			}
			roi, err := parseAmount("roi", args[2])
			if err != nil {
				return err
			}
			tenure, err := parseAmount("tenure", args[3])
			if err != nil {
				return err
			}
			inv, err := e.svc.AddInvestment(cmd.Context(), args[0], principal, roi, tenure)
			if err != nil {
				return err
			}
			e.printf("Added %s: %s matures at %s\n", inv.ID, inv.Name, e.fmt.Money(inv.MaturityAmount))
			return nil
		}),
	}
}

type investEditOptions struct {
	name      string
	principal string
	roi       string
	tenure    string
}

func newInvestEditCommand(g *globals) *cobra.Command {
	var opts investEditOptions

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change an investment and recompute its maturity",
		Args:  cobra.ExactArgs(1),
		RunE: g.withEnv(func(cmd *cobra.Command, e *env, args []string) error {
			var edit tracker.InvestmentEdit
			if cmd.Flags().Changed("name") {
				edit.Name = &opts.name
			}
			if cmd.Flags().Changed("principal") {
				d, err := parseAmount("principal", opts.principal)
				if err != nil {
					return err
				}
				edit.Principal = &d
			}
			if cmd.Flags().Changed("roi") {
				d, err := parseAmount("roi", opts.roi)
				if err != nil {
					return err
				}
				edit.ROI = &d
			}
			if cmd.Flags().Changed("years") {
				d, err := parseAmount("tenure", opts.tenure)
				if err != nil {
					return err
				}
				edit.Tenure = &d
			}
			inv, err := e.svc.EditInvestment(cmd.Context(), args[0], edit)
			if err != nil {
				return err
			}
			e.printf("Updated %s: %s matures at %s\n", inv.ID, inv.Name, e.fmt.Money(inv.MaturityAmount))
			return nil
		}),
	}

	cmd.Flags().StringVar(&opts.name, "name", "", "new name")
	cmd.Flags().StringVar(&opts.principal, "principal", "", "new principal")
	cmd.Flags().StringVar(&opts.roi, "roi", "", "new annual rate in percent")
	cmd.Flags().StringVar(&opts.tenure, "years", "", "new tenure in years")

	return cmd
}

func newInvestRemoveCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete an investment",
		Args:  cobra.ExactArgs(1),
		RunE: g.withEnv(func(cmd *cobra.Command, e *env, args []string) error {
			if err := e.svc.DeleteInvestment(cmd.Context(), args[0]); err != nil {
				return err
			}
			e.printf("Deleted %s\n", args[0])
			return nil
		}),
	}
}

func newInvestListCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List investments with projected maturity",
		Args:  cobra.NoArgs,
		RunE: g.withEnv(func(cmd *cobra.Command, e *env, _ []string) error {
			invs, err := e.svc.ListInvestments(cmd.Context())
			if err != nil {
				return err
			}
			return e.show(e.fmt.Investments(invs))
		}),
	}
}
