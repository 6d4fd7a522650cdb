package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/emitrack/emitrack/internal/importer"
	"github.com/emitrack/emitrack/internal/model"
)

type importOptions struct {
	group    string
	category string
	format   string
}

func newImportCommand(g *globals) *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import a repayment schedule CSV, or every CSV in import/",
		Args:  cobra.MaximumNArgs(1),
		RunE: g.withEnv(func(cmd *cobra.Command, e *env, args []string) error {
			return runImport(cmd, e, args, opts)
		}),
	}

	cmd.Flags().StringVar(&opts.group, "group", "", "lender or grouping (default: from the file name)")
	cmd.Flags().StringVar(&opts.category, "category", string(model.CategoryDebt), "debt, planned or investment")
	cmd.Flags().StringVar(&opts.format, "format", "schedule", "parser format")

	return cmd
}

func runImport(cmd *cobra.Command, e *env, args []string, opts importOptions) error {
	category, err := model.ParseCategory(opts.category)
	if err != nil {
		return err
	}
	cols := e.cfg.Import
	registry := importer.DefaultRegistry(importer.ColumnMap{
		Date:      cols.DateColumn,
		Amount:    cols.AmountColumn,
		Principal: cols.PrincipalColumn,
		Interest:  cols.InterestColumn,
		Balance:   cols.BalanceColumn,
	})
	parser := registry.Get(opts.format)
	if parser == nil {
		return &model.InvalidInputError{Field: "format", Reason: "unknown format " + opts.format}
	}

	importFile := func(path, name string) error {
		group := opts.group
		if group == "" {
			group = importer.GroupKeyFromName(name)
		}
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening %s: %w", name, err)
		}
		defer f.Close()

		rows, err := parser.Parse(f)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", name, err)
		}
		res, err := e.svc.Import(cmd.Context(), group, category, rows)
		if err != nil {
			return fmt.Errorf("importing %s: %w", name, err)
		}
		e.printf("%s: imported %d installments for %s", name, res.Imported, group)
		if res.Dropped > 0 {
			e.printf(" (%d rows without an amount skipped)", res.Dropped)
		}
		e.printf("\n")
		return nil
	}

	if len(args) == 1 {
		return importFile(args[0], args[0])
	}

	files, err := importer.Scan(e.dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		e.printf("No CSV files in import/\n")
		return nil
	}
	for _, f := range files {
		if err := importFile(f.Path, f.Name); err != nil {
			return err
		}
		if err := importer.MarkProcessed(e.dir, f.Name); err != nil {
			return err
		}
		e.log.Debug("marked processed", zap.String("file", f.Name))
	}
	return nil
}
