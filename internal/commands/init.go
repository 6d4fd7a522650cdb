package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/emitrack/emitrack/internal/config"
	"github.com/emitrack/emitrack/internal/gitops"
	"github.com/emitrack/emitrack/internal/model"
	"github.com/emitrack/emitrack/internal/store/sqlite"
)

type initOptions struct {
	backend  string
	currency string
	noGit    bool
}

func newInitCommand(g *globals) *cobra.Command {
	var opts initOptions

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new emitrack data directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			if g.owner == "" {
				return &model.InvalidInputError{Field: "owner", Reason: "--owner is required"}
			}
			return runInit(cmd, absDir, g.owner, opts)
		},
	}

	cmd.Flags().StringVar(&opts.backend, "backend", config.BackendCSV, "record store: csv or sqlite")
	cmd.Flags().StringVar(&opts.currency, "currency", "INR", "ISO 4217 currency code")
	cmd.Flags().BoolVar(&opts.noGit, "no-git", false, "skip git initialization")

	return cmd
}

func runInit(cmd *cobra.Command, dir, owner string, opts initOptions) error {
	cfg := config.Default(owner)
	cfg.Store.Backend = opts.backend
	cfg.Currency = opts.currency
	cfg.Git.AutoCommit = !opts.noGit
	if err := cfg.Validate(); err != nil {
		return err
	}

	dirs := []string{
		cfg.Store.Path,
		"logs",
		"import",
		filepath.Join("import", "processed"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	if err := config.Save(filepath.Join(dir, config.FileName), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	if cfg.Store.Backend == config.BackendSQLite {
		if err := sqlite.RunMigrations(filepath.Join(dir, cfg.Store.Path, sqliteFile)); err != nil {
			return fmt.Errorf("creating database: %w", err)
		}
	}

	gitignore := "import/processed/\n*.db-journal\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "import", ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	out := cmd.OutOrStdout()
	if opts.noGit {
		fmt.Fprintf(out, "Initialized emitrack data for %s at %s\n", owner, dir)
		return nil
	}

	if err := gitops.Init(dir); err != nil {
		return fmt.Errorf("git init: %w", err)
	}
	committer := gitops.Committer{Dir: dir, AuthorName: cfg.Git.AuthorName, AuthorEmail: cfg.Git.AuthorEmail}
	hash, err := committer.Snapshot("init: emitrack data for " + owner)
	if err != nil {
		return fmt.Errorf("initial commit: %w", err)
	}

	fmt.Fprintf(out, "Initialized emitrack data for %s at %s (%s)\n", owner, dir, hash)
	return nil
}
