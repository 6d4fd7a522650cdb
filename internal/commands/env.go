package commands

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/emitrack/emitrack/internal/config"
	"github.com/emitrack/emitrack/internal/gitops"
	"github.com/emitrack/emitrack/internal/ledger"
	"github.com/emitrack/emitrack/internal/logger"
	"github.com/emitrack/emitrack/internal/model"
	"github.com/emitrack/emitrack/internal/report"
	"github.com/emitrack/emitrack/internal/store"
	"github.com/emitrack/emitrack/internal/store/csvfile"
	"github.com/emitrack/emitrack/internal/store/sqlite"
	"github.com/emitrack/emitrack/internal/tracker"
)

// sqliteFile is the database file name under the store path.
const sqliteFile = "emitrack.db"

// globals holds the root command's persistent flags.
type globals struct {
	dir    string
	owner  string
	render bool
	now    func() time.Time
}

// env is everything a command needs to read and write one data directory.
type env struct {
	dir   string
	cfg   *config.Config
	log   *zap.Logger
	store *store.Store
	svc   *tracker.Service
	fmt   report.Formatter
	out   io.Writer
	now   time.Time
	g     *globals
}

func (g *globals) open(cmd *cobra.Command) (*env, error) {
	dir, err := filepath.Abs(g.dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	if err != nil {
		return nil, fmt.Errorf("loading %s (run emitrack init first): %w", config.FileName, err)
	}
	if g.owner != "" {
		cfg.Owner = g.owner
	}

	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	backend, err := openBackend(dir, cfg)
	if err != nil {
		return nil, err
	}
	st := store.New(backend, log)

	var committer *gitops.Committer
	if cfg.Git.AutoCommit && gitops.IsRepo(dir) {
		committer = &gitops.Committer{Dir: dir, AuthorName: cfg.Git.AuthorName, AuthorEmail: cfg.Git.AuthorEmail}
	}

	e := &env{
		dir:   dir,
		cfg:   cfg,
		log:   log,
		store: st,
		fmt:   report.NewFormatter(cfg.Currency),
		out:   cmd.OutOrStdout(),
		now:   g.now(),
		g:     g,
	}
	e.svc = tracker.NewService(st, cfg.Owner, tracker.Options{
		BatchLimit:   cfg.Batch.Limit,
		ActivityRoot: dir,
		Git:          committer,
		Now:          g.now,
		Log:          log,
	})
	return e, nil
}

func openBackend(dir string, cfg *config.Config) (store.Backend, error) {
	path := filepath.Join(dir, cfg.Store.Path)
	switch cfg.Store.Backend {
	case config.BackendSQLite:
		b, err := sqlite.Open(filepath.Join(path, sqliteFile))
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return b, nil
	default:
		return csvfile.New(path), nil
	}
}

func (e *env) close() {
	if err := e.store.Close(); err != nil {
		e.log.Warn("closing store", zap.Error(err))
	}
	_ = e.log.Sync()
}

// show writes markdown, rendered for the terminal when --render is set.
func (e *env) show(markdown string, err error) error {
	if err != nil {
		return err
	}
	if e.g.render {
		out, err := report.Render(markdown, 100)
		if err != nil {
			return err
		}
		markdown = out
	}
	_, err = io.WriteString(e.out, markdown)
	return err
}

func (e *env) printf(format string, args ...any) {
	fmt.Fprintf(e.out, format, args...)
}

// withEnv opens the data directory for the duration of run.
func (g *globals) withEnv(run func(cmd *cobra.Command, e *env, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		e, err := g.open(cmd)
		if err != nil {
			return err
		}
		defer e.close()
		return run(cmd, e, args)
	}
}

// period returns the month named by value, or the current month when empty.
func (e *env) period(value string) (ledger.Period, error) {
	if value == "" {
		return ledger.PeriodOf(e.now), nil
	}
	return ledger.ParsePeriod(value)
}

func parseAmount(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", ""))
	if err != nil {
		return decimal.Decimal{}, &model.InvalidInputError{Field: field, Reason: fmt.Sprintf("%q is not a number", s)}
	}
	return d, nil
}

// parseOptionalAmount returns a null decimal for an empty flag.
func parseOptionalAmount(field, s string) (decimal.NullDecimal, error) {
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := parseAmount(field, s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}

func parseDay(field, s string) (time.Time, error) {
	t, err := model.ParseDate(s)
	if err != nil {
		return time.Time{}, &model.InvalidInputError{Field: field, Reason: err.Error()}
	}
	return t, nil
}

var errNotConfirmed = errors.New("refusing to delete without --yes")
