// Package tracker is the write side of emitrack: it validates input, assigns
// ids, commits batches to the store and records what it did.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/emitrack/emitrack/internal/activity"
	"github.com/emitrack/emitrack/internal/gitops"
	"github.com/emitrack/emitrack/internal/id"
	"github.com/emitrack/emitrack/internal/importer"
	"github.com/emitrack/emitrack/internal/ledger"
	"github.com/emitrack/emitrack/internal/model"
	"github.com/emitrack/emitrack/internal/store"
)

// Options configures a Service. Zero values select the defaults.
type Options struct {
	// BatchLimit caps generated batches. Defaults to store.MaxBatch.
	BatchLimit int
	// ActivityRoot is the data directory holding logs/activity.csv. Empty
	// disables the activity log.
	ActivityRoot string
	// Git, when set, snapshots the data directory after every write.
	Git *gitops.Committer
	IDs id.Generator
	Now func() time.Time
	Log *zap.Logger
}

// Service reads and writes the records of one owner.
type Service struct {
	owner string
	store *store.Store
	opts  Options
	log   *zap.Logger

	installments *store.Collection[model.InstallmentRecord]
	income       *store.Collection[model.IncomeRecord]
	borrowers    *store.Collection[model.BorrowerRecord]
	investments  *store.Collection[model.InvestmentRecord]
}

// NewService creates a Service for owner over st.
func NewService(st *store.Store, owner string, opts Options) *Service {
	if opts.BatchLimit <= 0 || opts.BatchLimit > store.MaxBatch {
		opts.BatchLimit = store.MaxBatch
	}
	if opts.IDs == nil {
		opts.IDs = id.New
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	return &Service{
		owner:        owner,
		store:        st,
		opts:         opts,
		log:          opts.Log.Named("tracker").With(zap.String("owner", owner)),
		installments: store.Installments(st),
		income:       store.Income(st),
		borrowers:    store.Borrowers(st),
		investments:  store.Investments(st),
	}
}

// Owner returns the owner the service writes for.
func (s *Service) Owner() string { return s.owner }

// BatchLimit returns the effective batch limit.
func (s *Service) BatchLimit() int { return s.opts.BatchLimit }

func (s *Service) checkOwner() error {
	if s.owner == "" {
		return &model.InvalidInputError{Field: "owner_id", Reason: "no owner is signed in"}
	}
	return nil
}

func (s *Service) checkBatch(n int) error {
	if n > s.opts.BatchLimit {
		return &model.BatchLimitExceededError{Requested: n, Limit: s.opts.BatchLimit}
	}
	return nil
}

// commit writes ops in one batch and records the write.
func (s *Service) commit(ctx context.Context, action string, kind store.Kind, count int, details string, ops []store.Op) error {
	if err := s.checkOwner(); err != nil {
		return err
	}
	if err := s.checkBatch(len(ops)); err != nil {
		return err
	}
	if err := s.store.Commit(ctx, s.owner, ops...); err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}
	s.record(action, kind, count, details)
	return nil
}

// record logs a committed write, snapshots it in git and appends it to the
// activity log. Failures here do not undo the write and are only logged.
func (s *Service) record(action string, kind store.Kind, count int, details string) {
	s.log.Info(action,
		zap.String("collection", string(kind)),
		zap.Int("count", count),
		zap.String("details", details))

	var hash string
	if s.opts.Git != nil {
		h, err := s.opts.Git.Snapshot(fmt.Sprintf("%s: %s", action, details))
		switch {
		case errors.Is(err, gitops.ErrNothingToCommit):
		case err != nil:
			s.log.Warn("git snapshot failed", zap.String("action", action), zap.Error(err))
		default:
			hash = h
		}
	}

	if s.opts.ActivityRoot == "" {
		return
	}
	err := activity.Append(s.opts.ActivityRoot, activity.Entry{
		Timestamp:  s.opts.Now(),
		Owner:      s.owner,
		Action:     action,
		Collection: string(kind),
		Count:      count,
		Details:    details,
		CommitHash: hash,
	})
	if err != nil {
		s.log.Warn("activity log append failed", zap.String("action", action), zap.Error(err))
	}
}

// Snapshot loads all four collections of the owner.
func (s *Service) Snapshot(ctx context.Context) (ledger.Snapshot, error) {
	snap := ledger.Snapshot{OwnerID: s.owner}
	if err := s.checkOwner(); err != nil {
		return snap, err
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap.Installments, err = s.installments.List(gctx, s.owner)
		return err
	})
	g.Go(func() (err error) {
		snap.Income, err = s.income.List(gctx, s.owner)
		return err
	})
	g.Go(func() (err error) {
		snap.Borrowers, err = s.borrowers.List(gctx, s.owner)
		return err
	})
	g.Go(func() (err error) {
		snap.Investments, err = s.investments.List(gctx, s.owner)
		return err
	})
	if err := g.Wait(); err != nil {
		return ledger.Snapshot{OwnerID: s.owner}, fmt.Errorf("loading snapshot: %w", err)
	}
	return snap, nil
}

// Views loads the owner's records and derives every view for p at now.
func (s *Service) Views(ctx context.Context, p ledger.Period, now time.Time) (ledger.Views, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return ledger.Views{}, err
	}
	return ledger.Compute(snap, p, now), nil
}

// ImportResult reports the outcome of an import.
type ImportResult struct {
	Imported int
	Dropped  int // rows with a non-positive amount
}

// Import writes parsed rows as installments of groupKey in one batch.
func (s *Service) Import(ctx context.Context, groupKey string, category model.Category, rows []importer.Row) (ImportResult, error) {
	if category == "" {
		category = model.CategoryDebt
	}
	recs, dropped := importer.Installments(s.owner, groupKey, category, rows)
	res := ImportResult{Dropped: dropped}
	if len(recs) == 0 {
		return res, nil
	}
	now := s.opts.Now()
	for i := range recs {
		recs[i].ID = s.opts.IDs(id.PrefixInstallment)
		recs[i].CreatedAt = now
	}
	if verrs := model.ValidateInstallments(recs); len(verrs) > 0 {
		return res, verrs[0]
	}
	details := fmt.Sprintf("%s: %d rows, %d dropped", groupKey, len(recs), dropped)
	if err := s.commit(ctx, "emi.import", store.KindInstallments, len(recs), details, s.installments.PutOps(recs...)); err != nil {
		return res, err
	}
	res.Imported = len(recs)
	return res, nil
}

// ClearAll deletes every installment and investment of the owner in one batch.
// Income and lending records are kept. It returns the number removed.
func (s *Service) ClearAll(ctx context.Context) (int, error) {
	if err := s.checkOwner(); err != nil {
		return 0, err
	}
	instOps, err := s.installments.MatchOps(ctx, s.owner, func(model.InstallmentRecord) bool { return true })
	if err != nil {
		return 0, err
	}
	invOps, err := s.investments.MatchOps(ctx, s.owner, func(model.InvestmentRecord) bool { return true })
	if err != nil {
		return 0, err
	}
	ops := append(instOps, invOps...)
	if len(ops) == 0 {
		return 0, nil
	}
	details := fmt.Sprintf("%d installments, %d investments", len(instOps), len(invOps))
	if err := s.commit(ctx, "clear-all", store.KindInstallments, len(ops), details, ops); err != nil {
		return 0, err
	}
	return len(ops), nil
}
