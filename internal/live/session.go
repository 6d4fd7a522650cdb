// Package live keeps the derived views of the signed-in owner current while
// records change.
package live

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/emitrack/emitrack/internal/identity"
	"github.com/emitrack/emitrack/internal/ledger"
	"github.com/emitrack/emitrack/internal/model"
	"github.com/emitrack/emitrack/internal/store"
)

// Options configures a Session.
type Options struct {
	// Period is the month views are computed for. Defaults to the month of Now().
	Period *ledger.Period
	Now    func() time.Time
	Log    *zap.Logger
}

// Session follows an identity provider and republishes ledger.Views for the
// current owner after every change to any of the owner's collections.
type Session struct {
	store   *store.Store
	ids     identity.Provider
	publish func(ledger.Views)
	now     func() time.Time
	log     *zap.Logger

	mu      sync.Mutex
	period  ledger.Period
	latest  ledger.Views
	ready   bool
	refresh chan struct{}
}

// NewSession creates a Session. publish is called from the session goroutine
// with every recomputed view.
func NewSession(st *store.Store, ids identity.Provider, publish func(ledger.Views), opts Options) *Session {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	period := ledger.PeriodOf(opts.Now())
	if opts.Period != nil {
		period = *opts.Period
	}
	return &Session{
		store:   st,
		ids:     ids,
		publish: publish,
		now:     opts.Now,
		log:     opts.Log.Named("live"),
		period:  period,
		refresh: make(chan struct{}, 1),
	}
}

// SetPeriod selects the month views are computed for and republishes.
func (s *Session) SetPeriod(p ledger.Period) {
	s.mu.Lock()
	s.period = p
	s.mu.Unlock()
	select {
	case s.refresh <- struct{}{}:
	default:
	}
}

// Latest returns the most recently published views. ok is false until the
// first snapshot of the current owner is complete.
func (s *Session) Latest() (v ledger.Views, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest, s.ready
}

// Run follows the identity provider until ctx is done. Each owner change
// cancels the previous owner's subscriptions and discards its views before
// subscribing for the new owner. An empty owner subscribes to nothing.
func (s *Session) Run(ctx context.Context) error {
	owners := s.ids.Watch(ctx)

	var (
		stop func()
		done chan error
	)
	halt := func() error {
		if stop == nil {
			return nil
		}
		stop()
		err := <-done
		stop, done = nil, nil
		return err
	}
	defer func() { _ = halt() }()

	for {
		select {
		case <-ctx.Done():
			return nil
		case owner, ok := <-owners:
			if !ok {
				return nil
			}
			if err := halt(); err != nil {
				return err
			}
			s.reset()
			s.log.Info("identity changed", zap.String("owner", owner))
			if owner == "" {
				continue
			}
			octx, cancel := context.WithCancel(ctx)
			stop, done = cancel, make(chan error, 1)
			go func() { done <- s.follow(octx, owner) }()
		}
	}
}

func (s *Session) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = ledger.Views{}
	s.ready = false
}

// update is one collection snapshot on its way to the recompute loop.
type update struct {
	kind  store.Kind
	err   error
	apply func(*ledger.Snapshot)
}

func forward[T any](ctx context.Context, c *store.Collection[T], owner string, out chan<- update, set func(*ledger.Snapshot, []T)) func() error {
	return func() error {
		for snap := range c.Watch(ctx, owner) {
			recs := snap.Records
			u := update{kind: c.Kind(), err: snap.Err, apply: func(ls *ledger.Snapshot) { set(ls, recs) }}
			select {
			case <-ctx.Done():
				return nil
			case out <- u:
			}
		}
		return nil
	}
}

// follow watches the four collections of owner and recomputes on every
// snapshot until ctx is done.
func (s *Session) follow(ctx context.Context, owner string) error {
	updates := make(chan update)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(forward(gctx, store.Installments(s.store), owner, updates, func(ls *ledger.Snapshot, r []model.InstallmentRecord) { ls.Installments = r }))
	g.Go(forward(gctx, store.Income(s.store), owner, updates, func(ls *ledger.Snapshot, r []model.IncomeRecord) { ls.Income = r }))
	g.Go(forward(gctx, store.Borrowers(s.store), owner, updates, func(ls *ledger.Snapshot, r []model.BorrowerRecord) { ls.Borrowers = r }))
	g.Go(forward(gctx, store.Investments(s.store), owner, updates, func(ls *ledger.Snapshot, r []model.InvestmentRecord) { ls.Investments = r }))

	g.Go(func() error {
		snap := ledger.Snapshot{OwnerID: owner}
		seen := make(map[store.Kind]bool, len(store.Kinds))
		failed := make(map[store.Kind]error)
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-s.refresh:
			case u := <-updates:
				if u.err != nil {
					if failed[u.kind] == nil {
						s.log.Warn("subscription error, pausing updates",
							zap.String("owner", owner),
							zap.String("collection", string(u.kind)),
							zap.Error(u.err))
					}
					failed[u.kind] = u.err
					continue
				}
				if failed[u.kind] != nil {
					s.log.Info("subscription recovered",
						zap.String("owner", owner),
						zap.String("collection", string(u.kind)))
					delete(failed, u.kind)
				}
				u.apply(&snap)
				seen[u.kind] = true
			}
			if len(seen) < len(store.Kinds) || len(failed) > 0 {
				continue
			}
			s.emit(snap)
		}
	})
	return g.Wait()
}

func (s *Session) emit(snap ledger.Snapshot) {
	s.mu.Lock()
	period := s.period
	s.mu.Unlock()

	views := ledger.Compute(snap, period, s.now())

	s.mu.Lock()
	s.latest = views
	s.ready = true
	s.mu.Unlock()

	if s.publish != nil {
		s.publish(views)
	}
}
