// Package store keeps an owner's records in four collections and notifies
// watchers after every committed batch.
//
// A Backend persists rows; Store adds the batch cap and change notification;
// Collection adds typed access through a Codec.
package store

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/emitrack/emitrack/internal/model"
)

// MaxBatch is the most operations one atomic commit may carry.
const MaxBatch = 500

// Kind names a collection.
type Kind string

const (
	KindInstallments Kind = "installments"
	KindIncome       Kind = "income"
	KindBorrowers    Kind = "borrowers"
	KindInvestments  Kind = "investments"
)

// Kinds lists every collection.
var Kinds = []Kind{KindInstallments, KindIncome, KindBorrowers, KindInvestments}

// Row is one stored record in its codec's column order. Column 0 is the id.
type Row []string

// ID returns the record id held in column 0.
func (r Row) ID() string {
	if len(r) == 0 {
		return ""
	}
	return r[0]
}

// OpType is the kind of change an Op makes.
type OpType int

const (
	// OpPut inserts the row, or replaces the row with the same id.
	OpPut OpType = iota
	// OpDelete removes the row with the given id. Deleting a missing id is a no-op.
	OpDelete
)

// Op is one change within a batch.
type Op struct {
	Kind Kind
	Type OpType
	ID   string
	Row  Row // OpPut only
}

// Put returns an op storing row in kind.
func Put(kind Kind, row Row) Op {
	return Op{Kind: kind, Type: OpPut, ID: row.ID(), Row: row}
}

// Delete returns an op removing id from kind.
func Delete(kind Kind, id string) Op {
	return Op{Kind: kind, Type: OpDelete, ID: id}
}

// Backend persists rows per owner and collection.
type Backend interface {
	// Load returns every row of kind for owner in stored order.
	Load(ctx context.Context, kind Kind, owner string) ([]Row, error)
	// Commit applies ops for owner. Either every op is applied or none is.
	Commit(ctx context.Context, owner string, ops []Op) error
	Close() error
}

// Store wraps a Backend with the batch cap and change notification.
type Store struct {
	backend Backend
	log     *zap.Logger

	mu       sync.Mutex
	watchers map[watchKey]map[*watcher]struct{}
}

type watchKey struct {
	owner string
	kind  Kind
}

type watcher struct {
	changed chan struct{}
}

// New creates a Store over b.
func New(b Backend, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		backend:  b,
		log:      log.Named("store"),
		watchers: make(map[watchKey]map[*watcher]struct{}),
	}
}

// Load returns every row of kind for owner.
func (s *Store) Load(ctx context.Context, kind Kind, owner string) ([]Row, error) {
	rows, err := s.backend.Load(ctx, kind, owner)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", kind, err)
	}
	return rows, nil
}

// Commit applies ops atomically. A batch larger than MaxBatch is rejected with
// a BatchLimitExceededError before anything is written.
func (s *Store) Commit(ctx context.Context, owner string, ops ...Op) error {
	if len(ops) == 0 {
		return nil
	}
	if len(ops) > MaxBatch {
		return &model.BatchLimitExceededError{Requested: len(ops), Limit: MaxBatch}
	}
	if owner == "" {
		return &model.InvalidInputError{Field: "owner_id", Reason: "must not be empty"}
	}
	if err := s.backend.Commit(ctx, owner, ops); err != nil {
		return fmt.Errorf("committing batch: %w", err)
	}
	s.log.Debug("committed batch", zap.String("owner", owner), zap.Int("ops", len(ops)))
	s.notify(owner, ops)
	return nil
}

// Refresh makes every watcher of owner reload, for changes written outside
// this Store, such as by another process sharing the same files.
func (s *Store) Refresh(owner string) {
	ops := make([]Op, len(Kinds))
	for i, k := range Kinds {
		ops[i] = Op{Kind: k}
	}
	s.notify(owner, ops)
}

// Close closes the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

func (s *Store) notify(owner string, ops []Op) {
	touched := make(map[Kind]bool)
	for _, op := range ops {
		touched[op.Kind] = true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for kind := range touched {
		for w := range s.watchers[watchKey{owner, kind}] {
			select {
			case w.changed <- struct{}{}:
			default:
				// A reload is already pending and will see this change.
			}
		}
	}
}

// RowSnapshot is the full content of a collection after a change, or the error
// that prevented reading it.
type RowSnapshot struct {
	Rows []Row
	Err  error
}

// Watch delivers the current rows of kind for owner, then the full rows again
// after every commit touching that collection. Pending snapshots are coalesced,
// so a slow reader only sees the latest state. The channel is closed once ctx
// is done.
func (s *Store) Watch(ctx context.Context, kind Kind, owner string) <-chan RowSnapshot {
	w := &watcher{changed: make(chan struct{}, 1)}
	w.changed <- struct{}{}
	key := watchKey{owner, kind}

	s.mu.Lock()
	if s.watchers[key] == nil {
		s.watchers[key] = make(map[*watcher]struct{})
	}
	s.watchers[key][w] = struct{}{}
	s.mu.Unlock()

	out := make(chan RowSnapshot)
	go func() {
		defer close(out)
		defer s.unwatch(key, w)
		for {
			select {
			case <-ctx.Done():
				return
			case <-w.changed:
			}
			rows, err := s.Load(ctx, kind, owner)
			select {
			case <-ctx.Done():
				return
			case out <- RowSnapshot{Rows: rows, Err: err}:
			}
		}
	}()
	return out
}

func (s *Store) unwatch(key watchKey, w *watcher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.watchers[key], w)
	if len(s.watchers[key]) == 0 {
		delete(s.watchers, key)
	}
}
