package store

import (
	"context"
	"fmt"

	"github.com/emitrack/emitrack/internal/model"
)

// Collection is typed access to one collection of a Store.
type Collection[T any] struct {
	store *Store
	codec Codec[T]
}

// NewCollection returns the collection codec describes.
func NewCollection[T any](s *Store, codec Codec[T]) *Collection[T] {
	return &Collection[T]{store: s, codec: codec}
}

// Installments, Income, Borrowers and Investments return the four collections
// of s.
func Installments(s *Store) *Collection[model.InstallmentRecord] {
	return NewCollection[model.InstallmentRecord](s, InstallmentCodec{})
}

func Income(s *Store) *Collection[model.IncomeRecord] {
	return NewCollection[model.IncomeRecord](s, IncomeCodec{})
}

func Borrowers(s *Store) *Collection[model.BorrowerRecord] {
	return NewCollection[model.BorrowerRecord](s, BorrowerCodec{})
}

func Investments(s *Store) *Collection[model.InvestmentRecord] {
	return NewCollection[model.InvestmentRecord](s, InvestmentCodec{})
}

// Kind returns the collection's kind.
func (c *Collection[T]) Kind() Kind { return c.codec.Kind() }

// List returns every record of owner in stored order.
func (c *Collection[T]) List(ctx context.Context, owner string) ([]T, error) {
	rows, err := c.store.Load(ctx, c.codec.Kind(), owner)
	if err != nil {
		return nil, err
	}
	return c.decode(rows)
}

func (c *Collection[T]) decode(rows []Row) ([]T, error) {
	out := make([]T, 0, len(rows))
	for i, row := range rows {
		rec, err := c.codec.Unmarshal(row)
		if err != nil {
			return nil, fmt.Errorf("%s record %d [%s]: %w", c.codec.Kind(), i+1, row.ID(), err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// Get returns the record with id, or model.ErrNotFound.
func (c *Collection[T]) Get(ctx context.Context, owner, id string) (T, error) {
	recs, err := c.List(ctx, owner)
	if err != nil {
		var zero T
		return zero, err
	}
	for _, r := range recs {
		if c.codec.ID(r) == id {
			return r, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("%s %s: %w", c.codec.Kind(), id, model.ErrNotFound)
}

// PutOps returns the ops storing recs.
func (c *Collection[T]) PutOps(recs ...T) []Op {
	ops := make([]Op, len(recs))
	for i, r := range recs {
		ops[i] = Put(c.codec.Kind(), c.codec.Marshal(r))
	}
	return ops
}

// DeleteOps returns the ops removing ids.
func (c *Collection[T]) DeleteOps(ids ...string) []Op {
	ops := make([]Op, len(ids))
	for i, id := range ids {
		ops[i] = Delete(c.codec.Kind(), id)
	}
	return ops
}

// Put stores recs in one batch.
func (c *Collection[T]) Put(ctx context.Context, owner string, recs ...T) error {
	return c.store.Commit(ctx, owner, c.PutOps(recs...)...)
}

// Update loads the record with id, applies mutate and stores the result.
// Nothing is written when mutate fails.
func (c *Collection[T]) Update(ctx context.Context, owner, id string, mutate func(*T) error) (T, error) {
	rec, err := c.Get(ctx, owner, id)
	if err != nil {
		return rec, err
	}
	if err := mutate(&rec); err != nil {
		var zero T
		return zero, err
	}
	if err := c.Put(ctx, owner, rec); err != nil {
		var zero T
		return zero, err
	}
	return rec, nil
}

// Delete removes the record with id, or returns model.ErrNotFound.
func (c *Collection[T]) Delete(ctx context.Context, owner, id string) error {
	if _, err := c.Get(ctx, owner, id); err != nil {
		return err
	}
	return c.store.Commit(ctx, owner, c.DeleteOps(id)...)
}

// MatchOps returns delete ops for every record of owner matching pred.
func (c *Collection[T]) MatchOps(ctx context.Context, owner string, pred func(T) bool) ([]Op, error) {
	recs, err := c.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, r := range recs {
		if pred(r) {
			ids = append(ids, c.codec.ID(r))
		}
	}
	return c.DeleteOps(ids...), nil
}

// DeleteWhere removes every record matching pred in one batch and returns the
// number removed.
func (c *Collection[T]) DeleteWhere(ctx context.Context, owner string, pred func(T) bool) (int, error) {
	ops, err := c.MatchOps(ctx, owner, pred)
	if err != nil {
		return 0, err
	}
	if err := c.store.Commit(ctx, owner, ops...); err != nil {
		return 0, err
	}
	return len(ops), nil
}

// Snapshot is a decoded collection snapshot.
type Snapshot[T any] struct {
	Records []T
	Err     error
}

// Watch decodes Store.Watch for owner. The channel closes when ctx is done.
func (c *Collection[T]) Watch(ctx context.Context, owner string) <-chan Snapshot[T] {
	raw := c.store.Watch(ctx, c.codec.Kind(), owner)
	out := make(chan Snapshot[T])
	go func() {
		defer close(out)
		for snap := range raw {
			var next Snapshot[T]
			if snap.Err != nil {
				next.Err = snap.Err
			} else {
				next.Records, next.Err = c.decode(snap.Rows)
			}
			select {
			case <-ctx.Done():
				return
			case out <- next:
			}
		}
	}()
	return out
}
