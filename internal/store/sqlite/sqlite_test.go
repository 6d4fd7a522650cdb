package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emitrack/emitrack/internal/model"
	"github.com/emitrack/emitrack/internal/store"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func openTemp(t *testing.T) (*Backend, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "db", "emitrack.db")
	b, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })
	return b, path
}

func borrower(id, name string) model.BorrowerRecord {
	return model.BorrowerRecord{
		ID: id, OwnerID: "o", Name: name, Principal: dec("5000"),
		BorrowedDate: "2024-01-01", Status: model.BorrowerActive,
	}
}

func TestBackend_PutUpdateKeepsOrder(t *testing.T) {
	ctx := context.Background()
	b, _ := openTemp(t)
	c := store.Borrowers(store.New(b, nil))

	require.NoError(t, c.Put(ctx, "o", borrower("b1", "Ravi"), borrower("b2", "Anu")))
	_, err := c.Update(ctx, "o", "b1", func(r *model.BorrowerRecord) error {
		r.Settlements = append(r.Settlements, model.Settlement{ID: "s1", Amount: dec("2000"), Date: "2024-02-01"})
		return nil
	})
	require.NoError(t, err)

	got, err := c.List(ctx, "o")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b1", got[0].ID)
	require.Len(t, got[0].Settlements, 1)
	assert.True(t, got[0].Settlements[0].Amount.Equal(dec("2000")))
	assert.Equal(t, "b2", got[1].ID)
}

func TestBackend_Reopen(t *testing.T) {
	ctx := context.Background()
	b, path := openTemp(t)
	c := store.Borrowers(store.New(b, nil))
	require.NoError(t, c.Put(ctx, "o", borrower("b1", "Ravi")))
	require.NoError(t, b.Close())

	again, err := Open(path)
	require.NoError(t, err)
	defer again.Close()
	got, err := store.Borrowers(store.New(again, nil)).List(ctx, "o")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Ravi", got[0].Name)
}

func TestBackend_CommitIsAtomic(t *testing.T) {
	ctx := context.Background()
	b, _ := openTemp(t)
	row := store.BorrowerCodec{}.Marshal(borrower("b1", "Ravi"))

	err := b.Commit(ctx, "o", []store.Op{
		store.Put(store.KindBorrowers, row),
		store.Delete("bogus", "x"),
	})
	require.Error(t, err)

	rows, err := b.Load(ctx, store.KindBorrowers, "o")
	require.NoError(t, err)
	assert.Empty(t, rows, "failed batch leaves nothing behind")
}

func TestBackend_OwnersAreSeparate(t *testing.T) {
	ctx := context.Background()
	b, _ := openTemp(t)
	s := store.New(b, nil)
	c := store.Borrowers(s)
	require.NoError(t, c.Put(ctx, "o", borrower("b1", "Ravi")))

	other, err := c.List(ctx, "someone-else")
	require.NoError(t, err)
	assert.Empty(t, other)

	n, err := c.DeleteWhere(ctx, "o", func(model.BorrowerRecord) bool { return true })
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRunMigrations_Idempotent(t *testing.T) {
	_, path := openTemp(t)
	require.NoError(t, RunMigrations(path))
}
