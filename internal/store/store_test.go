package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emitrack/emitrack/internal/model"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func emi(id, group, date, amount string) model.InstallmentRecord {
	return model.InstallmentRecord{
		ID:       id,
		OwnerID:  "owner-1",
		GroupKey: group,
		Date:     date,
		Amount:   dec(amount),
		Category: model.CategoryDebt,
		Source:   model.SourceManual,
	}
}

func newTestStore() (*Store, *Memory) {
	mem := NewMemory()
	return New(mem, nil), mem
}

func TestCollection_PutListGet(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()
	c := Installments(s)

	require.NoError(t, c.Put(ctx, "owner-1", emi("e1", "HDFC", "2024-01-05", "12000"), emi("e2", "HDFC", "2024-02-05", "12000")))

	recs, err := c.List(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "e1", recs[0].ID)
	assert.True(t, recs[1].Amount.Equal(dec("12000")))

	got, err := c.Get(ctx, "owner-1", "e2")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-05", got.Date)

	_, err = c.Get(ctx, "owner-1", "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)

	other, err := c.List(ctx, "owner-2")
	require.NoError(t, err)
	assert.Empty(t, other, "owners do not see each other's records")
}

func TestCollection_Update(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()
	c := Installments(s)
	require.NoError(t, c.Put(ctx, "owner-1", emi("e1", "HDFC", "2024-01-05", "12000"), emi("e2", "SBI", "2024-01-07", "5000")))

	got, err := c.Update(ctx, "owner-1", "e1", func(r *model.InstallmentRecord) error {
		r.Status = model.StatusPaid
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPaid, got.Status)

	recs, err := c.List(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, "e1", recs[0].ID, "update keeps position")
	assert.Equal(t, model.StatusPaid, recs[0].Status)

	_, err = c.Update(ctx, "owner-1", "e1", func(r *model.InstallmentRecord) error {
		r.Status = model.StatusUnpaid
		return errors.New("refused")
	})
	require.Error(t, err)
	recs, err = c.List(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPaid, recs[0].Status, "failed mutate writes nothing")
}

func TestCollection_DeleteWhere(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()
	c := Installments(s)
	require.NoError(t, c.Put(ctx, "owner-1",
		emi("e1", "HDFC", "2024-01-05", "1"),
		emi("e2", "SBI", "2024-01-05", "1"),
		emi("e3", "HDFC", "2024-02-05", "1"),
	))

	n, err := c.DeleteWhere(ctx, "owner-1", func(r model.InstallmentRecord) bool { return r.GroupKey == "HDFC" })
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	recs, err := c.List(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "e2", recs[0].ID)

	require.NoError(t, c.Delete(ctx, "owner-1", "e2"))
	assert.ErrorIs(t, c.Delete(ctx, "owner-1", "e2"), model.ErrNotFound)
}

func TestCommit_BatchLimit(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()
	c := Installments(s)

	recs := make([]model.InstallmentRecord, MaxBatch+1)
	for i := range recs {
		recs[i] = emi(fmt.Sprintf("e%d", i), "HDFC", "2024-01-05", "1")
	}
	err := c.Put(ctx, "owner-1", recs...)
	require.ErrorIs(t, err, model.ErrBatchLimitExceeded)
	var ble *model.BatchLimitExceededError
	require.ErrorAs(t, err, &ble)
	assert.Equal(t, MaxBatch+1, ble.Requested)

	got, err := c.List(ctx, "owner-1")
	require.NoError(t, err)
	assert.Empty(t, got, "nothing is written")

	require.NoError(t, c.Put(ctx, "owner-1", recs[:MaxBatch]...))
	got, err = c.List(ctx, "owner-1")
	require.NoError(t, err)
	assert.Len(t, got, MaxBatch)
}

func TestCommit_BackendFailureWritesNothing(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore()
	c := Installments(s)
	require.NoError(t, c.Put(ctx, "owner-1", emi("e1", "HDFC", "2024-01-05", "1")))

	mem.Fail(errors.New("offline"))
	err := c.Put(ctx, "owner-1", emi("e2", "HDFC", "2024-02-05", "1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "offline")

	mem.Fail(nil)
	got, err := c.List(ctx, "owner-1")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestCommit_RequiresOwner(t *testing.T) {
	s, _ := newTestStore()
	err := Installments(s).Put(context.Background(), "", emi("e1", "HDFC", "2024-01-05", "1"))
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestCommit_MixedCollections(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()
	inst := Installments(s)
	invs := Investments(s)
	require.NoError(t, inst.Put(ctx, "owner-1", emi("e1", "HDFC", "2024-01-05", "1")))
	require.NoError(t, invs.Put(ctx, "owner-1", model.InvestmentRecord{ID: "i1", OwnerID: "owner-1", Name: "FD", Principal: dec("100")}))

	ops := append(inst.DeleteOps("e1"), invs.DeleteOps("i1")...)
	require.NoError(t, s.Commit(ctx, "owner-1", ops...))

	a, err := inst.List(ctx, "owner-1")
	require.NoError(t, err)
	b, err := invs.List(ctx, "owner-1")
	require.NoError(t, err)
	assert.Empty(t, a)
	assert.Empty(t, b)
}

func receive[T any](t *testing.T, ch <-chan Snapshot[T]) Snapshot[T] {
	t.Helper()
	select {
	case snap, ok := <-ch:
		require.True(t, ok, "watch channel closed")
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot delivered")
	}
	return Snapshot[T]{}
}

func TestWatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s, _ := newTestStore()
	c := Income(s)

	ch := c.Watch(ctx, "owner-1")
	first := receive(t, ch)
	require.NoError(t, first.Err)
	assert.Empty(t, first.Records)

	require.NoError(t, c.Put(ctx, "owner-1", model.IncomeRecord{ID: "i1", OwnerID: "owner-1", Name: "Salary", Amount: dec("50000"), Date: "2024-01-01"}))
	second := receive(t, ch)
	require.NoError(t, second.Err)
	require.Len(t, second.Records, 1)
	assert.Equal(t, "Salary", second.Records[0].Name)

	// Another owner's writes do not wake this watcher.
	require.NoError(t, c.Put(ctx, "owner-2", model.IncomeRecord{ID: "x", OwnerID: "owner-2", Name: "Other", Amount: dec("1"), Date: "2024-01-01"}))
	select {
	case snap := <-ch:
		t.Fatalf("unexpected snapshot %+v", snap)
	case <-time.After(50 * time.Millisecond):
	}

	cancel()
	select {
	case _, ok := <-ch:
		if ok {
			// A snapshot raced the cancel; the channel must still close.
			_, ok = <-ch
		}
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestWatch_ReportsLoadErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s, mem := newTestStore()
	mem.Fail(errors.New("offline"))

	snap := receive(t, Borrowers(s).Watch(ctx, "owner-1"))
	require.Error(t, snap.Err)
	assert.Nil(t, snap.Records)
}

func TestRefresh(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s, mem := newTestStore()
	ch := Installments(s).Watch(ctx, "owner-1")
	receive(t, ch)

	// A write straight to the backend is only seen after Refresh.
	require.NoError(t, mem.Commit(ctx, "owner-1", []Op{Put(KindInstallments, InstallmentCodec{}.Marshal(emi("e1", "HDFC", "2024-01-05", "100")))}))
	select {
	case snap := <-ch:
		t.Fatalf("unexpected snapshot %+v", snap)
	case <-time.After(50 * time.Millisecond):
	}

	s.Refresh("owner-1")
	snap := receive(t, ch)
	require.NoError(t, snap.Err)
	require.Len(t, snap.Records, 1)
	assert.Equal(t, "e1", snap.Records[0].ID)
}

func TestApply(t *testing.T) {
	rows := []Row{{"a", "1"}, {"b", "2"}}
	got := Apply(rows, Put(KindIncome, Row{"b", "3"}))
	assert.Equal(t, []Row{{"a", "1"}, {"b", "3"}}, got)
	assert.Equal(t, "2", rows[1][1], "input is not modified")

	got = Apply(got, Delete(KindIncome, "a"))
	assert.Equal(t, []Row{{"b", "3"}}, got)
	assert.Equal(t, got, Apply(got, Delete(KindIncome, "zzz")))
}
