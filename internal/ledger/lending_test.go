package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emitrack/emitrack/internal/model"
)

func borrower(id, name, principal, borrowed string, settlements ...string) model.BorrowerRecord {
	b := model.BorrowerRecord{
		ID:           id,
		OwnerID:      "owner-1",
		Name:         name,
		Principal:    dec(principal),
		BorrowedDate: borrowed,
		Status:       model.BorrowerActive,
	}
	for _, s := range settlements {
		b.Settlements = append(b.Settlements, model.Settlement{Amount: dec(s), Date: "2024-02-01"})
	}
	return b
}

func TestRecoveredAndOutstanding(t *testing.T) {
	b := borrower("b1", "Ravi", "5000", "2024-01-01", "2000", "1000")
	assert.True(t, Recovered(b).Equal(dec("3000")))
	assert.True(t, Outstanding(b).Equal(dec("2000")))
}

func TestOutstanding_OverRecoveryIsNegative(t *testing.T) {
	b := borrower("b1", "Ravi", "5000", "2024-01-01", "4000", "1500")
	assert.True(t, Outstanding(b).Equal(dec("-500")))
}

func TestAddSettlement(t *testing.T) {
	b := borrower("b1", "Ravi", "5000", "2024-01-01", "2000")
	got, err := AddSettlement(&b, model.Settlement{ID: "s2", Amount: dec("500"), Date: "2024-03-01", Note: "cash"})
	require.NoError(t, err)
	require.Len(t, got.Settlements, 2)
	assert.Equal(t, "cash", got.Settlements[1].Note)
	assert.True(t, Outstanding(got).Equal(dec("2500")))
	assert.Len(t, b.Settlements, 1, "input is not modified")
}

func TestAddSettlement_Rejected(t *testing.T) {
	active := borrower("b1", "Ravi", "5000", "2024-01-01")
	closed := active
	closed.Status = model.BorrowerClosed

	tests := []struct {
		name  string
		b     *model.BorrowerRecord
		s     model.Settlement
		field string
	}{
		{"missing borrower", nil, model.Settlement{Amount: dec("1"), Date: "2024-01-01"}, "borrower"},
		{"zero amount", &active, model.Settlement{Amount: dec("0"), Date: "2024-01-01"}, "amount"},
		{"negative amount", &active, model.Settlement{Amount: dec("-10"), Date: "2024-01-01"}, "amount"},
		{"bad date", &active, model.Settlement{Amount: dec("10"), Date: "whenever"}, "date"},
		{"closed borrower", &closed, model.Settlement{Amount: dec("10"), Date: "2024-01-01"}, "borrower"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AddSettlement(tt.b, tt.s)
			require.ErrorIs(t, err, model.ErrInvalidInput)
			var iie *model.InvalidInputError
			require.ErrorAs(t, err, &iie)
			assert.Equal(t, tt.field, iie.Field)
		})
	}
}

func TestClose(t *testing.T) {
	b := borrower("b1", "Ravi", "5000", "2024-01-01", "5000")
	at := date(2024, 5, 1)
	got, err := Close(&b, "settled in full", at)
	require.NoError(t, err)
	assert.True(t, got.Closed())
	assert.Equal(t, "settled in full", got.ClosureDescription)
	assert.Equal(t, at, got.ClosedAt)

	_, err = Close(&got, "again", at)
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	_, err = AddSettlement(&got, model.Settlement{Amount: dec("1"), Date: "2024-05-02"})
	assert.ErrorIs(t, err, model.ErrInvalidInput, "closed borrowers accept no settlements")
}

func TestTotals(t *testing.T) {
	closed := borrower("b2", "Anu", "1000", "2023-06-01", "1000")
	closed.Status = model.BorrowerClosed
	tot := Totals([]model.BorrowerRecord{
		borrower("b1", "Ravi", "5000", "2024-01-01", "2000", "1000"),
		closed,
	})
	assert.True(t, tot.TotalLent.Equal(dec("6000")))
	assert.True(t, tot.TotalRecovered.Equal(dec("4000")))
	assert.True(t, tot.Outstanding.Equal(dec("2000")))
	assert.Equal(t, 1, tot.Active)
	assert.Equal(t, 1, tot.Closed)
}

func TestSortBorrowers(t *testing.T) {
	closedNew := borrower("c1", "Closed new", "1", "2024-06-01")
	closedNew.Status = model.BorrowerClosed
	in := []model.BorrowerRecord{
		borrower("a1", "Old", "1", "2023-01-01"),
		closedNew,
		borrower("a2", "New", "1", "2024-03-01"),
		borrower("a3", "Unknown", "1", "someday"),
	}
	got := SortBorrowers(in)
	var ids []string
	for _, b := range got {
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []string{"a2", "a1", "a3", "c1"}, ids)
	assert.Equal(t, "a1", in[0].ID, "input order is kept")
}

func TestSortBorrowers_SharedIDs(t *testing.T) {
	in := []model.BorrowerRecord{
		borrower("", "Old", "1", "2023-01-01"),
		borrower("", "New", "1", "2024-03-01"),
		borrower("dup", "Mid", "1", "2023-06-01"),
		borrower("dup", "Newest", "1", "2024-05-01"),
	}
	got := SortBorrowers(in)
	var names []string
	for _, b := range got {
		names = append(names, b.Name)
	}
	assert.Equal(t, []string{"Newest", "New", "Mid", "Old"}, names)
}
