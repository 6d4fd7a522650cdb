package ledger

import (
	"slices"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/emitrack/emitrack/internal/model"
)

// Recovered is the sum of a borrower's settlements.
func Recovered(b model.BorrowerRecord) decimal.Decimal {
	total := decimal.Zero
	for _, s := range b.Settlements {
		total = total.Add(s.Amount)
	}
	return total
}

// Outstanding is principal minus recovered. Over-recovery yields a negative value,
// which is reported as is.
func Outstanding(b model.BorrowerRecord) decimal.Decimal {
	return b.Principal.Sub(Recovered(b))
}

// AddSettlement returns b with s appended. The borrower must exist and be active,
// and the settlement amount must be positive with a readable date.
func AddSettlement(b *model.BorrowerRecord, s model.Settlement) (model.BorrowerRecord, error) {
	if b == nil {
		return model.BorrowerRecord{}, &model.InvalidInputError{Field: "borrower", Reason: "does not exist"}
	}
	if !s.Amount.IsPositive() {
		return model.BorrowerRecord{}, &model.InvalidInputError{Field: "amount", Reason: "settlement must be greater than zero"}
	}
	if _, err := model.ParseDate(s.Date); err != nil {
		return model.BorrowerRecord{}, &model.InvalidInputError{Field: "date", Reason: err.Error()}
	}
	if b.Closed() {
		return model.BorrowerRecord{}, &model.InvalidInputError{Field: "borrower", Reason: b.Name + " is closed"}
	}
	out := *b
	out.Settlements = append(slices.Clone(b.Settlements), s)
	return out, nil
}

// Close returns b marked closed with the given description.
func Close(b *model.BorrowerRecord, description string, at time.Time) (model.BorrowerRecord, error) {
	if b == nil {
		return model.BorrowerRecord{}, &model.InvalidInputError{Field: "borrower", Reason: "does not exist"}
	}
	if b.Closed() {
		return model.BorrowerRecord{}, &model.InvalidInputError{Field: "borrower", Reason: b.Name + " is already closed"}
	}
	out := *b
	out.Status = model.BorrowerClosed
	out.ClosureDescription = description
	out.ClosedAt = at
	return out, nil
}

// LendingTotals aggregates every borrower of an owner.
type LendingTotals struct {
	TotalLent      decimal.Decimal
	TotalRecovered decimal.Decimal
	Outstanding    decimal.Decimal
	Active         int
	Closed         int
}

// Totals computes the lending aggregate.
func Totals(borrowers []model.BorrowerRecord) LendingTotals {
	t := LendingTotals{TotalLent: decimal.Zero, TotalRecovered: decimal.Zero}
	for _, b := range borrowers {
		t.TotalLent = t.TotalLent.Add(b.Principal)
		t.TotalRecovered = t.TotalRecovered.Add(Recovered(b))
		if b.Closed() {
			t.Closed++
		} else {
			t.Active++
		}
	}
	t.Outstanding = t.TotalLent.Sub(t.TotalRecovered)
	return t
}

// SortBorrowers returns a copy ordered active first, then by borrowed date,
// newest first. Unreadable dates sort last within their group.
func SortBorrowers(borrowers []model.BorrowerRecord) []model.BorrowerRecord {
	type datedBorrower struct {
		rec model.BorrowerRecord
		at  time.Time
	}
	dated := make([]datedBorrower, len(borrowers))
	for i, b := range borrowers {
		dated[i].rec = b
		if t, err := model.ParseDate(b.BorrowedDate); err == nil {
			dated[i].at = t
		}
	}
	sort.SliceStable(dated, func(i, j int) bool {
		ci, cj := dated[i].rec.Closed(), dated[j].rec.Closed()
		if ci != cj {
			return !ci
		}
		return dated[i].at.After(dated[j].at)
	})
	out := make([]model.BorrowerRecord, len(dated))
	for i, d := range dated {
		out[i] = d.rec
	}
	return out
}
