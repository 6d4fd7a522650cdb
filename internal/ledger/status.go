package ledger

import (
	"time"

	"github.com/emitrack/emitrack/internal/model"
)

// IsPaid reports whether an installment counts as paid as of asOf.
//
// An explicit status wins. An unset status means "paid if due": most imported
// history has no status and lies in the past. An unset record with an unparsable
// date is never due.
func IsPaid(r model.InstallmentRecord, asOf time.Time) bool {
	switch r.Status {
	case model.StatusPaid:
		return true
	case model.StatusUnpaid:
		return false
	}
	t, err := model.ParseDate(r.Date)
	if err != nil {
		return false
	}
	return !t.After(asOf)
}
