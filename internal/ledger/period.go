// Package ledger derives summaries from snapshots of an owner's records.
//
// Every function here is pure: the result depends only on the records passed in,
// the selected period and the reference instant. Nothing is cached between calls,
// so recomputing a view from the same snapshot always yields the same value.
package ledger

import (
	"fmt"
	"time"

	"github.com/emitrack/emitrack/internal/model"
)

// Period is a calendar month selected for monthly aggregation.
type Period struct {
	Year  int
	Month time.Month
}

// NewPeriod returns the period for year and month.
func NewPeriod(year int, month time.Month) Period {
	return Period{Year: year, Month: month}
}

// PeriodOf returns the calendar month t falls in, in t's own location.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// ParsePeriod parses "2006-01".
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Period{}, &model.InvalidInputError{Field: "period", Reason: fmt.Sprintf("%q is not YYYY-MM", s)}
	}
	return PeriodOf(t), nil
}

// Contains reports whether t falls in the period.
func (p Period) Contains(t time.Time) bool {
	return t.Year() == p.Year && t.Month() == p.Month
}

// Previous returns the month before p.
func (p Period) Previous() Period {
	return PeriodOf(model.MonthStart(p.Year, p.Month-1))
}

// Start returns the first day of the period at midnight UTC.
func (p Period) Start() time.Time {
	return model.MonthStart(p.Year, p.Month)
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// InPeriod reports whether a stored date falls in p. Unparsable dates match no
// period.
func InPeriod(date string, p Period) bool {
	t, err := model.ParseDate(date)
	if err != nil {
		return false
	}
	return p.Contains(t)
}

// FilterPeriod keeps the records whose date falls in p, preserving order.
func FilterPeriod[T any](recs []T, dateOf func(T) string, p Period) []T {
	var out []T
	for _, r := range recs {
		if InPeriod(dateOf(r), p) {
			out = append(out, r)
		}
	}
	return out
}

// InstallmentDate returns the stored date of an installment.
func InstallmentDate(r model.InstallmentRecord) string { return r.Date }

// IncomeDate returns the stored date of an income record.
func IncomeDate(r model.IncomeRecord) string { return r.Date }
