package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/emitrack/emitrack/internal/model"
)

// ScheduleRequest describes a run of equal monthly installments.
type ScheduleRequest struct {
	OwnerID       string
	GroupKey      string
	Start         time.Time
	End           time.Time
	MonthlyAmount decimal.Decimal
	Category      model.Category
}

// AddMonths returns anchor moved n calendar months forward, keeping anchor's
// day where the target month has it and clamping to the month's last day
// otherwise. The time of day and location are kept.
func AddMonths(anchor time.Time, n int) time.Time {
	y, m, d := anchor.Date()
	first := time.Date(y, m+time.Month(n), 1, anchor.Hour(), anchor.Minute(), anchor.Second(), anchor.Nanosecond(), anchor.Location())
	if last := daysIn(first); d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

func daysIn(monthStart time.Time) int {
	return monthStart.AddDate(0, 1, -1).Day()
}

// GenerateSchedule expands req into one record per calendar month from Start to
// End inclusive. Records carry no id; the caller assigns ids when writing.
func GenerateSchedule(req ScheduleRequest) ([]model.InstallmentRecord, error) {
	if req.GroupKey == "" {
		return nil, &model.InvalidInputError{Field: "group_key", Reason: "must not be empty"}
	}
	if !req.MonthlyAmount.IsPositive() {
		return nil, &model.InvalidInputError{Field: "amount", Reason: "monthly amount must be greater than zero"}
	}
	if req.Start.After(req.End) {
		return nil, model.InvalidRange(model.FormatDate(req.Start), model.FormatDate(req.End))
	}
	category := req.Category
	if category == "" {
		category = model.CategoryDebt
	}
	if !category.Valid() {
		return nil, &model.InvalidInputError{Field: "category", Reason: "unknown category " + string(category)}
	}

	var out []model.InstallmentRecord
	for i, cur := 0, req.Start; !cur.After(req.End); i, cur = i+1, AddMonths(req.Start, i+1) {
		out = append(out, model.InstallmentRecord{
			OwnerID:  req.OwnerID,
			GroupKey: req.GroupKey,
			Date:     model.FormatDate(cur),
			Amount:   req.MonthlyAmount,
			Category: category,
			Source:   model.SourceSchedule,
		})
	}
	return out, nil
}
