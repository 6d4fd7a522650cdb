package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/emitrack/emitrack/internal/model"
)

type datedRecord struct {
	rec model.InstallmentRecord
	at  time.Time
}

// sortByDate drops records with unparsable dates and stable-sorts the rest
// ascending. Records sharing a date keep their source order.
func sortByDate(recs []model.InstallmentRecord) []datedRecord {
	out := make([]datedRecord, 0, len(recs))
	for _, r := range recs {
		t, err := model.ParseDate(r.Date)
		if err != nil {
			continue
		}
		out = append(out, datedRecord{rec: r, at: t})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].at.Before(out[j].at) })
	return out
}

// ResolveBalance returns a loan's outstanding principal as of now, from the debt
// records of one grouping. The first matching rule wins:
//
//  1. a record dated in now's calendar month;
//  2. the latest record dated on or before now;
//  3. the earliest record (the loan has not started yet);
//  4. zero when there are no records.
//
// A chosen record without a balance contributes zero.
func ResolveBalance(recs []model.InstallmentRecord, now time.Time) decimal.Decimal {
	r, ok := balanceRecord(recs, now)
	if !ok {
		return decimal.Zero
	}
	return balanceOf(r)
}

func balanceRecord(recs []model.InstallmentRecord, now time.Time) (model.InstallmentRecord, bool) {
	sorted := sortByDate(OfCategory(recs, model.CategoryDebt))
	if len(sorted) == 0 {
		return model.InstallmentRecord{}, false
	}

	current := PeriodOf(now)
	for _, d := range sorted {
		if current.Contains(d.at) {
			return d.rec, true
		}
	}

	for i := len(sorted) - 1; i >= 0; i-- {
		if !sorted[i].at.After(now) {
			return sorted[i].rec, true
		}
	}

	return sorted[0].rec, true
}

func balanceOf(r model.InstallmentRecord) decimal.Decimal {
	if !r.Balance.Valid {
		return decimal.Zero
	}
	return r.Balance.Decimal
}

// Group is the records of one grouping key.
type Group struct {
	Key     string
	Records []model.InstallmentRecord
}

// GroupByKey partitions records by GroupKey. Groups are ordered by key so the
// result does not depend on snapshot order; records keep their input order.
func GroupByKey(recs []model.InstallmentRecord) []Group {
	idx := make(map[string]int)
	var groups []Group
	for _, r := range recs {
		i, ok := idx[r.GroupKey]
		if !ok {
			i = len(groups)
			idx[r.GroupKey] = i
			groups = append(groups, Group{Key: r.GroupKey})
		}
		groups[i].Records = append(groups[i].Records, r)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })
	return groups
}

// OfCategory keeps the records of exactly category c.
func OfCategory(recs []model.InstallmentRecord, c model.Category) []model.InstallmentRecord {
	var out []model.InstallmentRecord
	for _, r := range recs {
		if r.Category == c {
			out = append(out, r)
		}
	}
	return out
}
