package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/emitrack/emitrack/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Sum adds the amounts of recs.
func Sum(recs []model.InstallmentRecord) decimal.Decimal {
	total := decimal.Zero
	for _, r := range recs {
		total = total.Add(r.Amount)
	}
	return total
}

// TotalForPeriod sums the amounts of records dated in p. With categories given,
// only records of those categories count.
func TotalForPeriod(recs []model.InstallmentRecord, p Period, categories ...model.Category) decimal.Decimal {
	total := decimal.Zero
	for _, r := range FilterPeriod(recs, InstallmentDate, p) {
		if matchesCategory(r, categories) {
			total = total.Add(r.Amount)
		}
	}
	return total
}

func matchesCategory(r model.InstallmentRecord, categories []model.Category) bool {
	if len(categories) == 0 {
		return true
	}
	for _, c := range categories {
		if r.Category == c {
			return true
		}
	}
	return false
}

// PaidTotal sums the records that count as paid as of asOf.
func PaidTotal(recs []model.InstallmentRecord, asOf time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, r := range recs {
		if IsPaid(r, asOf) {
			total = total.Add(r.Amount)
		}
	}
	return total
}

// UnpaidTotal sums the records PaidTotal leaves out.
func UnpaidTotal(recs []model.InstallmentRecord, asOf time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, r := range recs {
		if !IsPaid(r, asOf) {
			total = total.Add(r.Amount)
		}
	}
	return total
}

// PaidCount counts the records that count as paid as of asOf.
func PaidCount(recs []model.InstallmentRecord, asOf time.Time) int {
	n := 0
	for _, r := range recs {
		if IsPaid(r, asOf) {
			n++
		}
	}
	return n
}

// HasBalanceData reports whether any debt record carries a balance.
func HasBalanceData(recs []model.InstallmentRecord) bool {
	for _, r := range recs {
		if r.Category == model.CategoryDebt && r.Balance.Valid {
			return true
		}
	}
	return false
}

// LifetimeTotal is the outstanding debt across all groupings: the sum of resolved
// balances when any debt record has a balance, the sum of debt amounts otherwise.
func LifetimeTotal(recs []model.InstallmentRecord, now time.Time) decimal.Decimal {
	debt := OfCategory(recs, model.CategoryDebt)
	if !HasBalanceData(debt) {
		return Sum(debt)
	}
	total := decimal.Zero
	for _, g := range GroupByKey(debt) {
		total = total.Add(ResolveBalance(g.Records, now))
	}
	return total
}

// ProgressPercentage returns paid / lifetime × 100. It is zero when lifetime is
// not positive, so it never divides by zero and never goes negative.
func ProgressPercentage(paid, lifetime decimal.Decimal) decimal.Decimal {
	if !lifetime.IsPositive() || paid.IsNegative() {
		return decimal.Zero
	}
	return paid.Div(lifetime).Mul(hundred)
}

// CategoryTotal is the amount of one category in a period.
type CategoryTotal struct {
	Category model.Category
	Amount   decimal.Decimal
}

// CashFlow is the income and outgoings of one period.
type CashFlow struct {
	Period     Period
	Income     decimal.Decimal
	Expenses   decimal.Decimal // every category
	Available  decimal.Decimal // Income − Expenses, may be negative
	ByCategory []CategoryTotal
}

// MonthlyCashFlow computes the cash-flow of p from installments and income.
func MonthlyCashFlow(installments []model.InstallmentRecord, incomes []model.IncomeRecord, p Period) CashFlow {
	income := decimal.Zero
	for _, inc := range FilterPeriod(incomes, IncomeDate, p) {
		income = income.Add(inc.Amount)
	}

	byCat := make([]CategoryTotal, len(model.Categories))
	for i, c := range model.Categories {
		byCat[i] = CategoryTotal{Category: c, Amount: TotalForPeriod(installments, p, c)}
	}
	expenses := TotalForPeriod(installments, p)

	return CashFlow{
		Period:     p,
		Income:     income,
		Expenses:   expenses,
		Available:  income.Sub(expenses),
		ByCategory: byCat,
	}
}
