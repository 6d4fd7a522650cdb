package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/emitrack/emitrack/internal/model"
)

// LoanSummary is the progress of one debt grouping.
type LoanSummary struct {
	GroupKey          string
	PaidSoFar         decimal.Decimal
	Outstanding       decimal.Decimal // resolved principal balance
	PayableRemaining  decimal.Decimal // unpaid installments, interest included
	TotalInstallments int
	PaidCount         int
}

// Active reports whether principal is still owed.
func (s LoanSummary) Active() bool {
	return s.Outstanding.IsPositive()
}

// RecoveryRate is the share of installments paid, between 0 and 1.
func (s LoanSummary) RecoveryRate() decimal.Decimal {
	if s.TotalInstallments == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(s.PaidCount)).Div(decimal.NewFromInt(int64(s.TotalInstallments)))
}

// SummarizeLoans summarizes every debt grouping in recs, ordered by group key.
func SummarizeLoans(recs []model.InstallmentRecord, now time.Time) []LoanSummary {
	groups := GroupByKey(OfCategory(recs, model.CategoryDebt))
	out := make([]LoanSummary, 0, len(groups))
	for _, g := range groups {
		out = append(out, LoanSummary{
			GroupKey:          g.Key,
			PaidSoFar:         PaidTotal(g.Records, now),
			Outstanding:       ResolveBalance(g.Records, now),
			PayableRemaining:  UnpaidTotal(g.Records, now),
			TotalInstallments: len(g.Records),
			PaidCount:         PaidCount(g.Records, now),
		})
	}
	return out
}

// LoansOverview totals the loan summaries.
type LoansOverview struct {
	Loans                []LoanSummary
	PrincipalOutstanding decimal.Decimal
	PayableRemaining     decimal.Decimal
	// AverageRecoveryRate is the mean per-loan recovery rate as a percentage.
	AverageRecoveryRate decimal.Decimal
}

// OverviewLoans builds the overview of every debt grouping.
func OverviewLoans(recs []model.InstallmentRecord, now time.Time) LoansOverview {
	loans := SummarizeLoans(recs, now)
	ov := LoansOverview{
		Loans:                loans,
		PrincipalOutstanding: decimal.Zero,
		PayableRemaining:     decimal.Zero,
		AverageRecoveryRate:  decimal.Zero,
	}
	if len(loans) == 0 {
		return ov
	}
	rates := decimal.Zero
	for _, l := range loans {
		ov.PrincipalOutstanding = ov.PrincipalOutstanding.Add(l.Outstanding)
		ov.PayableRemaining = ov.PayableRemaining.Add(l.PayableRemaining)
		rates = rates.Add(l.RecoveryRate())
	}
	ov.AverageRecoveryRate = rates.Div(decimal.NewFromInt(int64(len(loans)))).Mul(hundred)
	return ov
}
