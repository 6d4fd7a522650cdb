package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/emitrack/emitrack/internal/model"
)

// Snapshot is the full current record set of one owner.
type Snapshot struct {
	OwnerID      string
	Installments []model.InstallmentRecord
	Income       []model.IncomeRecord
	Borrowers    []model.BorrowerRecord
	Investments  []model.InvestmentRecord
}

// Views is every derived summary for one owner, period and instant.
type Views struct {
	OwnerID  string
	Period   Period
	AsOf     time.Time
	CashFlow CashFlow

	// Lifetime debt figures.
	LifetimeTotal      decimal.Decimal
	PaidTotal          decimal.Decimal
	UnpaidTotal        decimal.Decimal
	ProgressPercentage decimal.Decimal
	HasBalanceData     bool

	// Installments of the selected period, by date.
	PeriodInstallments []model.InstallmentRecord
	PeriodIncome       []model.IncomeRecord

	Loans       LoansOverview
	Lending     LendingTotals
	Borrowers   []model.BorrowerRecord // display order
	Investments InvestmentTotals
}

// Compute derives all views from s. It does not modify s.
func Compute(s Snapshot, p Period, now time.Time) Views {
	debt := OfCategory(s.Installments, model.CategoryDebt)
	paid := PaidTotal(debt, now)
	lifetime := LifetimeTotal(s.Installments, now)

	periodInst := make([]model.InstallmentRecord, 0)
	for _, d := range sortByDate(FilterPeriod(s.Installments, InstallmentDate, p)) {
		periodInst = append(periodInst, d.rec)
	}

	return Views{
		OwnerID:            s.OwnerID,
		Period:             p,
		AsOf:               now,
		CashFlow:           MonthlyCashFlow(s.Installments, s.Income, p),
		LifetimeTotal:      lifetime,
		PaidTotal:          paid,
		UnpaidTotal:        UnpaidTotal(debt, now),
		ProgressPercentage: ProgressPercentage(paid, lifetime),
		HasBalanceData:     HasBalanceData(s.Installments),
		PeriodInstallments: periodInst,
		PeriodIncome:       FilterPeriod(s.Income, IncomeDate, p),
		Loans:              OverviewLoans(s.Installments, now),
		Lending:            Totals(s.Borrowers),
		Borrowers:          SortBorrowers(s.Borrowers),
		Investments:        TotalInvestments(s.Investments),
	}
}
