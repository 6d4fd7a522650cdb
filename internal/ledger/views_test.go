package ledger

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emitrack/emitrack/internal/model"
)

func sampleSnapshot() Snapshot {
	recs := append(hdfc(),
		withBalance(inst("HDFC", "2024-03-05", "12000"), "70000"),
		withCategory(inst("Wedding", "2024-02-20", "3000"), model.CategoryPlanned),
	)
	return Snapshot{
		OwnerID:      "owner-1",
		Installments: recs,
		Income: []model.IncomeRecord{
			{Name: "Salary", Amount: dec("60000"), Date: "2024-02-01"},
		},
		Borrowers: []model.BorrowerRecord{
			borrower("b1", "Ravi", "5000", "2024-01-01", "2000", "1000"),
		},
		Investments: []model.InvestmentRecord{
			Project(model.InvestmentRecord{Name: "FD", Principal: dec("10000"), ROI: dec("10"), Tenure: dec("2")}),
		},
	}
}

func TestCompute(t *testing.T) {
	now := date(2024, 2, 15)
	v := Compute(sampleSnapshot(), NewPeriod(2024, time.February), now)

	assert.Equal(t, "owner-1", v.OwnerID)
	assert.True(t, v.CashFlow.Income.Equal(dec("60000")))
	assert.True(t, v.CashFlow.Expenses.Equal(dec("15000")))
	assert.True(t, v.CashFlow.Available.Equal(dec("45000")))

	assert.True(t, v.HasBalanceData)
	assert.True(t, v.LifetimeTotal.Equal(dec("80000")), "got %s", v.LifetimeTotal)
	assert.True(t, v.PaidTotal.Equal(dec("24000")), "got %s", v.PaidTotal)
	assert.True(t, v.UnpaidTotal.Equal(dec("12000")), "got %s", v.UnpaidTotal)
	assert.True(t, v.ProgressPercentage.Equal(dec("30")), "got %s", v.ProgressPercentage)

	require.Len(t, v.PeriodInstallments, 2)
	assert.Equal(t, "2024-02-05", v.PeriodInstallments[0].Date)
	assert.Equal(t, "2024-02-20", v.PeriodInstallments[1].Date)
	assert.Len(t, v.PeriodIncome, 1)

	assert.True(t, v.Lending.Outstanding.Equal(dec("2000")))
	assert.True(t, v.Investments.Maturity.Equal(dec("12100")))
	require.Len(t, v.Loans.Loans, 1)
}

func TestCompute_Idempotent(t *testing.T) {
	s := sampleSnapshot()
	p := NewPeriod(2024, time.March)
	now := date(2024, 3, 10)
	assert.Equal(t, Compute(s, p, now), Compute(s, p, now))
}

func TestCompute_IndependentOfCollectionOrder(t *testing.T) {
	s := sampleSnapshot()
	p := NewPeriod(2024, time.February)
	now := date(2024, 2, 15)
	want := Compute(s, p, now)

	reversed := s
	reversed.Installments = slices.Clone(s.Installments)
	slices.Reverse(reversed.Installments)
	got := Compute(reversed, p, now)

	assert.True(t, want.LifetimeTotal.Equal(got.LifetimeTotal))
	assert.True(t, want.PaidTotal.Equal(got.PaidTotal))
	assert.True(t, want.CashFlow.Available.Equal(got.CashFlow.Available))
	assert.Equal(t, want.PeriodInstallments, got.PeriodInstallments)
}

func TestCompute_EmptySnapshot(t *testing.T) {
	v := Compute(Snapshot{OwnerID: "o"}, NewPeriod(2024, time.January), date(2024, 1, 1))
	assert.True(t, v.LifetimeTotal.IsZero())
	assert.True(t, v.ProgressPercentage.IsZero())
	assert.True(t, v.CashFlow.Available.IsZero())
	assert.Empty(t, v.PeriodInstallments)
	assert.False(t, v.HasBalanceData)
}
