package report

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emitrack/emitrack/internal/ledger"
	"github.com/emitrack/emitrack/internal/model"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func balance(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(dec(s))
}

var asOf = time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC)

func snapshot() ledger.Snapshot {
	return ledger.Snapshot{
		OwnerID: "priya",
		Installments: []model.InstallmentRecord{
			{ID: "emi_1", GroupKey: "HDFC", Date: "2024-02-05", Amount: dec("12000"), Category: model.CategoryDebt, Balance: balance("24000")},
			{ID: "emi_2", GroupKey: "HDFC", Date: "2024-03-05", Amount: dec("12000"), Category: model.CategoryDebt, Balance: balance("12000")},
			{ID: "emi_3", GroupKey: "HDFC", Date: "2024-04-05", Amount: dec("12000"), Category: model.CategoryDebt, Balance: balance("0")},
			{ID: "emi_4", GroupKey: "Mutual Fund", Date: "2024-03-10", Amount: dec("5000"), Category: model.CategoryInvestment},
		},
		Income: []model.IncomeRecord{
			{ID: "inc_1", Name: "Salary", Amount: dec("50000"), Date: "2024-03-01"},
		},
		Borrowers: []model.BorrowerRecord{
			{
				ID: "lnd_1", Name: "Ravi", Principal: dec("5000"), BorrowedDate: "2024-01-10", Status: model.BorrowerActive,
				Settlements: []model.Settlement{
					{ID: "stl_1", Amount: dec("2000"), Date: "2024-02-10", Note: "cash"},
					{ID: "stl_2", Amount: dec("1000"), Date: "2024-03-10"},
				},
			},
		},
		Investments: []model.InvestmentRecord{
			{ID: "inv_1", Name: "FD", Principal: dec("10000"), ROI: dec("10"), Tenure: dec("2"), MaturityAmount: dec("12100")},
		},
	}
}

func views() ledger.Views {
	return ledger.Compute(snapshot(), ledger.NewPeriod(2024, time.March), asOf)
}

func TestFormatter_Money(t *testing.T) {
	usd := NewFormatter("usd")
	assert.Equal(t, "$12,000.00", usd.Money(dec("12000")))
	assert.Equal(t, "$0.10", usd.Money(dec("0.1")))
	assert.Equal(t, "$1.01", usd.Money(dec("1.005")), "rounded to cents")

	assert.Equal(t, "12.50 XYZ", NewFormatter("XYZ").Money(dec("12.5")))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "66.7%", Percent(dec("66.66666")))
	assert.Equal(t, "0.0%", Percent(decimal.Zero))
}

func TestSummary(t *testing.T) {
	out, err := NewFormatter("USD").Summary(views())
	require.NoError(t, err)

	assert.Contains(t, out, "# Summary for priya, 2024-03")
	assert.Contains(t, out, "| Income | $50,000.00 |")
	assert.Contains(t, out, "| debt | $12,000.00 |")
	assert.Contains(t, out, "| investment | $5,000.00 |")
	assert.Contains(t, out, "| **Available** | **$33,000.00** |")
	assert.Contains(t, out, "- Outstanding: $12,000.00\n")
	assert.Contains(t, out, "- Paid: $24,000.00")
	assert.Contains(t, out, "| 2024-03-05 | HDFC | debt | $12,000.00 | paid (due) |")
	assert.Contains(t, out, "- Outstanding: $2,000.00 (1 active, 0 closed)")
	assert.Contains(t, out, "- At maturity: $12,100.00 (gain $2,100.00)")
}

func TestSummary_EmptyPeriod(t *testing.T) {
	v := ledger.Compute(ledger.Snapshot{OwnerID: "priya"}, ledger.NewPeriod(2024, time.March), asOf)
	out, err := NewFormatter("INR").Summary(v)
	require.NoError(t, err)
	assert.Contains(t, out, "No installments this month.")
	assert.Contains(t, out, "(scheduled amounts, no balance data)")
}

func TestLoans(t *testing.T) {
	out, err := NewFormatter("USD").Loans(views())
	require.NoError(t, err)
	assert.Contains(t, out, "| HDFC | $24,000.00 | $12,000.00 | $12,000.00 | 2/3 | 66.7% | active |")
	assert.NotContains(t, out, "Mutual Fund")
	assert.Contains(t, out, "- Average recovery: 66.7%")

	out, err = NewFormatter("USD").Loans(ledger.Views{})
	require.NoError(t, err)
	assert.Contains(t, out, "No debt recorded.")
}

func TestLending(t *testing.T) {
	v := views()
	out, err := NewFormatter("USD").Lending(v)
	require.NoError(t, err)
	assert.Contains(t, out, "| Ravi | 2024-01-10 | $5,000.00 | $3,000.00 | $2,000.00 | active |")
	assert.Contains(t, out, "## Ravi (lnd_1)")
	assert.Contains(t, out, "- 2024-02-10: $2,000.00 (cash)")
	assert.Contains(t, out, "- 2024-03-10: $1,000.00\n")
}

func TestInvestmentsAndLists(t *testing.T) {
	f := NewFormatter("USD")
	s := snapshot()

	out, err := f.Investments(s.Investments)
	require.NoError(t, err)
	assert.Contains(t, out, "| inv_1 | FD | $10,000.00 | 10.0% | 2 | $12,100.00 |")
	assert.Contains(t, out, "- Gain: $2,100.00")

	out, err = f.Installments(s.Installments, asOf)
	require.NoError(t, err)
	assert.Contains(t, out, "| emi_3 | 2024-04-05 | HDFC | debt | $12,000.00 | $0.00 | unpaid |")
	assert.Contains(t, out, "Total: $41,000.00")

	out, err = f.Income(s.Income, ledger.NewPeriod(2024, time.March))
	require.NoError(t, err)
	assert.Contains(t, out, "| inc_1 | Salary | $50,000.00 |  |")

	out, err = f.Income(nil, ledger.NewPeriod(2024, time.April))
	require.NoError(t, err)
	assert.Contains(t, out, "No income recorded.")
}

func TestRender(t *testing.T) {
	out, err := Render("# Loans\n\nNo debt recorded.\n", 80)
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, "Loans"))
	assert.True(t, strings.Contains(out, "No debt recorded."))
}
