package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/emitrack/emitrack/internal/model"
)

// maturityPlaces is the precision maturity amounts are stored with.
const maturityPlaces = 2

// Maturity returns principal × (1 + roi/100)^tenure with annual compounding.
// Whole-year tenures are exact; fractional tenures are rounded to cents.
func Maturity(principal, roi, tenure decimal.Decimal) decimal.Decimal {
	rate := decimal.NewFromInt(1).Add(roi.Div(hundred))
	return principal.Mul(rate.Pow(tenure)).Round(maturityPlaces)
}

// Project returns inv with MaturityAmount recomputed from its terms.
func Project(inv model.InvestmentRecord) model.InvestmentRecord {
	inv.MaturityAmount = Maturity(inv.Principal, inv.ROI, inv.Tenure)
	return inv
}

// InvestmentTotals aggregates stored investment records.
type InvestmentTotals struct {
	Invested decimal.Decimal
	Maturity decimal.Decimal
	Gain     decimal.Decimal
	Count    int
}

// TotalInvestments sums principal and stored maturity amounts. Maturity is
// read as stored and not re-derived.
func TotalInvestments(invs []model.InvestmentRecord) InvestmentTotals {
	t := InvestmentTotals{Invested: decimal.Zero, Maturity: decimal.Zero, Count: len(invs)}
	for _, inv := range invs {
		t.Invested = t.Invested.Add(inv.Principal)
		t.Maturity = t.Maturity.Add(inv.MaturityAmount)
	}
	t.Gain = t.Maturity.Sub(t.Invested)
	return t
}
