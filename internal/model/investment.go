package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MaxTenureYears bounds Tenure so maturity stays cheap to compute.
const MaxTenureYears = 100

// InvestmentRecord is a lump-sum investment compounding annually.
type InvestmentRecord struct {
	ID             string
	OwnerID        string
	Name           string
	Principal      decimal.Decimal
	ROI            decimal.Decimal // annual percentage
	Tenure         decimal.Decimal // years
	MaturityAmount decimal.Decimal // derived when written
	CreatedAt      time.Time
}

// Validate checks the invariants of an investment record.
func (r InvestmentRecord) Validate() error {
	if err := validateStruct(namedFields{OwnerID: r.OwnerID, Name: r.Name}); err != nil {
		return err
	}
	if err := requirePositive("principal", r.Principal); err != nil {
		return err
	}
	if r.ROI.IsNegative() {
		return &InvalidInputError{Field: "roi", Reason: "must not be negative"}
	}
	if r.Tenure.IsNegative() {
		return &InvalidInputError{Field: "tenure", Reason: "must not be negative"}
	}
	if r.Tenure.GreaterThan(decimal.NewFromInt(MaxTenureYears)) {
		return &InvalidInputError{Field: "tenure", Reason: fmt.Sprintf("must be at most %d years", MaxTenureYears)}
	}
	return nil
}
