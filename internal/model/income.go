package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// IncomeRecord is a named monthly income entry.
type IncomeRecord struct {
	ID         string
	OwnerID    string
	Name       string
	Amount     decimal.Decimal
	Date       string // first day of the month it belongs to
	CopiedFrom string // id of the record this one was copied from, if any
	CreatedAt  time.Time
}

// Validate checks the invariants of an income record.
func (r IncomeRecord) Validate() error {
	if err := validateStruct(namedFields{OwnerID: r.OwnerID, Name: r.Name}); err != nil {
		return err
	}
	if _, err := ParseDate(r.Date); err != nil {
		return &InvalidInputError{Field: "date", Reason: err.Error()}
	}
	return requirePositive("amount", r.Amount)
}
