package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// BorrowerStatus is the lifecycle state of a lending record.
type BorrowerStatus string

const (
	BorrowerActive BorrowerStatus = "active"
	BorrowerClosed BorrowerStatus = "closed"
)

// Settlement is one repayment applied against a borrower's principal.
type Settlement struct {
	ID     string          `json:"id"`
	Amount decimal.Decimal `json:"amount"`
	Date   string          `json:"date"`
	Note   string          `json:"note,omitempty"`
}

// BorrowerRecord tracks money lent to one person.
type BorrowerRecord struct {
	ID                 string
	OwnerID            string
	Name               string
	Principal          decimal.Decimal
	BorrowedDate       string
	Status             BorrowerStatus
	Settlements        []Settlement
	ClosureDescription string
	ClosedAt           time.Time
	CreatedAt          time.Time
}

// Closed reports whether the borrower no longer accepts settlements.
func (b BorrowerRecord) Closed() bool {
	return b.Status == BorrowerClosed
}

// Validate checks the invariants of a borrower record.
func (b BorrowerRecord) Validate() error {
	if err := validateStruct(namedFields{OwnerID: b.OwnerID, Name: b.Name}); err != nil {
		return err
	}
	if b.Status != BorrowerActive && b.Status != BorrowerClosed {
		return &InvalidInputError{Field: "status", Reason: "unknown borrower status " + string(b.Status)}
	}
	if _, err := ParseDate(b.BorrowedDate); err != nil {
		return &InvalidInputError{Field: "borrowed_date", Reason: err.Error()}
	}
	return requirePositive("principal", b.Principal)
}
