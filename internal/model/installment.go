package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category classifies an installment record.
type Category string

const (
	CategoryDebt       Category = "debt"
	CategoryPlanned    Category = "planned"
	CategoryInvestment Category = "investment"
)

// Categories lists every valid category in display order.
var Categories = []Category{CategoryDebt, CategoryPlanned, CategoryInvestment}

// Valid reports whether c is one of the three known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryDebt, CategoryPlanned, CategoryInvestment:
		return true
	}
	return false
}

// ParseCategory converts stored text to a Category. Empty text is a debt record:
// older rows and imports never carried the column.
func ParseCategory(s string) (Category, error) {
	if s == "" {
		return CategoryDebt, nil
	}
	c := Category(s)
	if !c.Valid() {
		return "", &InvalidInputError{Field: "category", Reason: "unknown category " + s}
	}
	return c, nil
}

// PaymentStatus is the explicit paid state of an installment.
type PaymentStatus string

const (
	StatusUnset  PaymentStatus = ""
	StatusPaid   PaymentStatus = "paid"
	StatusUnpaid PaymentStatus = "unpaid"
)

// Valid reports whether s is paid, unpaid or unset.
func (s PaymentStatus) Valid() bool {
	switch s {
	case StatusUnset, StatusPaid, StatusUnpaid:
		return true
	}
	return false
}

// Source records how an installment entered the ledger.
type Source string

const (
	SourceManual   Source = "manual"
	SourceSchedule Source = "manual_schedule"
	SourceImport   Source = "import"
)

// InstallmentRecord is one dated obligation or investment contribution.
type InstallmentRecord struct {
	ID                 string
	OwnerID            string
	GroupKey           string // lender or bank name
	Date               string // month marker as stored; see ParseDate
	Amount             decimal.Decimal
	Category           Category
	Status             PaymentStatus
	Balance            decimal.NullDecimal // principal outstanding after this payment
	PrincipalComponent decimal.NullDecimal
	InterestComponent  decimal.NullDecimal
	Source             Source
	CreatedAt          time.Time
}

// Validate checks the creation-time invariants of an installment.
func (r InstallmentRecord) Validate() error {
	if err := validateStruct(installmentFields{
		OwnerID:  r.OwnerID,
		GroupKey: r.GroupKey,
		Category: string(r.Category),
	}); err != nil {
		return err
	}
	if !r.Status.Valid() {
		return &InvalidInputError{Field: "status", Reason: "unknown status " + string(r.Status)}
	}
	if _, err := ParseDate(r.Date); err != nil {
		return &InvalidInputError{Field: "date", Reason: err.Error()}
	}
	return requirePositive("amount", r.Amount)
}

type installmentFields struct {
	OwnerID  string `field:"owner_id" validate:"required"`
	GroupKey string `field:"group_key" validate:"required,max=200"`
	Category string `validate:"oneof=debt planned investment"`
}
