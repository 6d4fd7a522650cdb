package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/emitrack/emitrack/internal/model"
)

// Codec converts records of one collection to and from rows.
type Codec[T any] interface {
	Kind() Kind
	Marshal(T) Row
	Unmarshal(Row) (T, error)
	ID(T) string
}

// Column headers, one per collection. Column 0 is always the id.
var (
	InstallmentHeader = []string{"id", "owner_id", "group_key", "date", "amount", "category", "status", "balance", "principal", "interest", "source", "created_at"}
	IncomeHeader      = []string{"id", "owner_id", "name", "amount", "date", "copied_from", "created_at"}
	BorrowerHeader    = []string{"id", "owner_id", "name", "principal", "borrowed_date", "status", "settlements", "closure_description", "closed_at", "created_at"}
	InvestmentHeader  = []string{"id", "owner_id", "name", "principal", "roi", "tenure", "maturity_amount", "created_at"}
)

// Header returns the column names of kind.
func Header(kind Kind) []string {
	switch kind {
	case KindInstallments:
		return InstallmentHeader
	case KindIncome:
		return IncomeHeader
	case KindBorrowers:
		return BorrowerHeader
	case KindInvestments:
		return InvestmentHeader
	}
	return nil
}

const (
	colInstID        = 0
	colInstOwner     = 1
	colInstGroup     = 2
	colInstDate      = 3
	colInstAmount    = 4
	colInstCategory  = 5
	colInstStatus    = 6
	colInstBalance   = 7
	colInstPrincipal = 8
	colInstInterest  = 9
	colInstSource    = 10
	colInstCreated   = 11
)

// InstallmentCodec stores model.InstallmentRecord.
type InstallmentCodec struct{}

func (InstallmentCodec) Kind() Kind { return KindInstallments }
func (InstallmentCodec) ID(r model.InstallmentRecord) string { return r.ID }

func (InstallmentCodec) Marshal(r model.InstallmentRecord) Row {
	row := make(Row, len(InstallmentHeader))
	row[colInstID] = r.ID
	row[colInstOwner] = r.OwnerID
	row[colInstGroup] = r.GroupKey
	row[colInstDate] = r.Date
	row[colInstAmount] = r.Amount.String()
	row[colInstCategory] = string(r.Category)
	row[colInstStatus] = string(r.Status)
	row[colInstBalance] = formatNull(r.Balance)
	row[colInstPrincipal] = formatNull(r.PrincipalComponent)
	row[colInstInterest] = formatNull(r.InterestComponent)
	row[colInstSource] = string(r.Source)
	row[colInstCreated] = formatTime(r.CreatedAt)
	return row
}

func (InstallmentCodec) Unmarshal(row Row) (model.InstallmentRecord, error) {
	var r model.InstallmentRecord
	if err := checkWidth(row, InstallmentHeader); err != nil {
		return r, err
	}
	var err error
	r.ID = row[colInstID]
	r.OwnerID = row[colInstOwner]
	r.GroupKey = row[colInstGroup]
	r.Date = row[colInstDate]
	if r.Amount, err = parseDecimal("amount", row[colInstAmount]); err != nil {
		return r, err
	}
	if r.Category, err = model.ParseCategory(row[colInstCategory]); err != nil {
		return r, err
	}
	r.Status = model.PaymentStatus(row[colInstStatus])
	if !r.Status.Valid() {
		return r, fmt.Errorf("unknown status %q", row[colInstStatus])
	}
	if r.Balance, err = parseNull("balance", row[colInstBalance]); err != nil {
		return r, err
	}
	if r.PrincipalComponent, err = parseNull("principal", row[colInstPrincipal]); err != nil {
		return r, err
	}
	if r.InterestComponent, err = parseNull("interest", row[colInstInterest]); err != nil {
		return r, err
	}
	r.Source = model.Source(row[colInstSource])
	if r.CreatedAt, err = parseTime("created_at", row[colInstCreated]); err != nil {
		return r, err
	}
	return r, nil
}

const (
	colIncID      = 0
	colIncOwner   = 1
	colIncName    = 2
	colIncAmount  = 3
	colIncDate    = 4
	colIncCopied  = 5
	colIncCreated = 6
)

// IncomeCodec stores model.IncomeRecord.
type IncomeCodec struct{}

func (IncomeCodec) Kind() Kind { return KindIncome }
func (IncomeCodec) ID(r model.IncomeRecord) string { return r.ID }

func (IncomeCodec) Marshal(r model.IncomeRecord) Row {
	row := make(Row, len(IncomeHeader))
	row[colIncID] = r.ID
	row[colIncOwner] = r.OwnerID
	row[colIncName] = r.Name
	row[colIncAmount] = r.Amount.String()
	row[colIncDate] = r.Date
	row[colIncCopied] = r.CopiedFrom
	row[colIncCreated] = formatTime(r.CreatedAt)
	return row
}

func (IncomeCodec) Unmarshal(row Row) (model.IncomeRecord, error) {
	var r model.IncomeRecord
	if err := checkWidth(row, IncomeHeader); err != nil {
		return r, err
	}
	var err error
	r.ID = row[colIncID]
	r.OwnerID = row[colIncOwner]
	r.Name = row[colIncName]
	if r.Amount, err = parseDecimal("amount", row[colIncAmount]); err != nil {
		return r, err
	}
	r.Date = row[colIncDate]
	r.CopiedFrom = row[colIncCopied]
	if r.CreatedAt, err = parseTime("created_at", row[colIncCreated]); err != nil {
		return r, err
	}
	return r, nil
}

const (
	colBorID          = 0
	colBorOwner       = 1
	colBorName        = 2
	colBorPrincipal   = 3
	colBorDate        = 4
	colBorStatus      = 5
	colBorSettlements = 6
	colBorClosure     = 7
	colBorClosedAt    = 8
	colBorCreated     = 9
)

// BorrowerCodec stores model.BorrowerRecord. Settlements are kept as a JSON
// array in one column.
type BorrowerCodec struct{}

func (BorrowerCodec) Kind() Kind { return KindBorrowers }
func (BorrowerCodec) ID(r model.BorrowerRecord) string { return r.ID }

func (BorrowerCodec) Marshal(r model.BorrowerRecord) Row {
	row := make(Row, len(BorrowerHeader))
	row[colBorID] = r.ID
	row[colBorOwner] = r.OwnerID
	row[colBorName] = r.Name
	row[colBorPrincipal] = r.Principal.String()
	row[colBorDate] = r.BorrowedDate
	row[colBorStatus] = string(r.Status)
	if len(r.Settlements) > 0 {
		// Settlement holds only strings and decimals, which always marshal.
		data, _ := json.Marshal(r.Settlements)
		row[colBorSettlements] = string(data)
	}
	row[colBorClosure] = r.ClosureDescription
	row[colBorClosedAt] = formatTime(r.ClosedAt)
	row[colBorCreated] = formatTime(r.CreatedAt)
	return row
}

func (BorrowerCodec) Unmarshal(row Row) (model.BorrowerRecord, error) {
	var r model.BorrowerRecord
	if err := checkWidth(row, BorrowerHeader); err != nil {
		return r, err
	}
	var err error
	r.ID = row[colBorID]
	r.OwnerID = row[colBorOwner]
	r.Name = row[colBorName]
	if r.Principal, err = parseDecimal("principal", row[colBorPrincipal]); err != nil {
		return r, err
	}
	r.BorrowedDate = row[colBorDate]
	r.Status = model.BorrowerStatus(row[colBorStatus])
	if r.Status == "" {
		r.Status = model.BorrowerActive
	}
	if s := row[colBorSettlements]; s != "" {
		if err := json.Unmarshal([]byte(s), &r.Settlements); err != nil {
			return r, fmt.Errorf("parsing settlements: %w", err)
		}
	}
	r.ClosureDescription = row[colBorClosure]
	if r.ClosedAt, err = parseTime("closed_at", row[colBorClosedAt]); err != nil {
		return r, err
	}
	if r.CreatedAt, err = parseTime("created_at", row[colBorCreated]); err != nil {
		return r, err
	}
	return r, nil
}

const (
	colInvID        = 0
	colInvOwner     = 1
	colInvName      = 2
	colInvPrincipal = 3
	colInvROI       = 4
	colInvTenure    = 5
	colInvMaturity  = 6
	colInvCreated   = 7
)

// InvestmentCodec stores model.InvestmentRecord.
type InvestmentCodec struct{}

func (InvestmentCodec) Kind() Kind { return KindInvestments }
func (InvestmentCodec) ID(r model.InvestmentRecord) string { return r.ID }

func (InvestmentCodec) Marshal(r model.InvestmentRecord) Row {
	row := make(Row, len(InvestmentHeader))
	row[colInvID] = r.ID
	row[colInvOwner] = r.OwnerID
	row[colInvName] = r.Name
	row[colInvPrincipal] = r.Principal.String()
	row[colInvROI] = r.ROI.String()
	row[colInvTenure] = r.Tenure.String()
	row[colInvMaturity] = r.MaturityAmount.String()
	row[colInvCreated] = formatTime(r.CreatedAt)
	return row
}

func (InvestmentCodec) Unmarshal(row Row) (model.InvestmentRecord, error) {
	var r model.InvestmentRecord
	if err := checkWidth(row, InvestmentHeader); err != nil {
		return r, err
	}
	var err error
	r.ID = row[colInvID]
	r.OwnerID = row[colInvOwner]
	r.Name = row[colInvName]
	if r.Principal, err = parseDecimal("principal", row[colInvPrincipal]); err != nil {
		return r, err
	}
	if r.ROI, err = parseDecimal("roi", row[colInvROI]); err != nil {
		return r, err
	}
	if r.Tenure, err = parseDecimal("tenure", row[colInvTenure]); err != nil {
		return r, err
	}
	if r.MaturityAmount, err = parseDecimal("maturity_amount", row[colInvMaturity]); err != nil {
		return r, err
	}
	if r.CreatedAt, err = parseTime("created_at", row[colInvCreated]); err != nil {
		return r, err
	}
	return r, nil
}

func checkWidth(row Row, header []string) error {
	if len(row) != len(header) {
		return fmt.Errorf("expected %d columns, got %d", len(header), len(row))
	}
	return nil
}

func parseDecimal(field, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing %s %q: %w", field, s, err)
	}
	return d, nil
}

func parseNull(field, s string) (decimal.NullDecimal, error) {
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := parseDecimal(field, s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}

func formatNull(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTime(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing %s %q: %w", field, s, err)
	}
	return t, nil
}
