package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/emitrack/emitrack/internal/model"
)

// ColumnMap names the export columns holding each field. Empty optional
// names mean the column is absent.
type ColumnMap struct {
	Date      string
	Amount    string
	Principal string
	Interest  string
	Balance   string
}

// DefaultColumns matches the amortization schedules most banks export.
var DefaultColumns = ColumnMap{
	Date:      "Month & Year",
	Amount:    "Total Monthly Payment",
	Principal: "Principal",
	Interest:  "Interest",
	Balance:   "Balance",
}

// Merge returns m with empty names taken from d.
func (m ColumnMap) Merge(d ColumnMap) ColumnMap {
	pick := func(a, b string) string {
		if a != "" {
			return a
		}
		return b
	}
	return ColumnMap{
		Date:      pick(m.Date, d.Date),
		Amount:    pick(m.Amount, d.Amount),
		Principal: pick(m.Principal, d.Principal),
		Interest:  pick(m.Interest, d.Interest),
		Balance:   pick(m.Balance, d.Balance),
	}
}

// ScheduleParser reads a repayment schedule CSV with a header row.
type ScheduleParser struct {
	cols ColumnMap
}

// NewScheduleParser returns a parser for cols, with unset names defaulted.
func NewScheduleParser(cols ColumnMap) *ScheduleParser {
	return &ScheduleParser{cols: cols.Merge(DefaultColumns)}
}

// Format returns the parser name.
func (p *ScheduleParser) Format() string { return "schedule" }

// Excel stores dates as days since 1899-12-30; 25569 is 1970-01-01. Smaller
// numbers are not treated as serial dates.
const (
	excelEpochOffset = 25569
	excelMinSerial   = 20000
)

// Extra layouts seen in "Month & Year" columns.
var monthLayouts = []string{"Jan-2006", "Jan 2006", "January 2006", "Jan-06", "02-Jan-2006", "2-Jan-2006"}

type columnIndex struct {
	date, amount, principal, interest, balance int
}

// Parse reads the CSV and returns one Row per data line. Amounts that do not
// parse become zero, so Installments drops them.
func (p *ScheduleParser) Parse(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading schedule CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	idx, err := p.locate(records[0])
	if err != nil {
		return nil, err
	}

	var rows []Row
	for i, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		row, err := parseScheduleRow(rec, idx)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		row.Line = i + 2
		rows = append(rows, row)
	}
	return rows, nil
}

func (p *ScheduleParser) locate(header []string) (columnIndex, error) {
	find := func(name string) int {
		if name == "" {
			return -1
		}
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")), name) {
				return i
			}
		}
		return -1
	}
	idx := columnIndex{
		date:      find(p.cols.Date),
		amount:    find(p.cols.Amount),
		principal: find(p.cols.Principal),
		interest:  find(p.cols.Interest),
		balance:   find(p.cols.Balance),
	}
	if idx.date < 0 || idx.amount < 0 {
		return idx, fmt.Errorf("could not find columns %q and %q in header %v", p.cols.Date, p.cols.Amount, header)
	}
	return idx, nil
}

func parseScheduleRow(rec []string, idx columnIndex) (Row, error) {
	date, err := parseImportDate(cell(rec, idx.date))
	if err != nil {
		return Row{}, err
	}
	var row Row
	row.Date = date
	row.Amount = parseAmount(cell(rec, idx.amount))
	if row.Principal, err = optionalAmount(rec, idx.principal, "principal"); err != nil {
		return Row{}, err
	}
	if row.Interest, err = optionalAmount(rec, idx.interest, "interest"); err != nil {
		return Row{}, err
	}
	if row.Balance, err = optionalAmount(rec, idx.balance, "balance"); err != nil {
		return Row{}, err
	}
	return row, nil
}

func cell(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// parseImportDate accepts stored-date layouts, month names and Excel serials.
func parseImportDate(s string) (string, error) {
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > excelMinSerial {
		days := int(serial) - excelEpochOffset
		return model.FormatDate(time.Unix(0, 0).UTC().AddDate(0, 0, days)), nil
	}
	if t, err := model.ParseDate(s); err == nil {
		return model.FormatDate(t), nil
	}
	for _, layout := range monthLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return model.FormatDate(t), nil
		}
	}
	return "", fmt.Errorf("parsing date %q", s)
}

var amountCleaner = strings.NewReplacer(",", "", "₹", "", "Rs.", "", "Rs", "", "INR", "", " ", "")

// parseAmount reads a money cell, ignoring separators and currency marks.
// Unreadable text is zero.
func parseAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(amountCleaner.Replace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func optionalAmount(rec []string, i int, field string) (decimal.NullDecimal, error) {
	s := cell(rec, i)
	if s == "" || s == "-" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(amountCleaner.Replace(s))
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("parsing %s %q: %w", field, s, err)
	}
	return decimal.NewNullDecimal(d), nil
}
