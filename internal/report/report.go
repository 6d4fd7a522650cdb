// Package report renders ledger views as markdown.
package report

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/charmbracelet/glamour"
	"github.com/shopspring/decimal"

	"github.com/emitrack/emitrack/internal/ledger"
	"github.com/emitrack/emitrack/internal/model"
)

//go:embed templates/*.md
var templates embed.FS

// Formatter renders amounts in one currency.
type Formatter struct {
	Currency string
}

// NewFormatter returns a Formatter for an ISO 4217 code.
func NewFormatter(currency string) Formatter {
	return Formatter{Currency: strings.ToUpper(currency)}
}

// Money formats d with the currency's symbol, grouping and minor units.
// Unknown currencies fall back to the plain amount followed by the code.
func (f Formatter) Money(d decimal.Decimal) string {
	cur := money.GetCurrency(f.Currency)
	if cur == nil {
		return d.StringFixed(2) + " " + f.Currency
	}
	minor := d.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, cur.Code).Display()
}

// Percent formats a percentage with one decimal place.
func Percent(d decimal.Decimal) string {
	return d.StringFixed(1) + "%"
}

func (f Formatter) funcs(asOf time.Time) template.FuncMap {
	return template.FuncMap{
		"money": f.Money,
		"pct":   Percent,
		"rate": func(d decimal.Decimal) string {
			return Percent(d.Mul(decimal.NewFromInt(100)))
		},
		"status": func(r model.InstallmentRecord) string {
			paid := ledger.IsPaid(r, asOf)
			switch {
			case r.Status == model.StatusUnset && paid:
				return "paid (due)"
			case paid:
				return "paid"
			default:
				return "unpaid"
			}
		},
		"recovered":   ledger.Recovered,
		"outstanding": ledger.Outstanding,
		"stamp": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format(model.DateFormat)
		},
	}
}

// render executes a template from templates/ with data.
func (f Formatter) render(name string, asOf time.Time, data any) (string, error) {
	content, err := fs.ReadFile(templates, "templates/"+name)
	if err != nil {
		return "", fmt.Errorf("reading template %q: %w", name, err)
	}
	tmpl, err := template.New(name).Funcs(f.funcs(asOf)).Parse(string(content))
	if err != nil {
		return "", fmt.Errorf("parsing template %q: %w", name, err)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("executing template %q: %w", name, err)
	}
	return b.String(), nil
}

// Summary renders the monthly dashboard: cash flow, debt progress, the
// period's installments, lending and investment totals.
func (f Formatter) Summary(v ledger.Views) (string, error) {
	return f.render("summary.md", v.AsOf, v)
}

// Loans renders the per-lender overview.
func (f Formatter) Loans(v ledger.Views) (string, error) {
	return f.render("loans.md", v.AsOf, v.Loans)
}

// Lending renders borrowers in display order with their settlements.
func (f Formatter) Lending(v ledger.Views) (string, error) {
	return f.render("lending.md", v.AsOf, v)
}

// Investments renders investment records with their projected maturity.
func (f Formatter) Investments(invs []model.InvestmentRecord) (string, error) {
	data := struct {
		Records []model.InvestmentRecord
		Totals  ledger.InvestmentTotals
	}{invs, ledger.TotalInvestments(invs)}
	return f.render("investments.md", time.Time{}, data)
}

// Installments renders a list of installments with their paid state at asOf.
func (f Formatter) Installments(recs []model.InstallmentRecord, asOf time.Time) (string, error) {
	data := struct {
		Records []model.InstallmentRecord
		Total   decimal.Decimal
	}{recs, ledger.Sum(recs)}
	return f.render("installments.md", asOf, data)
}

// Income renders the income entries of one month.
func (f Formatter) Income(recs []model.IncomeRecord, p ledger.Period) (string, error) {
	total := decimal.Zero
	for _, r := range recs {
		total = total.Add(r.Amount)
	}
	data := struct {
		Period  ledger.Period
		Records []model.IncomeRecord
		Total   decimal.Decimal
	}{p, recs, total}
	return f.render("income.md", time.Time{}, data)
}

// Render formats markdown for a terminal. width <= 0 disables wrapping.
func Render(markdown string, width int) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("creating renderer: %w", err)
	}
	out, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return out, nil
}
