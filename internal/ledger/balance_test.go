package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/emitrack/emitrack/internal/model"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func balance(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(dec(s))
}

func inst(group, on, amount string) model.InstallmentRecord {
	return model.InstallmentRecord{
		OwnerID:  "owner-1",
		GroupKey: group,
		Date:     on,
		Amount:   dec(amount),
		Category: model.CategoryDebt,
	}
}

func withBalance(r model.InstallmentRecord, b string) model.InstallmentRecord {
	r.Balance = balance(b)
	return r
}

func hdfc() []model.InstallmentRecord {
	return []model.InstallmentRecord{
		withBalance(inst("HDFC", "2024-01-05", "12000"), "90000"),
		withBalance(inst("HDFC", "2024-02-05", "12000"), "80000"),
	}
}

func TestResolveBalance_CurrentMonth(t *testing.T) {
	got := ResolveBalance(hdfc(), date(2024, 2, 20))
	assert.True(t, got.Equal(dec("80000")), "got %s", got)
}

func TestResolveBalance_CurrentMonthBeforeDueDay(t *testing.T) {
	got := ResolveBalance(hdfc(), date(2024, 2, 1))
	assert.True(t, got.Equal(dec("80000")), "a record in now's month wins even if it is later in the month")
}

func TestResolveBalance_LatestPast(t *testing.T) {
	got := ResolveBalance(hdfc(), date(2024, 4, 10))
	assert.True(t, got.Equal(dec("80000")), "got %s", got)
}

func TestResolveBalance_LoanNotStarted(t *testing.T) {
	got := ResolveBalance(hdfc(), date(2023, 11, 1))
	assert.True(t, got.Equal(dec("90000")), "earliest record is used when all are in the future")
}

func TestResolveBalance_NoRecords(t *testing.T) {
	assert.True(t, ResolveBalance(nil, date(2024, 1, 1)).IsZero())
}

func TestResolveBalance_UnsortedInput(t *testing.T) {
	recs := []model.InstallmentRecord{
		withBalance(inst("HDFC", "2024-03-05", "12000"), "70000"),
		withBalance(inst("HDFC", "2024-01-05", "12000"), "90000"),
		withBalance(inst("HDFC", "2024-02-05", "12000"), "80000"),
	}
	got := ResolveBalance(recs, date(2024, 2, 28))
	assert.True(t, got.Equal(dec("80000")), "got %s", got)
}

func TestResolveBalance_SkipsUnparsableDates(t *testing.T) {
	recs := append(hdfc(), withBalance(inst("HDFC", "garbage", "12000"), "1"))
	got := ResolveBalance(recs, date(2024, 6, 1))
	assert.True(t, got.Equal(dec("80000")), "got %s", got)
}

func TestResolveBalance_SameDateKeepsSourceOrder(t *testing.T) {
	recs := []model.InstallmentRecord{
		withBalance(inst("HDFC", "2024-02-05", "12000"), "81000"),
		withBalance(inst("HDFC", "2024-02-05", "12000"), "80000"),
	}
	got := ResolveBalance(recs, date(2024, 2, 10))
	assert.True(t, got.Equal(dec("81000")), "first record of the month in source order wins")
}

func TestResolveBalance_MissingBalanceIsZero(t *testing.T) {
	recs := []model.InstallmentRecord{inst("HDFC", "2024-02-05", "12000")}
	assert.True(t, ResolveBalance(recs, date(2024, 2, 10)).IsZero())
}

func TestResolveBalance_IgnoresNonDebt(t *testing.T) {
	planned := withBalance(inst("HDFC", "2024-05-05", "12000"), "1")
	planned.Category = model.CategoryPlanned
	got := ResolveBalance(append(hdfc(), planned), date(2024, 5, 10))
	assert.True(t, got.Equal(dec("80000")), "got %s", got)
}

func TestResolveBalance_Deterministic(t *testing.T) {
	recs := hdfc()
	now := date(2024, 4, 1)
	first := ResolveBalance(recs, now)
	second := ResolveBalance(recs, now)
	assert.True(t, first.Equal(second))
}

func TestResolveBalance_OffsetKeepsWrittenMonth(t *testing.T) {
	recs := []model.InstallmentRecord{
		withBalance(inst("SBI", "2024-03-01T00:00:00+05:30", "5000"), "40000"),
		withBalance(inst("SBI", "2024-02-01T00:00:00+05:30", "5000"), "45000"),
	}
	ist := time.FixedZone("IST", 5*3600+1800)
	got := ResolveBalance(recs, time.Date(2024, 3, 15, 0, 0, 0, 0, ist))
	assert.True(t, got.Equal(dec("40000")), "got %s", got)
}

func TestGroupByKey(t *testing.T) {
	recs := []model.InstallmentRecord{
		inst("SBI", "2024-01-01", "1"),
		inst("HDFC", "2024-01-01", "2"),
		inst("SBI", "2024-02-01", "3"),
	}
	groups := GroupByKey(recs)
	if assert.Len(t, groups, 2) {
		assert.Equal(t, "HDFC", groups[0].Key)
		assert.Equal(t, "SBI", groups[1].Key)
		assert.Len(t, groups[1].Records, 2)
		assert.Equal(t, "2024-01-01", groups[1].Records[0].Date)
	}
}
