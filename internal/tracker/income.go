package tracker

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/emitrack/emitrack/internal/id"
	"github.com/emitrack/emitrack/internal/ledger"
	"github.com/emitrack/emitrack/internal/model"
	"github.com/emitrack/emitrack/internal/store"
)

// AddIncome stores an income entry for month p.
func (s *Service) AddIncome(ctx context.Context, name string, amount decimal.Decimal, p ledger.Period) (model.IncomeRecord, error) {
	rec := model.IncomeRecord{
		ID:        s.opts.IDs(id.PrefixIncome),
		OwnerID:   s.owner,
		Name:      name,
		Amount:    amount,
		Date:      model.FormatDate(p.Start()),
		CreatedAt: s.opts.Now(),
	}
	if err := rec.Validate(); err != nil {
		return model.IncomeRecord{}, err
	}
	details := fmt.Sprintf("%s %s %s", rec.Name, p, rec.Amount.StringFixed(2))
	if err := s.commit(ctx, "income.add", store.KindIncome, 1, details, s.income.PutOps(rec)); err != nil {
		return model.IncomeRecord{}, err
	}
	return rec, nil
}

// IncomeEdit lists the fields to change. Nil fields are kept.
type IncomeEdit struct {
	Name   *string
	Amount *decimal.Decimal
	Period *ledger.Period
}

// EditIncome applies edit to the income entry with recID.
func (s *Service) EditIncome(ctx context.Context, recID string, edit IncomeEdit) (model.IncomeRecord, error) {
	if err := s.checkOwner(); err != nil {
		return model.IncomeRecord{}, err
	}
	rec, err := s.income.Get(ctx, s.owner, recID)
	if err != nil {
		return model.IncomeRecord{}, err
	}
	if edit.Name != nil {
		rec.Name = *edit.Name
	}
	if edit.Amount != nil {
		rec.Amount = *edit.Amount
	}
	if edit.Period != nil {
		rec.Date = model.FormatDate(edit.Period.Start())
	}
	if err := rec.Validate(); err != nil {
		return model.IncomeRecord{}, err
	}
	if err := s.commit(ctx, "income.edit", store.KindIncome, 1, recID, s.income.PutOps(rec)); err != nil {
		return model.IncomeRecord{}, err
	}
	return rec, nil
}

// DeleteIncome removes one income entry.
func (s *Service) DeleteIncome(ctx context.Context, recID string) error {
	if err := s.checkOwner(); err != nil {
		return err
	}
	if _, err := s.income.Get(ctx, s.owner, recID); err != nil {
		return err
	}
	return s.commit(ctx, "income.rm", store.KindIncome, 1, recID, s.income.DeleteOps(recID))
}

// ListIncome returns the owner's income entries of month p.
func (s *Service) ListIncome(ctx context.Context, p ledger.Period) ([]model.IncomeRecord, error) {
	if err := s.checkOwner(); err != nil {
		return nil, err
	}
	recs, err := s.income.List(ctx, s.owner)
	if err != nil {
		return nil, err
	}
	return ledger.FilterPeriod(recs, ledger.IncomeDate, p), nil
}

// CopyPreviousMonth copies every income entry of the month before target into
// target in one batch. Copies remember their source. It returns the number
// copied, zero when the previous month is empty.
func (s *Service) CopyPreviousMonth(ctx context.Context, target ledger.Period) (int, error) {
	prev := target.Previous()
	src, err := s.ListIncome(ctx, prev)
	if err != nil {
		return 0, err
	}
	if len(src) == 0 {
		return 0, nil
	}
	if err := s.checkBatch(len(src)); err != nil {
		return 0, err
	}
	now := s.opts.Now()
	date := model.FormatDate(target.Start())
	copies := make([]model.IncomeRecord, len(src))
	for i, r := range src {
		copies[i] = model.IncomeRecord{
			ID:         s.opts.IDs(id.PrefixIncome),
			OwnerID:    s.owner,
			Name:       r.Name,
			Amount:     r.Amount,
			Date:       date,
			CopiedFrom: r.ID,
			CreatedAt:  now,
		}
	}
	details := fmt.Sprintf("%s -> %s", prev, target)
	if err := s.commit(ctx, "income.copy", store.KindIncome, len(copies), details, s.income.PutOps(copies...)); err != nil {
		return 0, err
	}
	return len(copies), nil
}
