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

// AddInstallmentParams holds the fields of a single installment.
type AddInstallmentParams struct {
	GroupKey  string
	Date      string
	Amount    decimal.Decimal
	Category  model.Category // empty means debt
	Status    model.PaymentStatus
	Balance   decimal.NullDecimal
	Principal decimal.NullDecimal
	Interest  decimal.NullDecimal
}

// AddInstallment validates and stores one installment. The stored date is
// normalized to model.DateFormat.
func (s *Service) AddInstallment(ctx context.Context, p AddInstallmentParams) (model.InstallmentRecord, error) {
	category := p.Category
	if category == "" {
		category = model.CategoryDebt
	}
	rec := model.InstallmentRecord{
		ID:                 s.opts.IDs(id.PrefixInstallment),
		OwnerID:            s.owner,
		GroupKey:           p.GroupKey,
		Date:               p.Date,
		Amount:             p.Amount,
		Category:           category,
		Status:             p.Status,
		Balance:            p.Balance,
		PrincipalComponent: p.Principal,
		InterestComponent:  p.Interest,
		Source:             model.SourceManual,
		CreatedAt:          s.opts.Now(),
	}
	if err := rec.Validate(); err != nil {
		return model.InstallmentRecord{}, err
	}
	rec.Date = normalizeDate(rec.Date)

	details := fmt.Sprintf("%s %s %s", rec.GroupKey, rec.Date, rec.Amount.StringFixed(2))
	if err := s.commit(ctx, "emi.add", store.KindInstallments, 1, details, s.installments.PutOps(rec)); err != nil {
		return model.InstallmentRecord{}, err
	}
	return rec, nil
}

// GenerateSchedule writes one installment per month of req in a single batch
// and returns how many were written. A schedule longer than the batch limit is
// rejected before anything is written.
func (s *Service) GenerateSchedule(ctx context.Context, req ledger.ScheduleRequest) (int, error) {
	req.OwnerID = s.owner
	recs, err := ledger.GenerateSchedule(req)
	if err != nil {
		return 0, err
	}
	if err := s.checkBatch(len(recs)); err != nil {
		return 0, err
	}
	now := s.opts.Now()
	for i := range recs {
		recs[i].ID = s.opts.IDs(id.PrefixInstallment)
		recs[i].CreatedAt = now
	}
	details := fmt.Sprintf("%s %s..%s x%d", req.GroupKey, recs[0].Date, recs[len(recs)-1].Date, len(recs))
	if err := s.commit(ctx, "emi.schedule", store.KindInstallments, len(recs), details, s.installments.PutOps(recs...)); err != nil {
		return 0, err
	}
	return len(recs), nil
}

// SetStatus marks an installment paid, unpaid, or back to unset.
func (s *Service) SetStatus(ctx context.Context, recID string, status model.PaymentStatus) (model.InstallmentRecord, error) {
	if !status.Valid() {
		return model.InstallmentRecord{}, &model.InvalidInputError{Field: "status", Reason: "unknown status " + string(status)}
	}
	if err := s.checkOwner(); err != nil {
		return model.InstallmentRecord{}, err
	}
	rec, err := s.installments.Get(ctx, s.owner, recID)
	if err != nil {
		return model.InstallmentRecord{}, err
	}
	rec.Status = status
	details := fmt.Sprintf("%s -> %s", recID, statusLabel(status))
	if err := s.commit(ctx, "emi.status", store.KindInstallments, 1, details, s.installments.PutOps(rec)); err != nil {
		return model.InstallmentRecord{}, err
	}
	return rec, nil
}

func statusLabel(st model.PaymentStatus) string {
	if st == model.StatusUnset {
		return "unset"
	}
	return string(st)
}

// DeleteInstallment removes one installment.
func (s *Service) DeleteInstallment(ctx context.Context, recID string) error {
	if err := s.checkOwner(); err != nil {
		return err
	}
	if _, err := s.installments.Get(ctx, s.owner, recID); err != nil {
		return err
	}
	return s.commit(ctx, "emi.rm", store.KindInstallments, 1, recID, s.installments.DeleteOps(recID))
}

// PurgeGroup removes every installment of groupKey in one batch and returns
// how many were removed.
func (s *Service) PurgeGroup(ctx context.Context, groupKey string) (int, error) {
	if groupKey == "" {
		return 0, &model.InvalidInputError{Field: "group_key", Reason: "must not be empty"}
	}
	if err := s.checkOwner(); err != nil {
		return 0, err
	}
	ops, err := s.installments.MatchOps(ctx, s.owner, func(r model.InstallmentRecord) bool {
		return r.GroupKey == groupKey
	})
	if err != nil {
		return 0, err
	}
	if len(ops) == 0 {
		return 0, nil
	}
	if err := s.commit(ctx, "emi.purge", store.KindInstallments, len(ops), groupKey, ops); err != nil {
		return 0, err
	}
	return len(ops), nil
}

// ListInstallments returns the owner's installments in stored order.
func (s *Service) ListInstallments(ctx context.Context) ([]model.InstallmentRecord, error) {
	if err := s.checkOwner(); err != nil {
		return nil, err
	}
	return s.installments.List(ctx, s.owner)
}

// normalizeDate rewrites a parseable date in model.DateFormat. Anything else is
// returned unchanged.
func normalizeDate(s string) string {
	t, err := model.ParseDate(s)
	if err != nil {
		return s
	}
	return model.FormatDate(t)
}
