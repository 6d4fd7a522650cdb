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

// AddInvestment stores a lump-sum investment with its maturity amount.
func (s *Service) AddInvestment(ctx context.Context, name string, principal, roi, tenure decimal.Decimal) (model.InvestmentRecord, error) {
	rec := model.InvestmentRecord{
		ID:        s.opts.IDs(id.PrefixInvestment),
		OwnerID:   s.owner,
		Name:      name,
		Principal: principal,
		ROI:       roi,
		Tenure:    tenure,
		CreatedAt: s.opts.Now(),
	}
	if err := rec.Validate(); err != nil {
		return model.InvestmentRecord{}, err
	}
	rec = ledger.Project(rec)
	details := fmt.Sprintf("%s %s -> %s", rec.Name, rec.Principal.StringFixed(2), rec.MaturityAmount.StringFixed(2))
	if err := s.commit(ctx, "invest.add", store.KindInvestments, 1, details, s.investments.PutOps(rec)); err != nil {
		return model.InvestmentRecord{}, err
	}
	return rec, nil
}

// InvestmentEdit lists the fields to change. Nil fields are kept.
type InvestmentEdit struct {
	Name      *string
	Principal *decimal.Decimal
	ROI       *decimal.Decimal
	Tenure    *decimal.Decimal
}

// EditInvestment applies edit and recomputes the maturity amount.
func (s *Service) EditInvestment(ctx context.Context, recID string, edit InvestmentEdit) (model.InvestmentRecord, error) {
	if err := s.checkOwner(); err != nil {
		return model.InvestmentRecord{}, err
	}
	rec, err := s.investments.Get(ctx, s.owner, recID)
	if err != nil {
		return model.InvestmentRecord{}, err
	}
	if edit.Name != nil {
		rec.Name = *edit.Name
	}
	if edit.Principal != nil {
		rec.Principal = *edit.Principal
	}
	if edit.ROI != nil {
		rec.ROI = *edit.ROI
	}
	if edit.Tenure != nil {
		rec.Tenure = *edit.Tenure
	}
	if err := rec.Validate(); err != nil {
		return model.InvestmentRecord{}, err
	}
	rec = ledger.Project(rec)
	details := fmt.Sprintf("%s -> %s", recID, rec.MaturityAmount.StringFixed(2))
	if err := s.commit(ctx, "invest.edit", store.KindInvestments, 1, details, s.investments.PutOps(rec)); err != nil {
		return model.InvestmentRecord{}, err
	}
	return rec, nil
}

// DeleteInvestment removes one investment.
func (s *Service) DeleteInvestment(ctx context.Context, recID string) error {
	if err := s.checkOwner(); err != nil {
		return err
	}
	if _, err := s.investments.Get(ctx, s.owner, recID); err != nil {
		return err
	}
	return s.commit(ctx, "invest.rm", store.KindInvestments, 1, recID, s.investments.DeleteOps(recID))
}

// ListInvestments returns the owner's investments in stored order.
func (s *Service) ListInvestments(ctx context.Context) ([]model.InvestmentRecord, error) {
	if err := s.checkOwner(); err != nil {
		return nil, err
	}
	return s.investments.List(ctx, s.owner)
}
