package tracker

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/emitrack/emitrack/internal/id"
	"github.com/emitrack/emitrack/internal/ledger"
	"github.com/emitrack/emitrack/internal/model"
	"github.com/emitrack/emitrack/internal/store"
)

// AddBorrower records money lent to name on borrowedDate.
func (s *Service) AddBorrower(ctx context.Context, name string, principal decimal.Decimal, borrowedDate string) (model.BorrowerRecord, error) {
	rec := model.BorrowerRecord{
		ID:           s.opts.IDs(id.PrefixBorrower),
		OwnerID:      s.owner,
		Name:         name,
		Principal:    principal,
		BorrowedDate: borrowedDate,
		Status:       model.BorrowerActive,
		CreatedAt:    s.opts.Now(),
	}
	if err := rec.Validate(); err != nil {
		return model.BorrowerRecord{}, err
	}
	rec.BorrowedDate = normalizeDate(rec.BorrowedDate)
	details := fmt.Sprintf("%s %s", rec.Name, rec.Principal.StringFixed(2))
	if err := s.commit(ctx, "lend.add", store.KindBorrowers, 1, details, s.borrowers.PutOps(rec)); err != nil {
		return model.BorrowerRecord{}, err
	}
	return rec, nil
}

// BorrowerEdit lists the fields to change. Nil fields are kept.
type BorrowerEdit struct {
	Name         *string
	Principal    *decimal.Decimal
	BorrowedDate *string
}

// EditBorrower applies edit to the borrower with recID. Settlements and
// status are untouched.
func (s *Service) EditBorrower(ctx context.Context, recID string, edit BorrowerEdit) (model.BorrowerRecord, error) {
	return s.updateBorrower(ctx, "lend.edit", recID, recID, func(b *model.BorrowerRecord) error {
		if edit.Name != nil {
			b.Name = *edit.Name
		}
		if edit.Principal != nil {
			b.Principal = *edit.Principal
		}
		if edit.BorrowedDate != nil {
			b.BorrowedDate = *edit.BorrowedDate
		}
		if err := b.Validate(); err != nil {
			return err
		}
		b.BorrowedDate = normalizeDate(b.BorrowedDate)
		return nil
	})
}

// Settle appends a repayment to the borrower with recID.
func (s *Service) Settle(ctx context.Context, recID string, amount decimal.Decimal, date, note string) (model.BorrowerRecord, error) {
	stl := model.Settlement{
		ID:     s.opts.IDs(id.PrefixSettlement),
		Amount: amount,
		Date:   normalizeDate(date),
		Note:   note,
	}
	details := fmt.Sprintf("%s %s", recID, amount.StringFixed(2))
	return s.updateBorrower(ctx, "lend.settle", recID, details, func(b *model.BorrowerRecord) error {
		next, err := ledger.AddSettlement(b, stl)
		if err != nil {
			return err
		}
		*b = next
		return nil
	})
}

// CloseBorrower marks the borrower closed with a description.
func (s *Service) CloseBorrower(ctx context.Context, recID, description string) (model.BorrowerRecord, error) {
	at := s.opts.Now()
	return s.updateBorrower(ctx, "lend.close", recID, recID, func(b *model.BorrowerRecord) error {
		next, err := ledger.Close(b, description, at)
		if err != nil {
			return err
		}
		*b = next
		return nil
	})
}

func (s *Service) updateBorrower(ctx context.Context, action, recID, details string, mutate func(*model.BorrowerRecord) error) (model.BorrowerRecord, error) {
	if err := s.checkOwner(); err != nil {
		return model.BorrowerRecord{}, err
	}
	rec, err := s.borrowers.Get(ctx, s.owner, recID)
	if errors.Is(err, model.ErrNotFound) {
		// Still matches ErrNotFound for callers that branch on it.
		return model.BorrowerRecord{}, fmt.Errorf("%w: %w", &model.InvalidInputError{Field: "borrower", Reason: "does not exist"}, err)
	}
	if err != nil {
		return model.BorrowerRecord{}, err
	}
	if err := mutate(&rec); err != nil {
		return model.BorrowerRecord{}, err
	}
	if err := s.commit(ctx, action, store.KindBorrowers, 1, details, s.borrowers.PutOps(rec)); err != nil {
		return model.BorrowerRecord{}, err
	}
	return rec, nil
}

// DeleteBorrower removes the borrower with recID and its settlements.
func (s *Service) DeleteBorrower(ctx context.Context, recID string) error {
	if err := s.checkOwner(); err != nil {
		return err
	}
	if _, err := s.borrowers.Get(ctx, s.owner, recID); err != nil {
		return err
	}
	return s.commit(ctx, "lend.rm", store.KindBorrowers, 1, recID, s.borrowers.DeleteOps(recID))
}

// ListBorrowers returns the owner's borrowers in display order.
func (s *Service) ListBorrowers(ctx context.Context) ([]model.BorrowerRecord, error) {
	if err := s.checkOwner(); err != nil {
		return nil, err
	}
	recs, err := s.borrowers.List(ctx, s.owner)
	if err != nil {
		return nil, err
	}
	return ledger.SortBorrowers(recs), nil
}
