package ledger

import (
	"context"
	"errors"
	"time"

	"treasury-backend/internal/domain"
	"treasury-backend/internal/pkg/apperr"
	"treasury-backend/internal/pkg/validation"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service is the balance mutator: the only code path that appends ledger
// entries and moves a fund's cached balance. Every mutation runs in one
// store transaction so the read-modify-write on the balance is serialized
// against concurrent posters.
type Service struct {
	DB    *gorm.DB
	Cache Invalidator
}

// Invalidator drops cached fund listings after a mutation. Optional.
type Invalidator interface {
	InvalidateFunds(ctx context.Context, branchID uint)
}

// Caller identifies the authenticated branch performing a mutation.
type Caller struct {
	BranchID uint
	IsAdmin  bool
}

// PostEntryInput carries a post request. Amount keeps whatever precision
// the client sent; rounding happens at computation time.
type PostEntryInput struct {
	Kind        string
	Amount      decimal.Decimal
	Description string
	PersonName  string
	FundID      *uint
}

// PostEntry validates, routes and atomically posts one ledger entry:
// entry insert and fund balance update succeed or fail together.
// Tithes and offerings always land on the caller's general-cash fund,
// overriding any fund id in the input.
func (s *Service) PostEntry(ctx context.Context, caller Caller, in PostEntryInput) (*domain.Entry, error) {
	kind, ok := domain.ParseKind(in.Kind)
	if !ok || !kind.Postable() {
		return nil, apperr.Validation("invalid entry type %q", in.Kind)
	}
	if in.PersonName == "" {
		return nil, apperr.Validation("person name is required")
	}
	if !validation.IsValidAmount(in.Amount) {
		return nil, apperr.Validation("amount must be a positive number")
	}

	var entry *domain.Entry
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fund, err := resolveTargetFund(tx, caller, kind, in.FundID)
		if err != nil {
			return err
		}

		amount := validation.RoundMoney(in.Amount)
		previous := fund.CurrentBalance
		next := kind.Apply(previous, amount)
		if next.IsNegative() {
			return apperr.InsufficientBalance("insufficient balance")
		}

		typeID, err := FundTypeID(tx, kind)
		if err != nil {
			return err
		}

		entry = &domain.Entry{
			FundID:          fund.ID,
			BranchID:        fund.BranchID,
			FundTypeID:      typeID,
			Amount:          amount,
			Description:     in.Description,
			PersonName:      in.PersonName,
			PreviousBalance: previous,
			NewBalance:      next,
			TransactionDate: time.Now().UTC(),
		}
		if err := tx.Create(entry).Error; err != nil {
			return err
		}
		return tx.Model(&domain.Fund{}).Where("id = ?", fund.ID).
			Update("current_balance", next).Error
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, entry.BranchID)
	return entry, nil
}

// UpdateEntry applies the narrow correction path: amount, description and
// person may change; the owning fund's cached balance moves by the raw
// amount delta. Snapshot pairs of other entries are never recomputed, and
// the adjusted balance is not re-validated for non-negativity.
func (s *Service) UpdateEntry(ctx context.Context, entryID uint, amount decimal.Decimal, description, personName string) (*domain.Entry, error) {
	if !validation.IsValidAmount(amount) {
		return nil, apperr.Validation("amount must be a positive number")
	}

	var entry domain.Entry
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&entry, entryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("entry %d not found", entryID)
			}
			return err
		}

		newAmount := validation.RoundMoney(amount)
		delta := newAmount.Sub(entry.Amount)

		entry.Amount = newAmount
		entry.Description = description
		entry.PersonName = personName
		if err := tx.Model(&domain.Entry{}).Where("id = ?", entry.ID).
			Updates(map[string]interface{}{
				"amount":      newAmount,
				"description": description,
				"person_name": personName,
			}).Error; err != nil {
			return err
		}

		var fund domain.Fund
		if err := lockForUpdate(tx).First(&fund, entry.FundID).Error; err != nil {
			return err
		}
		return tx.Model(&domain.Fund{}).Where("id = ?", fund.ID).
			Update("current_balance", fund.CurrentBalance.Add(delta)).Error
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, entry.BranchID)
	return &entry, nil
}

func (s *Service) invalidate(ctx context.Context, branchID uint) {
	if s.Cache != nil {
		s.Cache.InvalidateFunds(ctx, branchID)
	}
}

// resolveTargetFund picks the fund an entry posts to and locks its row for
// the rest of the transaction. Revenue kinds override any caller-supplied
// fund with the branch's general-cash fund.
func resolveTargetFund(tx *gorm.DB, caller Caller, kind domain.EntryKind, fundID *uint) (*domain.Fund, error) {
	if kind.RoutesToGeneralCash() {
		var fund domain.Fund
		err := lockForUpdate(tx).
			Where("branch_id = ? AND is_system = ?", caller.BranchID, true).
			First(&fund).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Consistency(err, "general-cash fund missing for branch %d", caller.BranchID)
		}
		if err != nil {
			return nil, err
		}
		return &fund, nil
	}

	if fundID == nil {
		return nil, apperr.Validation("fund is required for %s entries", kind)
	}
	var fund domain.Fund
	err := lockForUpdate(tx).First(&fund, *fundID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Validation("fund %d not found", *fundID)
	}
	if err != nil {
		return nil, err
	}
	if fund.BranchID != caller.BranchID && !caller.IsAdmin {
		return nil, apperr.Authorization("fund %d belongs to another branch", *fundID)
	}
	return &fund, nil
}

// lockForUpdate adds SELECT ... FOR UPDATE on dialects that have row locks.
// sqlite (tests) serializes writers at the transaction level instead.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// FundTypeID resolves the reference row for a kind, creating it lazily.
func FundTypeID(tx *gorm.DB, kind domain.EntryKind) (uint, error) {
	var ft domain.FundType
	if err := tx.Where("name = ?", string(kind)).
		FirstOrCreate(&ft, domain.FundType{Name: string(kind)}).Error; err != nil {
		return 0, err
	}
	return ft.ID, nil
}
