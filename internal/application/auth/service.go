package auth

import (
	"context"
	"errors"
	"strings"

	"treasury-backend/internal/application/ledger"
	"treasury-backend/internal/domain"
	"treasury-backend/internal/pkg/apperr"
	"treasury-backend/internal/pkg/validation"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Service authenticates branches and manages their credentials.
type Service struct {
	DB *gorm.DB
}

// Login verifies a branch's credentials. On success the branch's system
// fund is lazily provisioned, so older branches created before the
// system fund existed are healed on their next login.
func (s *Service) Login(ctx context.Context, name, password string) (*domain.Branch, error) {
	name = strings.TrimSpace(name)
	if name == "" || password == "" {
		return nil, apperr.Validation("name and password are required")
	}

	var branch domain.Branch
	err := s.DB.WithContext(ctx).Where("name = ?", name).First(&branch).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Authorization("invalid credentials")
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(branch.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.Authorization("invalid credentials")
	}

	if !branch.IsAdmin {
		if err := s.EnsureGeneralCash(ctx, branch.ID); err != nil {
			log.Error().Err(err).Uint("branch_id", branch.ID).Msg("general cash provisioning failed")
			return nil, err
		}
	}
	return &branch, nil
}

// EnsureGeneralCash guarantees the branch has its system fund. Idempotent.
func (s *Service) EnsureGeneralCash(ctx context.Context, branchID uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.Fund
		err := tx.Where("branch_id = ? AND is_system = ?", branchID, true).First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		typeID, err := ledger.FundTypeID(tx, domain.KindGeneralCash)
		if err != nil {
			return err
		}
		return tx.Create(&domain.Fund{
			BranchID:       branchID,
			FundTypeID:     typeID,
			Name:           domain.GeneralCashFundName,
			CurrentBalance: decimal.Zero,
			IsSystem:       true,
		}).Error
	})
}

// ChangePassword swaps a branch's credential after verifying the current
// one. The new password must meet the length floor and differ from the
// old one.
func (s *Service) ChangePassword(ctx context.Context, branchID uint, current, next string) error {
	if current == "" || next == "" {
		return apperr.Validation("current and new passwords are required")
	}
	if !validation.IsValidPassword(next) {
		return apperr.Validation("new password must be at least %d characters", validation.MinPasswordLength)
	}
	if current == next {
		return apperr.Validation("new password must differ from the current one")
	}

	var branch domain.Branch
	if err := s.DB.WithContext(ctx).First(&branch, branchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("branch %d not found", branchID)
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(branch.PasswordHash), []byte(current)); err != nil {
		return apperr.Authorization("current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Model(&domain.Branch{}).
		Where("id = ?", branchID).
		Update("password_hash", string(hash)).Error
}
