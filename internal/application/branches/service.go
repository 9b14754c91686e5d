package branches

import (
	"context"
	"errors"
	"strings"

	"treasury-backend/internal/domain"
	"treasury-backend/internal/pkg/apperr"
	"treasury-backend/internal/pkg/validation"

	"gorm.io/gorm"
)

// Service manages the congregation roster (admin surface).
type Service struct {
	DB *gorm.DB
}

// BranchView is the roster projection; no credential material.
type BranchView struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"is_admin"`
}

// ListBranches returns every non-admin congregation, name order.
func (s *Service) ListBranches(ctx context.Context) ([]BranchView, error) {
	var out []BranchView
	err := s.DB.WithContext(ctx).Model(&domain.Branch{}).
		Select("id, name, is_admin").
		Where("is_admin = ?", false).
		Order("name").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetBranch returns one congregation by id.
func (s *Service) GetBranch(ctx context.Context, branchID uint) (*BranchView, error) {
	var branch domain.Branch
	if err := s.DB.WithContext(ctx).First(&branch, branchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("branch %d not found", branchID)
		}
		return nil, err
	}
	return &BranchView{ID: branch.ID, Name: branch.Name, IsAdmin: branch.IsAdmin}, nil
}

// RenameBranch changes a congregation's name. Names are unique across the
// roster since they double as login identifiers.
func (s *Service) RenameBranch(ctx context.Context, branchID uint, name string) (*BranchView, error) {
	name = strings.TrimSpace(name)
	if !validation.IsValidBranchName(name) {
		return nil, apperr.Validation("branch name is required")
	}

	var view *BranchView
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var branch domain.Branch
		if err := tx.First(&branch, branchID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("branch %d not found", branchID)
			}
			return err
		}

		var clash domain.Branch
		err := tx.Where("name = ? AND id <> ?", name, branchID).First(&clash).Error
		if err == nil {
			return apperr.Validation("branch name %q is already in use", name)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Model(&branch).Update("name", name).Error; err != nil {
			return err
		}
		view = &BranchView{ID: branch.ID, Name: name, IsAdmin: branch.IsAdmin}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}
