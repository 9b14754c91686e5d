package archive

import (
	"context"
	"time"

	"treasury-backend/internal/domain"
	"treasury-backend/internal/pkg/apperr"

	"github.com/shopspring/decimal"
)

// ArchiveView is one archive header joined with its branch name.
type ArchiveView struct {
	ID             uint            `json:"id"`
	MonthYear      string          `json:"month_year"`
	BranchID       uint            `json:"branch_id"`
	BranchName     string          `json:"branch_name"`
	TotalTithes    decimal.Decimal `json:"total_tithes"`
	TotalOfferings decimal.Decimal `json:"total_offerings"`
	FinalBalance   decimal.Decimal `json:"final_balance"`
	ArchivedAt     time.Time       `json:"archived_at"`
}

// FundRow is one fund's before/after pair inside an archive.
type FundRow struct {
	FundID         uint            `json:"fund_id"`
	FundName       string          `json:"fund_name"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	FinalBalance   decimal.Decimal `json:"final_balance"`
}

// ArchiveDetail expands one archive into its header and fund rows.
type ArchiveDetail struct {
	ArchiveView
	Funds []FundRow `json:"funds"`
}

// ListArchives returns archive headers, newest period first. Non-admin
// callers only see their own branch; month filters on the period label.
func (s *Service) ListArchives(ctx context.Context, branchID uint, isAdmin bool, month string) ([]ArchiveView, error) {
	q := s.DB.WithContext(ctx).Model(&domain.MonthlyArchive{}).
		Select("monthly_archives.id, monthly_archives.month_year, monthly_archives.branch_id, branches.name AS branch_name, monthly_archives.total_tithes, monthly_archives.total_offerings, monthly_archives.final_balance, monthly_archives.archived_at").
		Joins("JOIN branches ON branches.id = monthly_archives.branch_id")
	if month != "" {
		q = q.Where("monthly_archives.month_year = ?", month)
	}
	if !isAdmin {
		q = q.Where("monthly_archives.branch_id = ?", branchID)
	}

	var out []ArchiveView
	if err := q.Order("monthly_archives.month_year DESC").Order("branches.name").Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// GetArchiveDetail returns one archive header plus its fund rows.
func (s *Service) GetArchiveDetail(ctx context.Context, archiveID uint) (*ArchiveDetail, error) {
	var header ArchiveView
	err := s.DB.WithContext(ctx).Model(&domain.MonthlyArchive{}).
		Select("monthly_archives.id, monthly_archives.month_year, monthly_archives.branch_id, branches.name AS branch_name, monthly_archives.total_tithes, monthly_archives.total_offerings, monthly_archives.final_balance, monthly_archives.archived_at").
		Joins("JOIN branches ON branches.id = monthly_archives.branch_id").
		Where("monthly_archives.id = ?", archiveID).
		Scan(&header).Error
	if err != nil {
		return nil, err
	}
	if header.ID == 0 {
		return nil, apperr.NotFound("archive %d not found", archiveID)
	}

	var funds []FundRow
	err = s.DB.WithContext(ctx).Model(&domain.MonthlyFundArchive{}).
		Select("fund_id, fund_name, initial_balance, final_balance").
		Where("archive_id = ?", archiveID).
		Order("fund_name").
		Scan(&funds).Error
	if err != nil {
		return nil, err
	}

	return &ArchiveDetail{ArchiveView: header, Funds: funds}, nil
}

// BranchMonthTotal is one branch's archived total for a period, used by the
// consolidated balances report.
type BranchMonthTotal struct {
	BranchID     uint            `json:"branch_id"`
	BranchName   string          `json:"branch_name"`
	TotalBalance decimal.Decimal `json:"total_balance"`
}

// BranchTotalsForMonth sums archived fund balances per branch for one
// period label.
func (s *Service) BranchTotalsForMonth(ctx context.Context, month string) ([]BranchMonthTotal, error) {
	if month == "" {
		return nil, apperr.Validation("month is required")
	}
	var out []BranchMonthTotal
	err := s.DB.WithContext(ctx).Model(&domain.MonthlyArchive{}).
		Select("branches.id AS branch_id, branches.name AS branch_name, COALESCE(SUM(monthly_fund_archives.final_balance), 0) AS total_balance").
		Joins("JOIN branches ON branches.id = monthly_archives.branch_id").
		Joins("LEFT JOIN monthly_fund_archives ON monthly_fund_archives.archive_id = monthly_archives.id").
		Where("monthly_archives.month_year = ?", month).
		Group("branches.id, branches.name").
		Order("branches.name").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
