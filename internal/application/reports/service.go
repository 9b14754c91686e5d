package reports

import (
	"context"
	"time"

	"treasury-backend/internal/domain"
	"treasury-backend/internal/pkg/apperr"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service is the read-only projection layer: entry listings, aggregate
// balances and the admin dashboard. No method here mutates state.
type Service struct {
	DB *gorm.DB
}

// EntryView is an entry joined with its type, fund and branch names.
type EntryView struct {
	ID              uint            `json:"id"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionDate time.Time       `json:"transaction_date"`
	Description     string          `json:"description"`
	PersonName      string          `json:"person_name"`
	Type            string          `json:"type"`
	FundName        string          `json:"fund_name"`
	BranchName      string          `json:"branch_name"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	NewBalance      decimal.Decimal `json:"new_balance"`
}

const entrySelect = "entries.id, entries.amount, entries.transaction_date, entries.description, entries.person_name, fund_types.name AS type, funds.name AS fund_name, branches.name AS branch_name, entries.previous_balance, entries.new_balance"

func (s *Service) entryQuery(ctx context.Context) *gorm.DB {
	return s.DB.WithContext(ctx).Model(&domain.Entry{}).
		Select(entrySelect).
		Joins("JOIN funds ON funds.id = entries.fund_id").
		Joins("JOIN branches ON branches.id = entries.branch_id").
		Joins("JOIN fund_types ON fund_types.id = entries.fund_type_id")
}

// ListBranchEntries returns a branch's entries newest first, optionally
// restricted to one fund.
func (s *Service) ListBranchEntries(ctx context.Context, branchID uint, fundID *uint) ([]EntryView, error) {
	q := s.entryQuery(ctx).Where("entries.branch_id = ?", branchID)
	if fundID != nil {
		q = q.Where("entries.fund_id = ?", *fundID)
	}
	var out []EntryView
	if err := q.Order("entries.transaction_date DESC").Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// GetEntry returns one entry by id.
func (s *Service) GetEntry(ctx context.Context, entryID uint) (*EntryView, error) {
	var view EntryView
	err := s.entryQuery(ctx).Where("entries.id = ?", entryID).Scan(&view).Error
	if err != nil {
		return nil, err
	}
	if view.ID == 0 {
		return nil, apperr.NotFound("entry %d not found", entryID)
	}
	return &view, nil
}

// EntryPage is one page of the global entry listing.
type EntryPage struct {
	Entries    []EntryView `json:"entries"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	TotalPages int         `json:"total_pages"`
}

// ListAllEntries pages through every branch's entries, newest first
// (admin view).
func (s *Service) ListAllEntries(ctx context.Context, page, limit int) (*EntryPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}
	offset := (page - 1) * limit

	var entries []EntryView
	err := s.entryQuery(ctx).
		Order("entries.transaction_date DESC").
		Limit(limit).Offset(offset).
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}

	var total int64
	if err := s.DB.WithContext(ctx).Model(&domain.Entry{}).Count(&total).Error; err != nil {
		return nil, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &EntryPage{Entries: entries, Total: total, Page: page, TotalPages: totalPages}, nil
}

// SearchFundEntries filters a fund's entries by counterparty name
// substring, newest first.
func (s *Service) SearchFundEntries(ctx context.Context, fundID uint, personName string) ([]EntryView, error) {
	var out []EntryView
	err := s.entryQuery(ctx).
		Where("entries.fund_id = ?", fundID).
		Where("entries.person_name LIKE ?", "%"+personName+"%").
		Order("entries.transaction_date DESC").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// BranchBalanceView is one branch's signed aggregate over its entries.
type BranchBalanceView struct {
	ID      uint            `json:"id"`
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

// TypeTotal is one revenue kind's total for the current month.
type TypeTotal struct {
	Type  string          `json:"type"`
	Total decimal.Decimal `json:"total"`
}

// AdminBalances is the admin dashboard: per-branch signed sums, current
// month revenue totals and the fleet-wide total.
type AdminBalances struct {
	Branches     []BranchBalanceView `json:"branches"`
	TypeTotals   []TypeTotal         `json:"type_totals"`
	TotalBalance decimal.Decimal     `json:"total_balance"`
}

// AdminBalancesReport recomputes every non-admin branch's balance as a
// signed sum over entry history (tithe/offering/deposit add, withdrawal
// subtracts, other ignored) plus current-month tithe/offering totals.
func (s *Service) AdminBalancesReport(ctx context.Context, now time.Time) (*AdminBalances, error) {
	var branches []BranchBalanceView
	err := s.DB.WithContext(ctx).Model(&domain.Branch{}).
		Select("branches.id, branches.name, COALESCE(SUM(CASE WHEN fund_types.name IN (?, ?, ?) THEN entries.amount WHEN fund_types.name = ? THEN -entries.amount ELSE 0 END), 0) AS balance",
			string(domain.KindTithe), string(domain.KindOffering), string(domain.KindDeposit), string(domain.KindWithdrawal)).
		Joins("LEFT JOIN entries ON entries.branch_id = branches.id").
		Joins("LEFT JOIN fund_types ON fund_types.id = entries.fund_type_id").
		Where("branches.is_admin = ?", false).
		Group("branches.id, branches.name").
		Order("branches.name").
		Scan(&branches).Error
	if err != nil {
		return nil, err
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	nextMonth := monthStart.AddDate(0, 1, 0)

	var typeTotals []TypeTotal
	err = s.DB.WithContext(ctx).Model(&domain.Entry{}).
		Select("fund_types.name AS type, COALESCE(SUM(entries.amount), 0) AS total").
		Joins("JOIN fund_types ON fund_types.id = entries.fund_type_id").
		Where("fund_types.name IN (?, ?)", string(domain.KindTithe), string(domain.KindOffering)).
		Where("entries.transaction_date >= ? AND entries.transaction_date < ?", monthStart, nextMonth).
		Group("fund_types.name").
		Scan(&typeTotals).Error
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, b := range branches {
		total = total.Add(b.Balance)
	}

	return &AdminBalances{Branches: branches, TypeTotals: typeTotals, TotalBalance: total}, nil
}
