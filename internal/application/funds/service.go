package funds

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"treasury-backend/internal/application/ledger"
	"treasury-backend/internal/domain"
	"treasury-backend/internal/pkg/apperr"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service serves fund listings and balances, creates named funds and runs
// the cache-vs-history reconciliation check.
type Service struct {
	DB    *gorm.DB
	Cache *ListCache
}

// FundView is a fund joined with its type and branch names.
type FundView struct {
	ID         uint            `json:"id"`
	Name       string          `json:"name"`
	GroupType  string          `json:"group_type"`
	Balance    decimal.Decimal `json:"balance"`
	BranchName string          `json:"branch_name"`
	IsSystem   bool            `json:"is_system"`
}

// ListFunds returns funds visible to the caller, system fund first. Admin
// callers see every branch. Results go through the Redis read-through
// cache when one is configured.
func (s *Service) ListFunds(ctx context.Context, branchID uint, isAdmin bool) ([]FundView, error) {
	key := branchKey(branchID)
	if isAdmin {
		key = cacheKeyAll
	}
	if s.Cache != nil {
		if views, ok := s.Cache.get(ctx, key); ok {
			return views, nil
		}
	}

	q := s.DB.WithContext(ctx).Model(&domain.Fund{}).
		Select("funds.id, funds.name, fund_types.name AS group_type, funds.current_balance AS balance, branches.name AS branch_name, funds.is_system").
		Joins("JOIN fund_types ON fund_types.id = funds.fund_type_id").
		Joins("JOIN branches ON branches.id = funds.branch_id")
	if !isAdmin {
		q = q.Where("funds.branch_id = ?", branchID)
	}

	var views []FundView
	if err := q.Order("funds.is_system DESC").Order("funds.name ASC").Scan(&views).Error; err != nil {
		return nil, err
	}

	if s.Cache != nil {
		s.Cache.set(ctx, key, views)
	}
	return views, nil
}

// BranchBalance sums the branch's cached fund balances.
func (s *Service) BranchBalance(ctx context.Context, branchID uint) (decimal.Decimal, error) {
	var row struct {
		Balance decimal.Decimal
	}
	err := s.DB.WithContext(ctx).Model(&domain.Fund{}).
		Select("COALESCE(SUM(current_balance), 0) AS balance").
		Where("branch_id = ?", branchID).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Balance, nil
}

// CreateFund provisions a named fund with a zero balance. The general-cash
// name is reserved for the system fund.
func (s *Service) CreateFund(ctx context.Context, branchID uint, name, kindName string) (*domain.Fund, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("fund name is required")
	}
	if strings.EqualFold(name, domain.GeneralCashFundName) {
		return nil, apperr.Validation("%q is reserved for the system fund", domain.GeneralCashFundName)
	}
	if kindName == "" {
		kindName = string(domain.KindOther)
	}
	kind, ok := domain.ParseKind(kindName)
	if !ok || kind == domain.KindGeneralCash {
		return nil, apperr.Validation("invalid fund type %q", kindName)
	}

	var fund *domain.Fund
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.Fund
		err := tx.Where("branch_id = ? AND name = ?", branchID, name).First(&existing).Error
		if err == nil {
			return apperr.Validation("fund %q already exists for this branch", name)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		typeID, err := ledger.FundTypeID(tx, kind)
		if err != nil {
			return err
		}
		fund = &domain.Fund{
			BranchID:       branchID,
			FundTypeID:     typeID,
			Name:           name,
			CurrentBalance: decimal.Zero,
		}
		return tx.Create(fund).Error
	})
	if err != nil {
		return nil, err
	}

	if s.Cache != nil {
		s.Cache.InvalidateFunds(ctx, branchID)
	}
	return fund, nil
}

// ListFundTypes returns the entry types a posting form may offer, in
// display order. The set is closed, so no table read is involved.
func (s *Service) ListFundTypes() []string {
	kinds := domain.PostableKinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return names
}

// LastBalanceView is a fund with its balance reconstructed from the last
// entry's snapshot rather than the cache (admin cross-check view).
type LastBalanceView struct {
	ID      uint            `json:"id"`
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

// BranchFundsWithLastBalance lists a branch's funds with each balance taken
// from the newest entry's new_balance snapshot (zero when no entries).
func (s *Service) BranchFundsWithLastBalance(ctx context.Context, branchID uint) ([]LastBalanceView, error) {
	var out []LastBalanceView
	err := s.DB.WithContext(ctx).Model(&domain.Fund{}).
		Select("funds.id, funds.name, COALESCE((SELECT entries.new_balance FROM entries WHERE entries.fund_id = funds.id ORDER BY entries.id DESC LIMIT 1), 0) AS balance").
		Where("funds.branch_id = ?", branchID).
		Order("funds.name").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReconcileResult compares a fund's cached balance against the signed sum
// of its full entry history.
type ReconcileResult struct {
	FundID   uint            `json:"fund_id"`
	FundName string          `json:"fund_name"`
	Cached   decimal.Decimal `json:"cached_balance"`
	Computed decimal.Decimal `json:"computed_balance"`
	Drift    decimal.Decimal `json:"drift"`
	InSync   bool            `json:"in_sync"`
}

// Reconcile recomputes a fund's balance from its entry history and reports
// drift against the cache. Zeroing entries are part of the history, so the
// signed sum over all entries must equal the cached value. Corrections via
// UpdateEntry are the known drift source. Read-only apart from the audit
// record.
func (s *Service) Reconcile(ctx context.Context, actorBranchID, fundID uint) (*ReconcileResult, error) {
	var fund domain.Fund
	if err := s.DB.WithContext(ctx).First(&fund, fundID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("fund %d not found", fundID)
		}
		return nil, err
	}

	var row struct {
		Total decimal.Decimal
	}
	err := s.DB.WithContext(ctx).Model(&domain.Entry{}).
		Select("COALESCE(SUM(CASE WHEN fund_types.name = ? THEN -entries.amount ELSE entries.amount END), 0) AS total", string(domain.KindWithdrawal)).
		Joins("JOIN fund_types ON fund_types.id = entries.fund_type_id").
		Where("entries.fund_id = ?", fundID).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	result := &ReconcileResult{
		FundID:   fund.ID,
		FundName: fund.Name,
		Cached:   fund.CurrentBalance,
		Computed: row.Total,
		Drift:    fund.CurrentBalance.Sub(row.Total),
		InSync:   fund.CurrentBalance.Equal(row.Total),
	}

	payload, _ := json.Marshal(result)
	if err := s.DB.WithContext(ctx).Create(&domain.AuditEvent{
		EventType:     domain.AuditReconciliation,
		ActorBranchID: &actorBranchID,
		EventData:     datatypes.JSON(payload),
	}).Error; err != nil {
		return nil, err
	}
	return result, nil
}
