package funds

import (
	"context"
	"testing"
	"time"

	"treasury-backend/internal/application/ledger"
	"treasury-backend/internal/domain"
	"treasury-backend/internal/infrastructure/database"
	"treasury-backend/internal/pkg/apperr"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupFundsTest(t *testing.T) (*Service, *gorm.DB, domain.Branch) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	branch := domain.Branch{Name: "North Congregation", PasswordHash: "x"}
	require.NoError(t, db.Create(&branch).Error)

	typeID, err := ledger.FundTypeID(db, domain.KindGeneralCash)
	require.NoError(t, err)
	require.NoError(t, db.Create(&domain.Fund{
		BranchID:       branch.ID,
		FundTypeID:     typeID,
		Name:           domain.GeneralCashFundName,
		CurrentBalance: decimal.NewFromInt(50),
		IsSystem:       true,
	}).Error)

	return &Service{DB: db}, db, branch
}

func withCache(t *testing.T, svc *Service) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	svc.Cache = &ListCache{Rdb: rdb}
	return mr
}

func TestListFunds_SystemFundFirst(t *testing.T) {
	svc, _, branch := setupFundsTest(t)
	_, err := svc.CreateFund(context.Background(), branch.ID, "Building Fund", "OTHER")
	require.NoError(t, err)

	views, err := svc.ListFunds(context.Background(), branch.ID, false)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, domain.GeneralCashFundName, views[0].Name)
	assert.True(t, views[0].IsSystem)
	assert.Equal(t, "Building Fund", views[1].Name)
	assert.Equal(t, "OTHER", views[1].GroupType)
	assert.Equal(t, "North Congregation", views[1].BranchName)
}

func TestListFunds_AdminSeesAllBranches(t *testing.T) {
	svc, db, _ := setupFundsTest(t)
	other := domain.Branch{Name: "South Congregation", PasswordHash: "x"}
	require.NoError(t, db.Create(&other).Error)
	typeID, err := ledger.FundTypeID(db, domain.KindGeneralCash)
	require.NoError(t, err)
	require.NoError(t, db.Create(&domain.Fund{
		BranchID: other.ID, FundTypeID: typeID, Name: domain.GeneralCashFundName,
		CurrentBalance: decimal.Zero, IsSystem: true,
	}).Error)

	views, err := svc.ListFunds(context.Background(), 0, true)
	require.NoError(t, err)
	assert.Len(t, views, 2)
}

func TestListFunds_ReadThroughCache(t *testing.T) {
	svc, db, branch := setupFundsTest(t)
	withCache(t, svc)
	ctx := context.Background()

	first, err := svc.ListFunds(ctx, branch.ID, false)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// A direct DB write is invisible while the cached listing lives.
	require.NoError(t, db.Model(&domain.Fund{}).Where("branch_id = ?", branch.ID).
		Update("current_balance", decimal.NewFromInt(999)).Error)
	cached, err := svc.ListFunds(ctx, branch.ID, false)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(50).Equal(cached[0].Balance), "served from cache")

	// Invalidation brings the next read back to the store.
	svc.Cache.InvalidateFunds(ctx, branch.ID)
	fresh, err := svc.ListFunds(ctx, branch.ID, false)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(999).Equal(fresh[0].Balance))
}

func TestListFunds_CacheExpiry(t *testing.T) {
	svc, db, branch := setupFundsTest(t)
	mr := withCache(t, svc)
	ctx := context.Background()

	_, err := svc.ListFunds(ctx, branch.ID, false)
	require.NoError(t, err)
	require.NoError(t, db.Model(&domain.Fund{}).Where("branch_id = ?", branch.ID).
		Update("current_balance", decimal.NewFromInt(200)).Error)

	mr.FastForward(defaultCacheTTL + time.Second)

	fresh, err := svc.ListFunds(ctx, branch.ID, false)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(200).Equal(fresh[0].Balance))
}

func TestCreateFund_Validation(t *testing.T) {
	svc, _, branch := setupFundsTest(t)
	ctx := context.Background()

	_, err := svc.CreateFund(ctx, branch.ID, "  ", "OTHER")
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))

	_, err = svc.CreateFund(ctx, branch.ID, "general cash", "OTHER")
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err), "reserved name, case insensitive")

	_, err = svc.CreateFund(ctx, branch.ID, "Building Fund", "GENERAL_CASH")
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))

	_, err = svc.CreateFund(ctx, branch.ID, "Building Fund", "SAVINGS")
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))

	fund, err := svc.CreateFund(ctx, branch.ID, "Building Fund", "")
	require.NoError(t, err)
	assert.True(t, fund.CurrentBalance.IsZero())
	assert.False(t, fund.IsSystem)

	_, err = svc.CreateFund(ctx, branch.ID, "Building Fund", "OTHER")
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err), "duplicate per branch")
}

func TestBranchBalance(t *testing.T) {
	svc, db, branch := setupFundsTest(t)
	fund, err := svc.CreateFund(context.Background(), branch.ID, "Building Fund", "OTHER")
	require.NoError(t, err)
	require.NoError(t, db.Model(&domain.Fund{}).Where("id = ?", fund.ID).
		Update("current_balance", decimal.NewFromInt(25)).Error)

	total, err := svc.BranchBalance(context.Background(), branch.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(75).Equal(total))
}

func TestBranchFundsWithLastBalance(t *testing.T) {
	svc, db, branch := setupFundsTest(t)

	var general domain.Fund
	require.NoError(t, db.Where("branch_id = ? AND is_system = ?", branch.ID, true).First(&general).Error)
	typeID, err := ledger.FundTypeID(db, domain.KindTithe)
	require.NoError(t, err)
	for _, amount := range []int64{20, 50} {
		require.NoError(t, db.Create(&domain.Entry{
			FundID: general.ID, BranchID: branch.ID, FundTypeID: typeID,
			Amount: decimal.NewFromInt(amount), PersonName: "Maria",
			PreviousBalance: decimal.Zero, NewBalance: decimal.NewFromInt(amount),
			TransactionDate: time.Now().UTC(),
		}).Error)
	}
	_, err = svc.CreateFund(context.Background(), branch.ID, "Building Fund", "OTHER")
	require.NoError(t, err)

	views, err := svc.BranchFundsWithLastBalance(context.Background(), branch.ID)
	require.NoError(t, err)
	require.Len(t, views, 2)

	byName := map[string]decimal.Decimal{}
	for _, v := range views {
		byName[v.Name] = v.Balance
	}
	assert.True(t, decimal.NewFromInt(50).Equal(byName[domain.GeneralCashFundName]),
		"newest entry's snapshot wins")
	assert.True(t, byName["Building Fund"].IsZero(), "no entries means zero")
}

func TestReconcile(t *testing.T) {
	svc, db, branch := setupFundsTest(t)
	ctx := context.Background()

	var general domain.Fund
	require.NoError(t, db.Where("branch_id = ? AND is_system = ?", branch.ID, true).First(&general).Error)

	titheID, err := ledger.FundTypeID(db, domain.KindTithe)
	require.NoError(t, err)
	withdrawalID, err := ledger.FundTypeID(db, domain.KindWithdrawal)
	require.NoError(t, err)
	require.NoError(t, db.Create(&domain.Entry{
		FundID: general.ID, BranchID: branch.ID, FundTypeID: titheID,
		Amount: decimal.NewFromInt(80), PersonName: "Maria",
		PreviousBalance: decimal.Zero, NewBalance: decimal.NewFromInt(80),
		TransactionDate: time.Now().UTC(),
	}).Error)
	require.NoError(t, db.Create(&domain.Entry{
		FundID: general.ID, BranchID: branch.ID, FundTypeID: withdrawalID,
		Amount: decimal.NewFromInt(30), PersonName: "Ana",
		PreviousBalance: decimal.NewFromInt(80), NewBalance: decimal.NewFromInt(50),
		TransactionDate: time.Now().UTC(),
	}).Error)

	result, err := svc.Reconcile(ctx, branch.ID, general.ID)
	require.NoError(t, err)
	assert.True(t, result.InSync, "80 - 30 matches the cached 50")
	assert.True(t, result.Drift.IsZero())

	// Poke the cached balance out of line; reconciliation reports the drift.
	require.NoError(t, db.Model(&domain.Fund{}).Where("id = ?", general.ID).
		Update("current_balance", decimal.NewFromInt(60)).Error)
	result, err = svc.Reconcile(ctx, branch.ID, general.ID)
	require.NoError(t, err)
	assert.False(t, result.InSync)
	assert.True(t, decimal.NewFromInt(10).Equal(result.Drift))
	assert.True(t, decimal.NewFromInt(50).Equal(result.Computed))

	var audits int64
	require.NoError(t, db.Model(&domain.AuditEvent{}).
		Where("event_type = ?", domain.AuditReconciliation).Count(&audits).Error)
	assert.Equal(t, int64(2), audits)

	_, err = svc.Reconcile(ctx, branch.ID, 9999)
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
}
