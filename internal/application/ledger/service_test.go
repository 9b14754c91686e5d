package ledger

import (
	"context"
	"testing"
	"time"

	"treasury-backend/internal/domain"
	"treasury-backend/internal/infrastructure/database"
	"treasury-backend/internal/pkg/apperr"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupLedgerTest(t *testing.T) (*Service, *gorm.DB, domain.Branch, domain.Fund, domain.Fund) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	branch := domain.Branch{Name: "North Congregation", PasswordHash: "x"}
	require.NoError(t, db.Create(&branch).Error)

	gcTypeID, err := FundTypeID(db, domain.KindGeneralCash)
	require.NoError(t, err)
	general := domain.Fund{
		BranchID:       branch.ID,
		FundTypeID:     gcTypeID,
		Name:           domain.GeneralCashFundName,
		CurrentBalance: decimal.Zero,
		IsSystem:       true,
	}
	require.NoError(t, db.Create(&general).Error)

	otherTypeID, err := FundTypeID(db, domain.KindOther)
	require.NoError(t, err)
	building := domain.Fund{
		BranchID:       branch.ID,
		FundTypeID:     otherTypeID,
		Name:           "Building Fund",
		CurrentBalance: decimal.Zero,
	}
	require.NoError(t, db.Create(&building).Error)

	return &Service{DB: db}, db, branch, general, building
}

func caller(branch domain.Branch) Caller {
	return Caller{BranchID: branch.ID, IsAdmin: branch.IsAdmin}
}

func fundBalance(t *testing.T, db *gorm.DB, fundID uint) decimal.Decimal {
	t.Helper()
	var fund domain.Fund
	require.NoError(t, db.First(&fund, fundID).Error)
	return fund.CurrentBalance
}

func TestPostEntry_TitheRoutesToGeneralCash(t *testing.T) {
	svc, db, branch, general, building := setupLedgerTest(t)

	// Even with a named fund in the request, tithes land on general cash.
	entry, err := svc.PostEntry(context.Background(), caller(branch), PostEntryInput{
		Kind:       "TITHE",
		Amount:     decimal.NewFromInt(50),
		PersonName: "Maria",
		FundID:     &building.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, general.ID, entry.FundID)
	assert.True(t, entry.PreviousBalance.IsZero())
	assert.True(t, decimal.NewFromInt(50).Equal(entry.NewBalance))
	assert.True(t, decimal.NewFromInt(50).Equal(fundBalance(t, db, general.ID)))
	assert.True(t, fundBalance(t, db, building.ID).IsZero())
}

func TestPostEntry_DepositRequiresFund(t *testing.T) {
	svc, _, branch, _, _ := setupLedgerTest(t)

	_, err := svc.PostEntry(context.Background(), caller(branch), PostEntryInput{
		Kind:       "DEPOSIT",
		Amount:     decimal.NewFromInt(10),
		PersonName: "Joao",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
}

func TestPostEntry_CrossBranchFundRejected(t *testing.T) {
	svc, db, branch, _, building := setupLedgerTest(t)

	other := domain.Branch{Name: "South Congregation", PasswordHash: "x"}
	require.NoError(t, db.Create(&other).Error)

	_, err := svc.PostEntry(context.Background(), caller(other), PostEntryInput{
		Kind:       "DEPOSIT",
		Amount:     decimal.NewFromInt(10),
		PersonName: "Joao",
		FundID:     &building.ID,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeAuthorization, apperr.CodeOf(err))

	// Admins can post against any branch's fund.
	admin := domain.Branch{Name: "Headquarters", PasswordHash: "x", IsAdmin: true}
	require.NoError(t, db.Create(&admin).Error)
	entry, err := svc.PostEntry(context.Background(), caller(admin), PostEntryInput{
		Kind:       "DEPOSIT",
		Amount:     decimal.NewFromInt(10),
		PersonName: "Joao",
		FundID:     &building.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, branch.ID, entry.BranchID, "entry is attributed to the fund's branch")
}

func TestPostEntry_InsufficientBalanceLeavesStateUnchanged(t *testing.T) {
	svc, db, branch, _, building := setupLedgerTest(t)

	_, err := svc.PostEntry(context.Background(), caller(branch), PostEntryInput{
		Kind:       "DEPOSIT",
		Amount:     decimal.NewFromInt(40),
		PersonName: "Ana",
		FundID:     &building.ID,
	})
	require.NoError(t, err)

	_, err = svc.PostEntry(context.Background(), caller(branch), PostEntryInput{
		Kind:       "WITHDRAWAL",
		Amount:     decimal.NewFromInt(100),
		PersonName: "Ana",
		FundID:     &building.ID,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInsufficientBalance, apperr.CodeOf(err))

	// Balance untouched and no withdrawal entry recorded.
	assert.True(t, decimal.NewFromInt(40).Equal(fundBalance(t, db, building.ID)))
	var count int64
	require.NoError(t, db.Model(&domain.Entry{}).Where("fund_id = ?", building.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestPostEntry_ExactWithdrawalToZero(t *testing.T) {
	svc, db, branch, _, building := setupLedgerTest(t)

	_, err := svc.PostEntry(context.Background(), caller(branch), PostEntryInput{
		Kind:       "DEPOSIT",
		Amount:     decimal.NewFromInt(25),
		PersonName: "Ana",
		FundID:     &building.ID,
	})
	require.NoError(t, err)

	entry, err := svc.PostEntry(context.Background(), caller(branch), PostEntryInput{
		Kind:       "WITHDRAWAL",
		Amount:     decimal.NewFromInt(25),
		PersonName: "Ana",
		FundID:     &building.ID,
	})
	require.NoError(t, err)
	assert.True(t, entry.NewBalance.IsZero())
	assert.True(t, fundBalance(t, db, building.ID).IsZero())
}

func TestPostEntry_RoundsAtComputationTime(t *testing.T) {
	svc, db, branch, _, building := setupLedgerTest(t)

	amount, err := decimal.NewFromString("10.005")
	require.NoError(t, err)

	entry, err := svc.PostEntry(context.Background(), caller(branch), PostEntryInput{
		Kind:       "DEPOSIT",
		Amount:     amount,
		PersonName: "Ana",
		FundID:     &building.ID,
	})
	require.NoError(t, err)

	rounded, _ := decimal.NewFromString("10.01")
	assert.True(t, rounded.Equal(entry.Amount), "stored amount is rounded")
	assert.True(t, rounded.Equal(entry.NewBalance), "balance moves by the rounded amount")
	assert.True(t, rounded.Equal(fundBalance(t, db, building.ID)))
}

func TestPostEntry_RejectsNonPositiveAndUnknownKinds(t *testing.T) {
	svc, _, branch, _, building := setupLedgerTest(t)
	ctx := context.Background()

	_, err := svc.PostEntry(ctx, caller(branch), PostEntryInput{
		Kind: "DEPOSIT", Amount: decimal.Zero, PersonName: "Ana", FundID: &building.ID,
	})
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))

	_, err = svc.PostEntry(ctx, caller(branch), PostEntryInput{
		Kind: "DEPOSIT", Amount: decimal.NewFromInt(-5), PersonName: "Ana", FundID: &building.ID,
	})
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))

	_, err = svc.PostEntry(ctx, caller(branch), PostEntryInput{
		Kind: "GENERAL_CASH", Amount: decimal.NewFromInt(5), PersonName: "Ana",
	})
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))

	_, err = svc.PostEntry(ctx, caller(branch), PostEntryInput{
		Kind: "DEPOSIT", Amount: decimal.NewFromInt(5), FundID: &building.ID,
	})
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err), "person name is required")
}

func TestUpdateEntry_AppliesAmountDelta(t *testing.T) {
	svc, db, branch, _, building := setupLedgerTest(t)

	entry, err := svc.PostEntry(context.Background(), caller(branch), PostEntryInput{
		Kind:       "DEPOSIT",
		Amount:     decimal.NewFromInt(200),
		PersonName: "Ana",
		FundID:     &building.ID,
	})
	require.NoError(t, err)

	updated, err := svc.UpdateEntry(context.Background(), entry.ID, decimal.NewFromInt(230), "corrected", "Ana")
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(230).Equal(updated.Amount))
	assert.Equal(t, "corrected", updated.Description)
	assert.True(t, decimal.NewFromInt(230).Equal(fundBalance(t, db, building.ID)),
		"balance moves by the +30 delta")

	// Snapshot pair on the stored entry is not recomputed.
	var stored domain.Entry
	require.NoError(t, db.First(&stored, entry.ID).Error)
	assert.True(t, decimal.NewFromInt(200).Equal(stored.NewBalance))
}

func TestUpdateEntry_NotFound(t *testing.T) {
	svc, _, _, _, _ := setupLedgerTest(t)
	_, err := svc.UpdateEntry(context.Background(), 9999, decimal.NewFromInt(10), "", "Ana")
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
}

func TestPostEntry_SignedSumMatchesBalance(t *testing.T) {
	svc, db, branch, general, building := setupLedgerTest(t)
	ctx := context.Background()

	posts := []PostEntryInput{
		{Kind: "TITHE", Amount: decimal.NewFromInt(100), PersonName: "Maria"},
		{Kind: "OFFERING", Amount: decimal.NewFromInt(35), PersonName: "Pedro"},
		{Kind: "DEPOSIT", Amount: decimal.NewFromInt(80), PersonName: "Ana", FundID: &building.ID},
		{Kind: "WITHDRAWAL", Amount: decimal.NewFromInt(30), PersonName: "Ana", FundID: &building.ID},
	}
	for _, in := range posts {
		_, err := svc.PostEntry(ctx, caller(branch), in)
		require.NoError(t, err)
	}

	for _, fundID := range []uint{general.ID, building.ID} {
		var entries []domain.Entry
		require.NoError(t, db.Where("fund_id = ?", fundID).Order("id").Find(&entries).Error)

		sum := decimal.Zero
		for _, e := range entries {
			var ft domain.FundType
			require.NoError(t, db.First(&ft, e.FundTypeID).Error)
			sum = ft.Kind().Apply(sum, e.Amount)
		}
		assert.True(t, sum.Equal(fundBalance(t, db, fundID)),
			"fund %d: signed entry sum must equal cached balance", fundID)
	}
}

func TestZeroFundsTx_PostsBalancingEntries(t *testing.T) {
	svc, db, branch, general, building := setupLedgerTest(t)
	ctx := context.Background()

	_, err := svc.PostEntry(ctx, caller(branch), PostEntryInput{
		Kind: "TITHE", Amount: decimal.NewFromInt(50), PersonName: "Maria",
	})
	require.NoError(t, err)
	// Force a negative balance directly; PostEntry cannot produce one.
	require.NoError(t, db.Model(&domain.Fund{}).Where("id = ?", building.ID).
		Update("current_balance", decimal.NewFromInt(-30)).Error)

	var results []ZeroResult
	err = db.Transaction(func(tx *gorm.DB) error {
		var zerr error
		results, zerr = ZeroFundsTx(tx, branch.ID, time.Now().UTC(), "zeroing")
		return zerr
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	byFund := map[uint]ZeroResult{}
	for _, r := range results {
		byFund[r.FundID] = r
	}
	assert.Equal(t, domain.KindWithdrawal, byFund[general.ID].Kind)
	assert.True(t, decimal.NewFromInt(50).Equal(byFund[general.ID].Amount))
	assert.Equal(t, domain.KindDeposit, byFund[building.ID].Kind)
	assert.True(t, decimal.NewFromInt(30).Equal(byFund[building.ID].Amount))

	assert.True(t, fundBalance(t, db, general.ID).IsZero())
	assert.True(t, fundBalance(t, db, building.ID).IsZero())

	// Balancing entries carry the sentinel person name.
	var sentinels int64
	require.NoError(t, db.Model(&domain.Entry{}).
		Where("person_name = ?", domain.SystemPersonName).Count(&sentinels).Error)
	assert.Equal(t, int64(2), sentinels)
}

func TestZeroFundsTx_SkipsZeroFunds(t *testing.T) {
	_, db, branch, _, _ := setupLedgerTest(t)

	var results []ZeroResult
	err := db.Transaction(func(tx *gorm.DB) error {
		var zerr error
		results, zerr = ZeroFundsTx(tx, branch.ID, time.Now().UTC(), "zeroing")
		return zerr
	})
	require.NoError(t, err)
	assert.Empty(t, results)

	var count int64
	require.NoError(t, db.Model(&domain.Entry{}).Count(&count).Error)
	assert.Equal(t, int64(0), count, "no balancing entries for funds already at zero")
}
