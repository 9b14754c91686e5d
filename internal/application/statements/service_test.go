package statements

import (
	"bytes"
	"context"
	"testing"

	archsvc "treasury-backend/internal/application/archive"
	"treasury-backend/internal/application/ledger"
	"treasury-backend/internal/domain"
	"treasury-backend/internal/infrastructure/database"
	"treasury-backend/internal/pkg/apperr"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

func setupStatementsTest(t *testing.T) (*Service, *gorm.DB, uint, string) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	admin := domain.Branch{Name: "Headquarters", PasswordHash: "x", IsAdmin: true}
	require.NoError(t, db.Create(&admin).Error)
	branch := domain.Branch{Name: "North Congregation", PasswordHash: "x"}
	require.NoError(t, db.Create(&branch).Error)

	typeID, err := ledger.FundTypeID(db, domain.KindGeneralCash)
	require.NoError(t, err)
	require.NoError(t, db.Create(&domain.Fund{
		BranchID: branch.ID, FundTypeID: typeID, Name: domain.GeneralCashFundName,
		CurrentBalance: decimal.NewFromInt(120), IsSystem: true,
	}).Error)

	archives := &archsvc.Service{DB: db}
	run, err := archives.RunMonthlyArchive(context.Background(), admin.ID)
	require.NoError(t, err)
	require.Len(t, run.ArchiveIDs, 1)

	svc := &Service{
		Archives:          archives,
		InstitutionName:   "Evangelical Church Treasury",
		InstitutionDetail: "Main Street 1",
	}
	return svc, db, run.ArchiveIDs[0], run.MonthYear
}

func TestArchiveStatement(t *testing.T) {
	svc, _, archiveID, monthYear := setupStatementsTest(t)

	doc, filename, err := svc.ArchiveStatement(context.Background(), archiveID)
	require.NoError(t, err)
	assert.Equal(t, "statement-"+monthYear+"-north-congregation.xlsx", filename)

	f, err := excelize.OpenReader(bytes.NewReader(doc))
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue("Sheet1", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Evangelical Church Treasury", title)

	branchName, err := f.GetCellValue("Sheet1", "B5")
	require.NoError(t, err)
	assert.Equal(t, "North Congregation", branchName)

	finalBalance, err := f.GetCellValue("Sheet1", "B10")
	require.NoError(t, err)
	assert.Equal(t, "120.00", finalBalance, "money cells use the two-place format")

	fundName, err := f.GetCellValue("Sheet1", "A13")
	require.NoError(t, err)
	assert.Equal(t, domain.GeneralCashFundName, fundName)
}

func TestArchiveStatement_NotFound(t *testing.T) {
	svc, _, _, _ := setupStatementsTest(t)
	_, _, err := svc.ArchiveStatement(context.Background(), 9999)
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
}

func TestBranchBalancesReport(t *testing.T) {
	svc, _, _, monthYear := setupStatementsTest(t)

	doc, filename, err := svc.BranchBalancesReport(context.Background(), monthYear)
	require.NoError(t, err)
	assert.Equal(t, "balances-"+monthYear+".xlsx", filename)

	f, err := excelize.OpenReader(bytes.NewReader(doc))
	require.NoError(t, err)
	defer f.Close()

	name, err := f.GetCellValue("Sheet1", "A6")
	require.NoError(t, err)
	assert.Equal(t, "North Congregation", name)

	total, err := f.GetCellValue("Sheet1", "B6")
	require.NoError(t, err)
	assert.Equal(t, "120.00", total)
}

func TestBranchBalancesReport_RequiresMonth(t *testing.T) {
	svc, _, _, _ := setupStatementsTest(t)
	_, _, err := svc.BranchBalancesReport(context.Background(), "")
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
}
