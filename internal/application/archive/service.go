package archive

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"treasury-backend/internal/application/ledger"
	"treasury-backend/internal/domain"
	"treasury-backend/internal/pkg/apperr"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Descriptions on synthetic balancing entries.
const (
	zeroingDescription = "Monthly adjustment - zeroing"
	resetDescription   = "Administrative reset"
)

// Service runs the monthly archival cycle and the standalone fund reset.
type Service struct {
	DB    *gorm.DB
	Cache ledger.Invalidator
}

// RunResult reports a completed archive run.
type RunResult struct {
	MonthYear  string `json:"month_year"`
	ArchiveIDs []uint `json:"archive_ids"`
}

// RunMonthlyArchive snapshots and resets every non-admin branch in one
// all-or-nothing transaction. Reference period is the previous calendar
// month. A failure on any branch rolls back the entire run; a partially
// archived fleet is worse than a fully failed run that can be retried.
func (s *Service) RunMonthlyArchive(ctx context.Context, actorBranchID uint) (*RunResult, error) {
	archivedAt := time.Now().UTC()
	monthStart := time.Date(archivedAt.Year(), archivedAt.Month(), 1, 0, 0, 0, 0, time.UTC)
	prevStart := monthStart.AddDate(0, -1, 0)
	monthYear := prevStart.Format("2006-01")

	result := &RunResult{MonthYear: monthYear}
	var branchIDs []uint

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var branches []domain.Branch
		if err := tx.Where("is_admin = ?", false).Order("id").Find(&branches).Error; err != nil {
			return err
		}

		for _, branch := range branches {
			archiveID, err := archiveBranch(tx, branch, monthYear, prevStart, monthStart, archivedAt)
			if err != nil {
				return err
			}
			result.ArchiveIDs = append(result.ArchiveIDs, archiveID)
			branchIDs = append(branchIDs, branch.ID)
		}

		payload, _ := json.Marshal(map[string]interface{}{
			"month_year":  monthYear,
			"archive_ids": result.ArchiveIDs,
			"branches":    len(branches),
		})
		return tx.Create(&domain.AuditEvent{
			EventType:     domain.AuditMonthlyArchive,
			ActorBranchID: &actorBranchID,
			EventData:     datatypes.JSON(payload),
		}).Error
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("month_year", monthYear).Int("archives", len(result.ArchiveIDs)).
		Msg("monthly archive completed")
	s.invalidate(ctx, branchIDs)
	return result, nil
}

// archiveBranch performs steps for one branch: snapshot fund balances,
// total the period's tithes and offerings, insert the archive row and its
// fund rows (parent first, so fund rows carry the archive id from the
// start), then zero every non-zero fund via synthetic balancing entries.
func archiveBranch(tx *gorm.DB, branch domain.Branch, monthYear string, periodStart, periodEnd, archivedAt time.Time) (uint, error) {
	var funds []domain.Fund
	if err := tx.Where("branch_id = ?", branch.ID).Find(&funds).Error; err != nil {
		return 0, err
	}

	finalBalance := decimal.Zero
	for _, fund := range funds {
		finalBalance = finalBalance.Add(fund.CurrentBalance)
	}

	totalTithes, err := sumEntriesByKind(tx, branch.ID, domain.KindTithe, periodStart, periodEnd)
	if err != nil {
		return 0, err
	}
	totalOfferings, err := sumEntriesByKind(tx, branch.ID, domain.KindOffering, periodStart, periodEnd)
	if err != nil {
		return 0, err
	}

	archive := domain.MonthlyArchive{
		BranchID:       branch.ID,
		MonthYear:      monthYear,
		TotalTithes:    totalTithes,
		TotalOfferings: totalOfferings,
		FinalBalance:   finalBalance,
		ArchivedAt:     archivedAt,
	}
	if err := tx.Create(&archive).Error; err != nil {
		return 0, err
	}

	for _, fund := range funds {
		row := domain.MonthlyFundArchive{
			ArchiveID:      archive.ID,
			FundID:         fund.ID,
			FundName:       fund.Name,
			InitialBalance: fund.CurrentBalance,
			FinalBalance:   fund.CurrentBalance,
		}
		if err := tx.Create(&row).Error; err != nil {
			return 0, err
		}
	}

	if _, err := ledger.ZeroFundsTx(tx, branch.ID, archivedAt, zeroingDescription); err != nil {
		return 0, err
	}
	return archive.ID, nil
}

// ResetResult reports a standalone administrative reset.
type ResetResult struct {
	BranchID     uint                       `json:"branch_id"`
	Zeroed       []ledger.ZeroResult        `json:"zeroed"`
	TotalsByKind map[string]decimal.Decimal `json:"totals_by_kind"`
}

// ResetFundsForBranch is the archiver's zeroing step exposed standalone for
// ad-hoc corrections. No MonthlyArchive row is produced.
func (s *Service) ResetFundsForBranch(ctx context.Context, actorBranchID, branchID uint) (*ResetResult, error) {
	result := &ResetResult{BranchID: branchID, TotalsByKind: map[string]decimal.Decimal{}}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var branch domain.Branch
		if err := tx.First(&branch, branchID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("branch %d not found", branchID)
			}
			return err
		}

		zeroed, err := ledger.ZeroFundsTx(tx, branchID, time.Now().UTC(), resetDescription)
		if err != nil {
			return err
		}
		result.Zeroed = zeroed
		for _, z := range zeroed {
			kind := string(z.Kind)
			result.TotalsByKind[kind] = result.TotalsByKind[kind].Add(z.Amount)
		}

		payload, _ := json.Marshal(result)
		return tx.Create(&domain.AuditEvent{
			EventType:     domain.AuditBranchReset,
			ActorBranchID: &actorBranchID,
			EventData:     datatypes.JSON(payload),
		}).Error
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, []uint{branchID})
	return result, nil
}

func (s *Service) invalidate(ctx context.Context, branchIDs []uint) {
	if s.Cache == nil {
		return
	}
	for _, id := range branchIDs {
		s.Cache.InvalidateFunds(ctx, id)
	}
}

// sumEntriesByKind totals entry amounts for one branch and kind inside
// [from, to). Range predicates instead of MONTH()/YEAR() keep the query
// portable across postgres and the sqlite test database.
func sumEntriesByKind(tx *gorm.DB, branchID uint, kind domain.EntryKind, from, to time.Time) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	err := tx.Model(&domain.Entry{}).
		Select("COALESCE(SUM(entries.amount), 0) AS total").
		Joins("JOIN fund_types ON fund_types.id = entries.fund_type_id").
		Where("entries.branch_id = ? AND fund_types.name = ?", branchID, string(kind)).
		Where("entries.transaction_date >= ? AND entries.transaction_date < ?", from, to).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}
