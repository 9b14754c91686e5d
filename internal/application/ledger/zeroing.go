package ledger

import (
	"time"

	"treasury-backend/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ZeroResult describes one synthetic balancing entry posted while zeroing
// a fund.
type ZeroResult struct {
	FundID   uint             `json:"fund_id"`
	FundName string           `json:"fund_name"`
	Kind     domain.EntryKind `json:"kind"`
	Amount   decimal.Decimal  `json:"amount"`
}

// ZeroFundsTx posts one balancing entry per non-zero fund of the branch
// (withdrawal when positive, deposit when negative, sentinel person name)
// and forces each cached balance to exactly zero. Funds already at zero are
// skipped. Runs inside the caller's transaction and follows the same
// previous/new balance snapshot discipline as PostEntry.
func ZeroFundsTx(tx *gorm.DB, branchID uint, at time.Time, description string) ([]ZeroResult, error) {
	var funds []domain.Fund
	if err := lockForUpdate(tx).Where("branch_id = ?", branchID).Find(&funds).Error; err != nil {
		return nil, err
	}

	results := make([]ZeroResult, 0, len(funds))
	for _, fund := range funds {
		if fund.CurrentBalance.IsZero() {
			continue
		}

		kind := domain.KindWithdrawal
		if fund.CurrentBalance.IsNegative() {
			kind = domain.KindDeposit
		}
		amount := fund.CurrentBalance.Abs()

		typeID, err := FundTypeID(tx, kind)
		if err != nil {
			return nil, err
		}
		entry := domain.Entry{
			FundID:          fund.ID,
			BranchID:        branchID,
			FundTypeID:      typeID,
			Amount:          amount,
			Description:     description,
			PersonName:      domain.SystemPersonName,
			PreviousBalance: fund.CurrentBalance,
			NewBalance:      decimal.Zero,
			TransactionDate: at,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return nil, err
		}
		if err := tx.Model(&domain.Fund{}).Where("id = ?", fund.ID).
			Update("current_balance", decimal.Zero).Error; err != nil {
			return nil, err
		}

		results = append(results, ZeroResult{
			FundID:   fund.ID,
			FundName: fund.Name,
			Kind:     kind,
			Amount:   amount,
		})
	}
	return results, nil
}
