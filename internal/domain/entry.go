package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SystemPersonName is the sentinel counterparty on synthetic balancing
// entries written by the archiver and the administrative reset.
const SystemPersonName = "System"

// Entry is a single ledger record. Amount is always positive; direction is
// implied by the fund type. PreviousBalance/NewBalance snapshot the fund's
// cached balance around the post and are never recomputed afterwards.
// Entries are never deleted; corrections go through UpdateEntry only.
type Entry struct {
	ID              uint            `gorm:"column:id;primaryKey" json:"id"`
	FundID          uint            `gorm:"column:fund_id;not null;index" json:"fund_id"`
	BranchID        uint            `gorm:"column:branch_id;not null;index" json:"branch_id"`
	FundTypeID      uint            `gorm:"column:fund_type_id;not null" json:"fund_type_id"`
	Amount          decimal.Decimal `gorm:"column:amount;type:decimal(14,2);not null" json:"amount"`
	Description     string          `gorm:"column:description" json:"description"`
	PersonName      string          `gorm:"column:person_name;not null" json:"person_name"`
	PreviousBalance decimal.Decimal `gorm:"column:previous_balance;type:decimal(14,2);not null" json:"previous_balance"`
	NewBalance      decimal.Decimal `gorm:"column:new_balance;type:decimal(14,2);not null" json:"new_balance"`
	TransactionDate time.Time       `gorm:"column:transaction_date;not null;index" json:"transaction_date"`

	Fund     *Fund     `gorm:"foreignKey:FundID" json:"-"`
	Branch   *Branch   `gorm:"foreignKey:BranchID" json:"-"`
	FundType *FundType `gorm:"foreignKey:FundTypeID" json:"-"`
}

func (Entry) TableName() string {
	return "entries"
}
