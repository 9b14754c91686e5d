package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyArchive is one branch's snapshot for one accounting period
// ("YYYY-MM"). Created only by the monthly archiver, never mutated.
type MonthlyArchive struct {
	ID             uint            `gorm:"column:id;primaryKey" json:"id"`
	BranchID       uint            `gorm:"column:branch_id;not null;index" json:"branch_id"`
	MonthYear      string          `gorm:"column:month_year;type:varchar(7);not null;index" json:"month_year"`
	TotalTithes    decimal.Decimal `gorm:"column:total_tithes;type:decimal(14,2);not null" json:"total_tithes"`
	TotalOfferings decimal.Decimal `gorm:"column:total_offerings;type:decimal(14,2);not null" json:"total_offerings"`
	FinalBalance   decimal.Decimal `gorm:"column:final_balance;type:decimal(14,2);not null" json:"final_balance"`
	ArchivedAt     time.Time       `gorm:"column:archived_at;not null" json:"archived_at"`

	Branch *Branch `gorm:"foreignKey:BranchID" json:"-"`
}

func (MonthlyArchive) TableName() string {
	return "monthly_archives"
}

// MonthlyFundArchive records one fund's balance immediately before and after
// the parent archive's reset. FundName is denormalized so the row stays
// meaningful if the fund is later renamed.
type MonthlyFundArchive struct {
	ID             uint            `gorm:"column:id;primaryKey" json:"id"`
	ArchiveID      uint            `gorm:"column:archive_id;not null;index" json:"archive_id"`
	FundID         uint            `gorm:"column:fund_id;not null" json:"fund_id"`
	FundName       string          `gorm:"column:fund_name;not null" json:"fund_name"`
	InitialBalance decimal.Decimal `gorm:"column:initial_balance;type:decimal(14,2);not null" json:"initial_balance"`
	FinalBalance   decimal.Decimal `gorm:"column:final_balance;type:decimal(14,2);not null" json:"final_balance"`

	Archive *MonthlyArchive `gorm:"foreignKey:ArchiveID" json:"-"`
}

func (MonthlyFundArchive) TableName() string {
	return "monthly_fund_archives"
}
