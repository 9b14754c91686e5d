package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// GeneralCashFundName is the reserved name of the system fund every branch
// owns. Tithes and offerings always post here.
const GeneralCashFundName = "General Cash"

// FundType is immutable reference data naming an EntryKind. Rows are seeded
// lazily the first time a kind is needed.
type FundType struct {
	ID   uint   `gorm:"column:id;primaryKey" json:"id"`
	Name string `gorm:"column:name;not null;uniqueIndex" json:"name"`
}

func (FundType) TableName() string {
	return "fund_types"
}

// Kind returns the enumeration value backing this reference row.
func (ft FundType) Kind() EntryKind {
	k, _ := ParseKind(ft.Name)
	return k
}

// Fund is a named balance bucket ("group") within a branch. CurrentBalance
// is a cache: it must equal the signed sum of entries posted since the
// fund's last reset, and only the ledger service and the archiver touch it.
type Fund struct {
	ID             uint            `gorm:"column:id;primaryKey" json:"id"`
	BranchID       uint            `gorm:"column:branch_id;not null;index" json:"branch_id"`
	FundTypeID     uint            `gorm:"column:fund_type_id;not null" json:"fund_type_id"`
	Name           string          `gorm:"column:name;not null" json:"name"`
	CurrentBalance decimal.Decimal `gorm:"column:current_balance;type:decimal(14,2);not null;default:0" json:"current_balance"`
	IsSystem       bool            `gorm:"column:is_system;not null;default:false" json:"is_system"`
	CreatedAt      time.Time       `json:"created_at"`

	Branch   *Branch   `gorm:"foreignKey:BranchID" json:"-"`
	FundType *FundType `gorm:"foreignKey:FundTypeID" json:"-"`
}

func (Fund) TableName() string {
	return "funds"
}
