package domain

import "time"

// Branch is a congregation: the organizational unit that owns funds.
// The administrative branch never owns ledger state; the archiver skips it.
type Branch struct {
	ID           uint      `gorm:"column:id;primaryKey" json:"id"`
	Name         string    `gorm:"column:name;not null;uniqueIndex" json:"name"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	IsAdmin      bool      `gorm:"column:is_admin;not null;default:false" json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

func (Branch) TableName() string {
	return "branches"
}
