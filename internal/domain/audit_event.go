package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Audit event types.
const (
	AuditMonthlyArchive = "MONTHLY_ARCHIVE"
	AuditBranchReset    = "BRANCH_RESET"
	AuditReconciliation = "RECONCILIATION"
)

// AuditEvent records an administrative action with a free-form JSON payload
// (archive runs, fund resets, reconciliations).
type AuditEvent struct {
	ID            uint           `gorm:"column:id;primaryKey" json:"id"`
	EventType     string         `gorm:"column:event_type;type:varchar(30);not null" json:"event_type"`
	ActorBranchID *uint          `gorm:"column:actor_branch_id" json:"actor_branch_id"`
	EventData     datatypes.JSON `gorm:"column:event_data;not null" json:"event_data"`
	CreatedAt     time.Time      `json:"created_at"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}
