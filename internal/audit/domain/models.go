package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// AuditLog records one operator-visible change to payroll state.
type AuditLog struct {
	ID         snowflake.ID      `json:"id" gorm:"primaryKey"`
	Action     string            `json:"action" gorm:"type:varchar(64);not null;index"`
	TargetType string            `json:"target_type" gorm:"type:varchar(64);not null;index:ix_audit_logs_target"`
	TargetID   *string           `json:"target_id,omitempty" gorm:"type:varchar(64);index:ix_audit_logs_target"`
	RequestID  *string           `json:"request_id,omitempty" gorm:"type:text"`
	Metadata   datatypes.JSONMap `json:"metadata,omitempty"`
	CreatedAt  time.Time         `json:"created_at" gorm:"not null;index"`
}

func (AuditLog) TableName() string { return "audit_logs" }

const (
	ActionBatchSaved         = "payroll.batch_saved"
	ActionBatchRenamed       = "payroll.batch_renamed"
	ActionBatchDeleted       = "payroll.batch_deleted"
	ActionLinePaidToggled    = "payment.line_toggled"
	ActionAccountPaidToggled = "payment.account_toggled"
	ActionLinesReconciled    = "payment.lines_reconciled"
	ActionAgentOnboarded     = "agent.onboarded"
)
