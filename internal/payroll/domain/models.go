package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/payrollrecon/internal/commission"
	"gorm.io/datatypes"
)

// Batch is a named snapshot of a generated report.
type Batch struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	BatchName string       `json:"batch_name" gorm:"type:text;not null"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null;index"`
	UpdatedAt time.Time    `json:"updated_at" gorm:"not null"`
}

func (Batch) TableName() string { return "payroll_report_batches" }

// Line is one agent's row in a batch. Details reference the white glove
// entries that make up the line's accounts.
type Line struct {
	ID                snowflake.ID                               `json:"id" gorm:"primaryKey"`
	BatchID           snowflake.ID                               `json:"batch_id" gorm:"not null;index"`
	AgentID           snowflake.ID                               `json:"agent_id" gorm:"not null"`
	Name              string                                     `json:"name" gorm:"type:text;not null"`
	Accounts          int                                        `json:"accounts" gorm:"not null"`
	PersonalTotal     decimal.Decimal                            `json:"personal_total" gorm:"type:numeric(12,2);not null"`
	ManagerTotal      decimal.Decimal                            `json:"manager_total" gorm:"type:numeric(12,2);not null"`
	GrandTotal        decimal.Decimal                            `json:"grand_total" gorm:"type:numeric(12,2);not null"`
	UpfrontValue      *decimal.Decimal                           `json:"upfront_value" gorm:"type:numeric(12,2)"`
	UpfrontPercentage *decimal.Decimal                           `json:"upfront_percentage" gorm:"type:numeric(5,2)"`
	BackendValue      *decimal.Decimal                           `json:"backend_value" gorm:"type:numeric(12,2)"`
	BackendPercentage *decimal.Decimal                           `json:"backend_percentage" gorm:"type:numeric(5,2)"`
	FrontendIsPaid    bool                                       `json:"frontend_is_paid" gorm:"not null;default:false"`
	BackendIsPaid     bool                                       `json:"backend_is_paid" gorm:"not null;default:false"`
	Details           datatypes.JSONSlice[commission.LineDetail] `json:"details"`
	CreatedAt         time.Time                                  `json:"created_at" gorm:"not null"`
	UpdatedAt         time.Time                                  `json:"updated_at" gorm:"not null"`
}

func (Line) TableName() string { return "payroll_report_lines" }

// EntryIDs lists the referenced white glove entries without duplicates, in detail order.
func (l Line) EntryIDs() []snowflake.ID {
	seen := make(map[snowflake.ID]struct{}, len(l.Details))
	ids := make([]snowflake.ID, 0, len(l.Details))
	for _, d := range l.Details {
		if _, ok := seen[d.WhiteGloveEntryID]; ok {
			continue
		}
		seen[d.WhiteGloveEntryID] = struct{}{}
		ids = append(ids, d.WhiteGloveEntryID)
	}
	return ids
}

// References reports whether entryID is one of the line's accounts.
func (l Line) References(entryID snowflake.ID) bool {
	for _, d := range l.Details {
		if d.WhiteGloveEntryID == entryID {
			return true
		}
	}
	return false
}
