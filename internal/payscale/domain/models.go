package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// PersonalPayscale sets an agent's per-plan commission and payout split.
type PersonalPayscale struct {
	ID                snowflake.ID    `json:"id" gorm:"primaryKey"`
	Name              string          `json:"name" gorm:"type:text;not null"`
	UpfrontPercentage decimal.Decimal `json:"upfront_percentage" gorm:"type:numeric(5,2);not null;default:0"`
	BackendPercentage decimal.Decimal `json:"backend_percentage" gorm:"type:numeric(5,2);not null;default:0"`
	CreatedAt         time.Time       `json:"created_at" gorm:"not null"`
	UpdatedAt         time.Time       `json:"updated_at" gorm:"not null"`
}

func (PersonalPayscale) TableName() string { return "personal_payscales" }

type PersonalPlanCommission struct {
	ID                 snowflake.ID    `json:"id" gorm:"primaryKey"`
	PersonalPayscaleID snowflake.ID    `json:"personal_payscale_id" gorm:"not null;uniqueIndex:ux_personal_commission,priority:1"`
	PlanID             snowflake.ID    `json:"plan_id" gorm:"not null;uniqueIndex:ux_personal_commission,priority:2"`
	Value              decimal.Decimal `json:"value" gorm:"type:numeric(12,2);not null;default:0"`
}

func (PersonalPlanCommission) TableName() string { return "personal_payscale_plan_commissions" }

type ManagerPayscale struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	Name      string       `json:"name" gorm:"type:text;not null"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time    `json:"updated_at" gorm:"not null"`
}

func (ManagerPayscale) TableName() string { return "manager_payscales" }

type ManagerPlanCommission struct {
	ID                snowflake.ID    `json:"id" gorm:"primaryKey"`
	ManagerPayscaleID snowflake.ID    `json:"manager_payscale_id" gorm:"not null;uniqueIndex:ux_manager_commission,priority:1"`
	PlanID            snowflake.ID    `json:"plan_id" gorm:"not null;uniqueIndex:ux_manager_commission,priority:2"`
	Value             decimal.Decimal `json:"value" gorm:"type:numeric(12,2);not null;default:0"`
}

func (ManagerPlanCommission) TableName() string { return "manager_payscale_plan_commissions" }

// ManagerAgentOverride replaces the manager payscale value for one agent and plan.
type ManagerAgentOverride struct {
	ID        snowflake.ID    `json:"id" gorm:"primaryKey"`
	ManagerID snowflake.ID    `json:"manager_id" gorm:"not null;uniqueIndex:ux_manager_agent_override,priority:1"`
	AgentID   snowflake.ID    `json:"agent_id" gorm:"not null;uniqueIndex:ux_manager_agent_override,priority:2"`
	PlanID    snowflake.ID    `json:"plan_id" gorm:"not null;uniqueIndex:ux_manager_agent_override,priority:3"`
	Value     decimal.Decimal `json:"value" gorm:"type:numeric(12,2);not null"`
}

func (ManagerAgentOverride) TableName() string { return "manager_agent_commissions" }
