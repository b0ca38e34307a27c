package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Agent is a salesperson or manager; Identifier matches the feed's seller info.
type Agent struct {
	ID                 snowflake.ID  `json:"id" gorm:"primaryKey"`
	Identifier         string        `json:"identifier" gorm:"type:varchar(255);not null;uniqueIndex:ux_agents_identifier"`
	Name               string        `json:"name" gorm:"type:text;not null"`
	Email              *string       `json:"email,omitempty" gorm:"type:text"`
	UserID             *string       `json:"user_id,omitempty" gorm:"type:text"`
	IsManager          bool          `json:"is_manager" gorm:"not null;default:false"`
	PersonalPayscaleID *snowflake.ID `json:"personal_payscale_id,omitempty"`
	ManagerPayscaleID  *snowflake.ID `json:"manager_payscale_id,omitempty"`
	CreatedAt          time.Time     `json:"created_at" gorm:"not null"`
	UpdatedAt          time.Time     `json:"updated_at" gorm:"not null"`
}

func (Agent) TableName() string { return "agents" }

// AgentManager is a reporting edge; an agent may have several managers.
type AgentManager struct {
	AgentID   snowflake.ID `json:"agent_id" gorm:"primaryKey;autoIncrement:false"`
	ManagerID snowflake.ID `json:"manager_id" gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null"`
}

func (AgentManager) TableName() string { return "agent_managers" }
