package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Agent, error)
	Update(ctx context.Context, id snowflake.ID, req UpdateRequest) (*Agent, error)
	Get(ctx context.Context, id snowflake.ID) (*Agent, error)
	List(ctx context.Context) ([]Agent, error)
	Delete(ctx context.Context, id snowflake.ID) error
	AssignedAgents(ctx context.Context, managerID snowflake.ID) ([]Agent, error)
	ManagersUsingPayscale(ctx context.Context, payscaleID snowflake.ID) ([]Agent, error)
	Onboard(ctx context.Context, req OnboardRequest) (*OnboardResponse, error)
}

// UserProvisioner creates the login account backing an onboarded agent.
type UserProvisioner interface {
	CreateUserAccount(ctx context.Context, email, name string) (string, error)
}

type CreateRequest struct {
	Identifier         string        `json:"identifier"`
	Name               string        `json:"name"`
	Email              *string       `json:"email,omitempty"`
	IsManager          bool          `json:"is_manager"`
	PersonalPayscaleID *snowflake.ID `json:"personal_payscale_id,omitempty"`
	ManagerPayscaleID  *snowflake.ID `json:"manager_payscale_id,omitempty"`
}

// UpdateRequest replaces the agent's attributes; AssignedAgentIDs applies to managers only.
type UpdateRequest struct {
	CreateRequest
	AssignedAgentIDs []snowflake.ID `json:"assigned_agent_ids"`
}

type OnboardRequest struct {
	Email              string                           `json:"email"`
	Name               string                           `json:"name"`
	Identifier         string                           `json:"identifier"`
	IsManager          bool                             `json:"is_manager"`
	PersonalPayscaleID *snowflake.ID                    `json:"personal_payscale_id,omitempty"`
	ManagerPayscaleID  *snowflake.ID                    `json:"manager_payscale_id,omitempty"`
	ManagerIDs         []snowflake.ID                   `json:"manager_ids"`
	AssignedAgentIDs   []snowflake.ID                   `json:"assigned_agent_ids"`
	CustomCommissions  map[snowflake.ID]decimal.Decimal `json:"custom_commissions"`
	UpfrontPercentage  decimal.Decimal                  `json:"upfront_percentage"`
	BackendPercentage  decimal.Decimal                  `json:"backend_percentage"`
}

type OnboardResponse struct {
	Agent  Agent  `json:"agent"`
	UserID string `json:"user_id"`
}

var (
	ErrInvalidIdentifier = errors.New("invalid_identifier")
	ErrInvalidName       = errors.New("invalid_name")
	ErrInvalidEmail      = errors.New("invalid_email")
	ErrAgentExists       = errors.New("agent_exists")
	ErrAgentNotFound     = errors.New("agent_not_found")
	ErrUnknownAgent      = errors.New("unknown_agent")
	ErrUnknownPayscale   = errors.New("unknown_payscale")
)
