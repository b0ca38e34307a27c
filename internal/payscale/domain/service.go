package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Service interface {
	CreatePersonal(ctx context.Context, req PersonalRequest) (*PersonalPayscaleView, error)
	UpdatePersonal(ctx context.Context, id snowflake.ID, req PersonalRequest) (*PersonalPayscaleView, error)
	ListPersonal(ctx context.Context) ([]PersonalPayscaleView, error)
	DeletePersonal(ctx context.Context, id snowflake.ID) error

	CreateManager(ctx context.Context, req ManagerRequest) (*ManagerPayscaleView, error)
	UpdateManager(ctx context.Context, id snowflake.ID, req ManagerRequest) (*ManagerPayscaleView, error)
	ListManager(ctx context.Context) ([]ManagerPayscaleView, error)
	DeleteManager(ctx context.Context, id snowflake.ID) error

	ListOverrides(ctx context.Context, managerID snowflake.ID) ([]ManagerAgentOverride, error)
	SaveOverrides(ctx context.Context, managerID snowflake.ID, overrides []OverrideInput) ([]ManagerAgentOverride, error)
}

// PersonalRequest carries commission values keyed by plan id.
type PersonalRequest struct {
	Name              string                           `json:"name"`
	UpfrontPercentage decimal.Decimal                  `json:"upfront_percentage"`
	BackendPercentage decimal.Decimal                  `json:"backend_percentage"`
	Commissions       map[snowflake.ID]decimal.Decimal `json:"commissions"`
}

type ManagerRequest struct {
	Name        string                           `json:"name"`
	Commissions map[snowflake.ID]decimal.Decimal `json:"commissions"`
}

type OverrideInput struct {
	AgentID snowflake.ID    `json:"agent_id"`
	PlanID  snowflake.ID    `json:"plan_id"`
	Value   decimal.Decimal `json:"value"`
}

type PlanCommissionView struct {
	PlanID snowflake.ID    `json:"plan_id"`
	Value  decimal.Decimal `json:"value"`
}

type PersonalPayscaleView struct {
	PersonalPayscale
	Commissions []PlanCommissionView `json:"commissions"`
}

type ManagerPayscaleView struct {
	ManagerPayscale
	Commissions []PlanCommissionView `json:"commissions"`
}

var (
	ErrInvalidName       = errors.New("invalid_name")
	ErrInvalidPercentage = errors.New("invalid_percentage")
	ErrInvalidCommission = errors.New("invalid_commission")
	ErrUnknownPlan       = errors.New("unknown_plan")
	ErrPayscaleNotFound  = errors.New("payscale_not_found")
	ErrInvalidManager    = errors.New("invalid_manager")
)
