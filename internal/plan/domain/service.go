package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Plan, error)
	List(ctx context.Context) ([]Plan, error)
	Get(ctx context.Context, id snowflake.ID) (*Plan, error)
	Update(ctx context.Context, req UpdateRequest) (*Plan, error)
	Delete(ctx context.Context, id snowflake.ID) error
}

type CreateRequest struct {
	Name             string          `json:"name"`
	CommissionAmount decimal.Decimal `json:"commission_amount"`
}

// UpdateRequest renames a plan and/or edits its commission amount.
type UpdateRequest struct {
	ID               snowflake.ID     `json:"-"`
	Name             *string          `json:"name,omitempty"`
	CommissionAmount *decimal.Decimal `json:"commission_amount,omitempty"`
}

var (
	ErrInvalidName             = errors.New("invalid_name")
	ErrInvalidCommissionAmount = errors.New("invalid_commission_amount")
	ErrPlanExists              = errors.New("plan_exists")
	ErrPlanNotFound            = errors.New("plan_not_found")
)
