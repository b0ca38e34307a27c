package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	payrolldomain "github.com/smallbiznis/payrollrecon/internal/payroll/domain"
	whiteglovedomain "github.com/smallbiznis/payrollrecon/internal/whiteglove/domain"
)

type Service interface {
	// ToggleAccountPaid flips one account and re-derives the line flag from all its accounts.
	ToggleAccountPaid(ctx context.Context, lineID, accountID snowflake.ID, dim Dimension) (*LineState, error)
	// ToggleLinePaid flips the line flag and forces every referenced account to match.
	ToggleLinePaid(ctx context.Context, lineID snowflake.ID, dim Dimension) (*LineState, error)
	// LoadBatch returns status views after repairing lines whose accounts are all paid.
	LoadBatch(ctx context.Context, batchID snowflake.ID) (*BatchView, error)
}

type State string

const (
	StatePaid    State = "paid"
	StateUnpaid  State = "unpaid"
	StateOverdue State = "overdue"
)

type Status struct {
	State       State `json:"state"`
	OverdueDays int   `json:"overdue_days,omitempty"`
}

type LineState struct {
	Line     payrolldomain.Line       `json:"line"`
	Accounts []whiteglovedomain.Entry `json:"accounts"`
}

type AccountView struct {
	Entry              whiteglovedomain.Entry `json:"entry"`
	PersonalCommission decimal.Decimal        `json:"personal_commission"`
	Frontend           Status                 `json:"frontend"`
	Backend            Status                 `json:"backend"`
}

type LineView struct {
	Line     payrolldomain.Line `json:"line"`
	Accounts []AccountView      `json:"accounts"`
	Frontend Status             `json:"frontend"`
	Backend  Status             `json:"backend"`
}

type BatchView struct {
	Batch                  payrolldomain.Batch `json:"batch"`
	Lines                  []LineView          `json:"lines"`
	FrontendPaidPercentage decimal.Decimal     `json:"frontend_paid_percentage"`
	BackendPaidPercentage  decimal.Decimal     `json:"backend_paid_percentage"`
	OverdueAccounts        int                 `json:"overdue_accounts"`
}

var (
	ErrInvalidDimension = errors.New("invalid_dimension")
	ErrAccountNotInLine = errors.New("account_not_in_line")
	ErrAccountNotFound  = errors.New("account_not_found")
)
