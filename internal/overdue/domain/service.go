package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	paymentdomain "github.com/smallbiznis/payrollrecon/internal/payment/domain"
	payrolldomain "github.com/smallbiznis/payrollrecon/internal/payroll/domain"
)

// Service answers dashboard questions about unpaid backend accounts.
type Service interface {
	GlobalOverdueCount(ctx context.Context) (int64, error)
	BatchOverdueCount(ctx context.Context, batchID snowflake.ID) (int64, error)
	BatchPaidPercentage(ctx context.Context, batchID snowflake.ID, dim paymentdomain.Dimension) (decimal.Decimal, error)
	BatchSummaries(ctx context.Context) ([]BatchSummary, error)
}

type BatchSummary struct {
	Batch                  payrolldomain.Batch `json:"batch"`
	Lines                  int                 `json:"lines"`
	OverdueAccounts        int64               `json:"overdue_accounts"`
	FrontendPaidPercentage decimal.Decimal     `json:"frontend_paid_percentage"`
	BackendPaidPercentage  decimal.Decimal     `json:"backend_paid_percentage"`
}
