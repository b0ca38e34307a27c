package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/payrollrecon/internal/clock"
	"github.com/smallbiznis/payrollrecon/internal/config"
	overduedomain "github.com/smallbiznis/payrollrecon/internal/overdue/domain"
	paymentdomain "github.com/smallbiznis/payrollrecon/internal/payment/domain"
	payrolldomain "github.com/smallbiznis/payrollrecon/internal/payroll/domain"
	whiteglovedomain "github.com/smallbiznis/payrollrecon/internal/whiteglove/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB             *gorm.DB
	Log            *zap.Logger
	Clock          clock.Clock
	Rules          *config.PayrollConfigHolder
	PayrollRepo    payrolldomain.Repository
	WhiteGloveRepo whiteglovedomain.Repository
}

type Service struct {
	db             *gorm.DB
	log            *zap.Logger
	clock          clock.Clock
	rules          *config.PayrollConfigHolder
	payrollRepo    payrolldomain.Repository
	whiteGloveRepo whiteglovedomain.Repository
}

func New(p Params) overduedomain.Service {
	return &Service{
		db:             p.DB,
		log:            p.Log.Named("overdue.service"),
		clock:          p.Clock,
		rules:          p.Rules,
		payrollRepo:    p.PayrollRepo,
		whiteGloveRepo: p.WhiteGloveRepo,
	}
}

func (s *Service) cutoff() time.Time {
	return paymentdomain.OverdueCutoff(s.clock.Now(), s.rules.Get().OverdueThresholdDays)
}

func (s *Service) GlobalOverdueCount(ctx context.Context) (int64, error) {
	return s.whiteGloveRepo.CountBackendOverdue(ctx, s.db, s.cutoff(), nil)
}

func (s *Service) BatchOverdueCount(ctx context.Context, batchID snowflake.ID) (int64, error) {
	lines, err := s.payrollRepo.ListLines(ctx, s.db, batchID)
	if err != nil {
		return 0, err
	}
	return s.countOverdue(ctx, lines, s.cutoff())
}

func (s *Service) BatchPaidPercentage(ctx context.Context, batchID snowflake.ID, dim paymentdomain.Dimension) (decimal.Decimal, error) {
	lines, err := s.payrollRepo.ListLines(ctx, s.db, batchID)
	if err != nil {
		return decimal.Zero, err
	}
	return paidPercentage(lines, dim), nil
}

// BatchSummaries walks batches newest first, one at a time.
func (s *Service) BatchSummaries(ctx context.Context) ([]overduedomain.BatchSummary, error) {
	batches, err := s.payrollRepo.ListBatches(ctx, s.db)
	if err != nil {
		return nil, err
	}
	cutoff := s.cutoff()
	summaries := make([]overduedomain.BatchSummary, 0, len(batches))
	for _, batch := range batches {
		lines, err := s.payrollRepo.ListLines(ctx, s.db, batch.ID)
		if err != nil {
			return nil, fmt.Errorf("load lines for batch %s: %w", batch.ID, err)
		}
		count, err := s.countOverdue(ctx, lines, cutoff)
		if err != nil {
			return nil, fmt.Errorf("count overdue for batch %s: %w", batch.ID, err)
		}
		summaries = append(summaries, overduedomain.BatchSummary{
			Batch:                  batch,
			Lines:                  len(lines),
			OverdueAccounts:        count,
			FrontendPaidPercentage: paidPercentage(lines, paymentdomain.DimensionFrontend),
			BackendPaidPercentage:  paidPercentage(lines, paymentdomain.DimensionBackend),
		})
	}
	return summaries, nil
}

func (s *Service) countOverdue(ctx context.Context, lines []payrolldomain.Line, cutoff time.Time) (int64, error) {
	seen := map[snowflake.ID]struct{}{}
	ids := []snowflake.ID{}
	for _, line := range lines {
		for _, id := range line.EntryIDs() {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}
	return s.whiteGloveRepo.CountBackendOverdue(ctx, s.db, cutoff, ids)
}

func paidPercentage(lines []payrolldomain.Line, dim paymentdomain.Dimension) decimal.Decimal {
	paid := 0
	for _, line := range lines {
		if dim.LinePaid(line) {
			paid++
		}
	}
	return paymentdomain.PaidPercentage(paid, len(lines))
}
