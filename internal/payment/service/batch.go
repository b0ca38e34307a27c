package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/payrollrecon/internal/audit/domain"
	"github.com/smallbiznis/payrollrecon/internal/observability/tracing"
	paymentdomain "github.com/smallbiznis/payrollrecon/internal/payment/domain"
	payrolldomain "github.com/smallbiznis/payrollrecon/internal/payroll/domain"
	whiteglovedomain "github.com/smallbiznis/payrollrecon/internal/whiteglove/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

func (s *Service) LoadBatch(ctx context.Context, batchID snowflake.ID) (*paymentdomain.BatchView, error) {
	ctx, span := tracing.Start(ctx, "payment.LoadBatch", attribute.String("batch_id", batchID.String()))
	view, err := s.loadBatch(ctx, batchID)
	tracing.End(span, err)
	return view, err
}

func (s *Service) loadBatch(ctx context.Context, batchID snowflake.ID) (*paymentdomain.BatchView, error) {
	batch, err := s.payrollRepo.FindBatch(ctx, s.db, batchID)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, payrolldomain.ErrBatchNotFound
	}
	lines, err := s.payrollRepo.ListLines(ctx, s.db, batchID)
	if err != nil {
		return nil, err
	}

	var ids []snowflake.ID
	for _, line := range lines {
		ids = append(ids, line.EntryIDs()...)
	}
	accounts, err := s.loadAccounts(ctx, ids)
	if err != nil {
		return nil, err
	}

	if err := s.reconcile(ctx, batchID, lines, accounts); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	threshold := s.rules.Get().OverdueThresholdDays
	view := &paymentdomain.BatchView{Batch: *batch, Lines: make([]paymentdomain.LineView, 0, len(lines))}
	overdue := map[snowflake.ID]struct{}{}
	var frontendPaid, backendPaid int
	for _, line := range lines {
		lv := s.lineView(line, accounts, now, threshold)
		for _, av := range lv.Accounts {
			if av.Backend.State == paymentdomain.StateOverdue {
				overdue[av.Entry.ID] = struct{}{}
			}
		}
		if line.FrontendIsPaid {
			frontendPaid++
		}
		if line.BackendIsPaid {
			backendPaid++
		}
		view.Lines = append(view.Lines, lv)
	}
	view.FrontendPaidPercentage = paymentdomain.PaidPercentage(frontendPaid, len(lines))
	view.BackendPaidPercentage = paymentdomain.PaidPercentage(backendPaid, len(lines))
	view.OverdueAccounts = len(overdue)
	return view, nil
}

// reconcile marks lines paid when every referenced account is paid. It never
// clears a line flag.
func (s *Service) reconcile(ctx context.Context, batchID snowflake.ID, lines []payrolldomain.Line, accounts map[snowflake.ID]whiteglovedomain.Entry) error {
	for _, dim := range paymentdomain.Dimensions {
		repaired := 0
		for i := range lines {
			if dim.LinePaid(lines[i]) || !dim.AllPaid(lines[i], accounts) {
				continue
			}
			if err := s.payrollRepo.SetLinePaid(ctx, s.db, lines[i].ID, dim.LineColumn(), true); err != nil {
				return err
			}
			dim.SetLinePaid(&lines[i], true)
			repaired++
		}
		if repaired > 0 {
			s.metrics.RecordReconcileRepairs(dim.String(), repaired)
			s.log.Info("line paid flags reconciled",
				zap.String("dimension", dim.String()),
				zap.Int("lines", repaired),
			)
			s.recordAudit(ctx, auditdomain.ActionLinesReconciled, "batch", batchID, map[string]any{
				"dimension": dim.String(),
				"lines":     repaired,
			})
		}
	}
	return nil
}
