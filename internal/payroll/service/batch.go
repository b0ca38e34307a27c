package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	auditdomain "github.com/smallbiznis/payrollrecon/internal/audit/domain"
	"github.com/smallbiznis/payrollrecon/internal/commission"
	payrolldomain "github.com/smallbiznis/payrollrecon/internal/payroll/domain"
	"go.uber.org/zap"
)

func (s *Service) SaveBatch(ctx context.Context, name string, lines []commission.ReportLine) (*payrolldomain.Batch, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, payrolldomain.ErrInvalidBatchName
	}
	if len(lines) == 0 {
		return nil, payrolldomain.ErrEmptyReport
	}
	for _, line := range lines {
		if err := validateLine(line); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	batch := &payrolldomain.Batch{
		ID:        s.genID.Generate(),
		BatchName: name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.InsertBatch(ctx, s.db, batch); err != nil {
		return nil, fmt.Errorf("insert batch: %w", err)
	}

	rows := make([]*payrolldomain.Line, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, &payrolldomain.Line{
			ID:                s.genID.Generate(),
			BatchID:           batch.ID,
			AgentID:           line.AgentID,
			Name:              line.Name,
			Accounts:          line.Accounts,
			PersonalTotal:     line.PersonalTotal,
			ManagerTotal:      line.ManagerTotal,
			GrandTotal:        line.GrandTotal,
			UpfrontValue:      line.UpfrontValue,
			UpfrontPercentage: line.UpfrontPercentage,
			BackendValue:      line.BackendValue,
			BackendPercentage: line.BackendPercentage,
			Details:           line.Details,
			CreatedAt:         now,
			UpdatedAt:         now,
		})
	}
	if err := s.repo.InsertLines(ctx, s.db, rows); err != nil {
		s.log.Error("batch lines not saved; batch row kept",
			zap.String("batch_id", batch.ID.String()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("insert batch lines: %w", err)
	}

	s.metrics.RecordBatchSaved()
	s.log.Info("batch saved",
		zap.String("batch_id", batch.ID.String()),
		zap.String("batch_name", batch.BatchName),
		zap.Int("lines", len(rows)),
	)
	s.recordAudit(ctx, auditdomain.ActionBatchSaved, "batch", batch.ID, map[string]any{
		"batch_name": batch.BatchName,
		"lines":      len(rows),
	})
	return batch, nil
}

// validateLine rejects lines whose accounts or totals disagree with their details.
func validateLine(line commission.ReportLine) error {
	if line.AgentID == 0 || strings.TrimSpace(line.Name) == "" {
		return fmt.Errorf("%w: missing agent", payrolldomain.ErrInvalidReportLine)
	}
	if line.Accounts <= 0 || line.Accounts != len(line.Details) {
		return fmt.Errorf("%w: agent %s has %d accounts and %d details",
			payrolldomain.ErrInvalidReportLine, line.AgentID, line.Accounts, len(line.Details))
	}
	sum := decimal.Zero
	for _, d := range line.Details {
		if d.WhiteGloveEntryID == 0 {
			return fmt.Errorf("%w: agent %s has a detail without an entry", payrolldomain.ErrInvalidReportLine, line.AgentID)
		}
		sum = sum.Add(d.PersonalCommission)
	}
	if !sum.Equal(line.PersonalTotal) {
		return fmt.Errorf("%w: agent %s personal total %s does not match details %s",
			payrolldomain.ErrInvalidReportLine, line.AgentID, line.PersonalTotal, sum)
	}
	return nil
}

func (s *Service) RenameBatch(ctx context.Context, id snowflake.ID, name string) (*payrolldomain.Batch, error) {
	batch, err := s.GetBatch(ctx, id)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return batch, nil
	}
	if err := s.repo.RenameBatch(ctx, s.db, id, name); err != nil {
		return nil, fmt.Errorf("rename batch: %w", err)
	}
	s.recordAudit(ctx, auditdomain.ActionBatchRenamed, "batch", id, map[string]any{
		"from": batch.BatchName,
		"to":   name,
	})
	return s.GetBatch(ctx, id)
}

func (s *Service) DeleteBatch(ctx context.Context, id snowflake.ID) error {
	batch, err := s.GetBatch(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteLines(ctx, s.db, id); err != nil {
		return fmt.Errorf("delete batch lines: %w", err)
	}
	if err := s.repo.DeleteBatch(ctx, s.db, id); err != nil {
		return fmt.Errorf("delete batch: %w", err)
	}
	s.log.Info("batch deleted", zap.String("batch_id", id.String()))
	s.recordAudit(ctx, auditdomain.ActionBatchDeleted, "batch", id, map[string]any{
		"batch_name": batch.BatchName,
	})
	return nil
}

func (s *Service) ListBatches(ctx context.Context) ([]payrolldomain.Batch, error) {
	return s.repo.ListBatches(ctx, s.db)
}

func (s *Service) GetBatch(ctx context.Context, id snowflake.ID) (*payrolldomain.Batch, error) {
	batch, err := s.repo.FindBatch(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, payrolldomain.ErrBatchNotFound
	}
	return batch, nil
}

func (s *Service) ListLines(ctx context.Context, batchID snowflake.ID) ([]payrolldomain.Line, error) {
	if _, err := s.GetBatch(ctx, batchID); err != nil {
		return nil, err
	}
	return s.repo.ListLines(ctx, s.db, batchID)
}

func (s *Service) CountLines(ctx context.Context, batchID snowflake.ID) (int64, error) {
	return s.repo.CountLines(ctx, s.db, batchID)
}
