package service

import (
	"context"
	"fmt"

	"github.com/smallbiznis/payrollrecon/internal/commission"
	"github.com/smallbiznis/payrollrecon/internal/feed"
	"github.com/smallbiznis/payrollrecon/internal/observability/tracing"
	payrolldomain "github.com/smallbiznis/payrollrecon/internal/payroll/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

func (s *Service) Generate(ctx context.Context, installs, whiteGlove []feed.Row) (*payrolldomain.Report, error) {
	ctx, span := tracing.Start(ctx, "payroll.Generate",
		attribute.Int("installs", len(installs)),
		attribute.Int("white_glove", len(whiteGlove)),
	)
	report, err := s.generate(ctx, installs, whiteGlove)
	if err == nil {
		span.SetAttributes(
			attribute.Int("matched", report.Matched),
			attribute.Int("lines", len(report.Lines)),
		)
	}
	tracing.End(span, err)
	return report, err
}

func (s *Service) generate(ctx context.Context, installs, whiteGlove []feed.Row) (*payrolldomain.Report, error) {
	cols := s.rules.Get().Feed.Columns
	matched := feed.Match(installs, whiteGlove, cols.OrderID, cols.OrderNumber)

	ingested, err := s.Ingest(ctx, installs, whiteGlove, matched)
	if err != nil {
		return nil, err
	}

	snap, err := s.resolver.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve reference data: %w", err)
	}

	records := make([]commission.Record, 0, len(matched))
	for _, m := range matched {
		entry, ok := ingested.Entries[m.WhiteGlove.Get(cols.OrderNumber)]
		if !ok {
			continue
		}
		records = append(records, commission.Record{
			AgentIdentifier:   m.WhiteGlove.Get(cols.Agent),
			PlanName:          m.WhiteGlove.Get(cols.Plan),
			WhiteGloveEntryID: entry.ID,
		})
	}

	lines := commission.Aggregate(snap, records)
	s.metrics.RecordReportGenerated()
	s.log.Info("report generated",
		zap.Int("installs", len(installs)),
		zap.Int("white_glove", len(whiteGlove)),
		zap.Int("matched", len(matched)),
		zap.Int("lines", len(lines)),
	)

	return &payrolldomain.Report{
		Matched: len(matched),
		Plans:   ingested.Plans,
		Agents:  ingested.Agents,
		Entries: len(ingested.Entries),
		Lines:   lines,
	}, nil
}
