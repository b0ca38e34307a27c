package service

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/payrollrecon/internal/audit/domain"
	"github.com/smallbiznis/payrollrecon/internal/clock"
	"github.com/smallbiznis/payrollrecon/internal/config"
	"github.com/smallbiznis/payrollrecon/internal/observability/metrics"
	"github.com/smallbiznis/payrollrecon/internal/observability/tracing"
	paymentdomain "github.com/smallbiznis/payrollrecon/internal/payment/domain"
	payrolldomain "github.com/smallbiznis/payrollrecon/internal/payroll/domain"
	whiteglovedomain "github.com/smallbiznis/payrollrecon/internal/whiteglove/domain"
	"go.opentelemetry.io/otel/attribute"
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
	Metrics        *metrics.Metrics    `optional:"true"`
	Audit          auditdomain.Service `optional:"true"`
}

type Service struct {
	db             *gorm.DB
	log            *zap.Logger
	clock          clock.Clock
	rules          *config.PayrollConfigHolder
	payrollRepo    payrolldomain.Repository
	whiteGloveRepo whiteglovedomain.Repository
	metrics        *metrics.Metrics
	audit          auditdomain.Service
}

func New(p Params) paymentdomain.Service {
	return &Service{
		db:             p.DB,
		log:            p.Log.Named("payment.service"),
		clock:          p.Clock,
		rules:          p.Rules,
		payrollRepo:    p.PayrollRepo,
		whiteGloveRepo: p.WhiteGloveRepo,
		metrics:        p.Metrics,
		audit:          p.Audit,
	}
}

func (s *Service) ToggleAccountPaid(ctx context.Context, lineID, accountID snowflake.ID, dim paymentdomain.Dimension) (*paymentdomain.LineState, error) {
	ctx, span := tracing.Start(ctx, "payment.ToggleAccountPaid",
		attribute.String("line_id", lineID.String()),
		attribute.String("account_id", accountID.String()),
		attribute.String("dimension", dim.String()),
	)
	state, err := s.toggleAccountPaid(ctx, lineID, accountID, dim)
	tracing.End(span, err)
	return state, err
}

func (s *Service) toggleAccountPaid(ctx context.Context, lineID, accountID snowflake.ID, dim paymentdomain.Dimension) (*paymentdomain.LineState, error) {
	line, err := s.loadLine(ctx, lineID)
	if err != nil {
		return nil, err
	}
	if !line.References(accountID) {
		return nil, paymentdomain.ErrAccountNotInLine
	}

	found, err := s.whiteGloveRepo.FindByIDs(ctx, s.db, []snowflake.ID{accountID})
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}
	if len(found) == 0 {
		return nil, paymentdomain.ErrAccountNotFound
	}
	paid := !dim.AccountPaid(found[0])
	if err := s.whiteGloveRepo.SetPaid(ctx, s.db, []snowflake.ID{accountID}, dim.AccountColumn(), paid); err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}

	accounts, err := s.loadAccounts(ctx, line.EntryIDs())
	if err != nil {
		return nil, err
	}
	allPaid := dim.AllPaid(*line, accounts)
	if allPaid != dim.LinePaid(*line) {
		if err := s.payrollRepo.SetLinePaid(ctx, s.db, line.ID, dim.LineColumn(), allPaid); err != nil {
			return nil, fmt.Errorf("update line: %w", err)
		}
		dim.SetLinePaid(line, allPaid)
	}

	s.metrics.RecordPaymentToggle(dim.String(), "account")
	s.log.Info("account payment toggled",
		zap.String("line_id", line.ID.String()),
		zap.String("account_id", accountID.String()),
		zap.String("dimension", dim.String()),
		zap.Bool("paid", paid),
		zap.Bool("line_paid", dim.LinePaid(*line)),
	)
	s.recordAudit(ctx, auditdomain.ActionAccountPaidToggled, "white_glove_entry", accountID, map[string]any{
		"line_id":   line.ID.String(),
		"dimension": dim.String(),
		"paid":      paid,
		"line_paid": dim.LinePaid(*line),
	})
	return lineState(*line, accounts), nil
}

func (s *Service) ToggleLinePaid(ctx context.Context, lineID snowflake.ID, dim paymentdomain.Dimension) (*paymentdomain.LineState, error) {
	ctx, span := tracing.Start(ctx, "payment.ToggleLinePaid",
		attribute.String("line_id", lineID.String()),
		attribute.String("dimension", dim.String()),
	)
	state, err := s.toggleLinePaid(ctx, lineID, dim)
	tracing.End(span, err)
	return state, err
}

func (s *Service) toggleLinePaid(ctx context.Context, lineID snowflake.ID, dim paymentdomain.Dimension) (*paymentdomain.LineState, error) {
	line, err := s.loadLine(ctx, lineID)
	if err != nil {
		return nil, err
	}

	paid := !dim.LinePaid(*line)
	ids := line.EntryIDs()
	if err := s.whiteGloveRepo.SetPaid(ctx, s.db, ids, dim.AccountColumn(), paid); err != nil {
		return nil, fmt.Errorf("update accounts: %w", err)
	}
	if err := s.payrollRepo.SetLinePaid(ctx, s.db, line.ID, dim.LineColumn(), paid); err != nil {
		return nil, fmt.Errorf("update line: %w", err)
	}
	dim.SetLinePaid(line, paid)

	accounts, err := s.loadAccounts(ctx, ids)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordPaymentToggle(dim.String(), "line")
	s.log.Info("line payment toggled",
		zap.String("line_id", line.ID.String()),
		zap.String("dimension", dim.String()),
		zap.Bool("paid", paid),
		zap.Int("accounts", len(ids)),
	)
	s.recordAudit(ctx, auditdomain.ActionLinePaidToggled, "report_line", line.ID, map[string]any{
		"dimension": dim.String(),
		"paid":      paid,
		"accounts":  len(ids),
	})
	return lineState(*line, accounts), nil
}

// recordAudit writes an audit entry when an audit service is wired. Failures
// are logged by the audit service and never fail the caller.
func (s *Service) recordAudit(ctx context.Context, action, targetType string, targetID snowflake.ID, metadata map[string]any) {
	if s.audit == nil {
		return
	}
	id := targetID.String()
	_ = s.audit.AuditLog(ctx, action, targetType, &id, metadata)
}

func (s *Service) loadLine(ctx context.Context, id snowflake.ID) (*payrolldomain.Line, error) {
	line, err := s.payrollRepo.FindLine(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if line == nil {
		return nil, payrolldomain.ErrLineNotFound
	}
	return line, nil
}

func (s *Service) loadAccounts(ctx context.Context, ids []snowflake.ID) (map[snowflake.ID]whiteglovedomain.Entry, error) {
	entries, err := s.whiteGloveRepo.FindByIDs(ctx, s.db, ids)
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	accounts := make(map[snowflake.ID]whiteglovedomain.Entry, len(entries))
	for _, e := range entries {
		accounts[e.ID] = e
	}
	return accounts, nil
}

func lineState(line payrolldomain.Line, accounts map[snowflake.ID]whiteglovedomain.Entry) *paymentdomain.LineState {
	state := &paymentdomain.LineState{Line: line, Accounts: []whiteglovedomain.Entry{}}
	for _, id := range line.EntryIDs() {
		if e, ok := accounts[id]; ok {
			state.Accounts = append(state.Accounts, e)
		}
	}
	return state
}
