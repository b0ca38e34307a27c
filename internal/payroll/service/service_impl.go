package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	agentdomain "github.com/smallbiznis/payrollrecon/internal/agent/domain"
	auditdomain "github.com/smallbiznis/payrollrecon/internal/audit/domain"
	"github.com/smallbiznis/payrollrecon/internal/config"
	"github.com/smallbiznis/payrollrecon/internal/observability/metrics"
	payrolldomain "github.com/smallbiznis/payrollrecon/internal/payroll/domain"
	plandomain "github.com/smallbiznis/payrollrecon/internal/plan/domain"
	"github.com/smallbiznis/payrollrecon/internal/reference"
	whiteglovedomain "github.com/smallbiznis/payrollrecon/internal/whiteglove/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB             *gorm.DB
	Log            *zap.Logger
	GenID          *snowflake.Node
	Rules          *config.PayrollConfigHolder
	Repo           payrolldomain.Repository
	PlanRepo       plandomain.Repository
	AgentRepo      agentdomain.Repository
	WhiteGloveRepo whiteglovedomain.Repository
	Resolver       *reference.Resolver
	Metrics        *metrics.Metrics    `optional:"true"`
	Audit          auditdomain.Service `optional:"true"`
}

type Service struct {
	db             *gorm.DB
	log            *zap.Logger
	genID          *snowflake.Node
	rules          *config.PayrollConfigHolder
	repo           payrolldomain.Repository
	planRepo       plandomain.Repository
	agentRepo      agentdomain.Repository
	whiteGloveRepo whiteglovedomain.Repository
	resolver       *reference.Resolver
	metrics        *metrics.Metrics
	audit          auditdomain.Service
}

func New(p Params) payrolldomain.Service {
	return &Service{
		db:             p.DB,
		log:            p.Log.Named("payroll.service"),
		genID:          p.GenID,
		rules:          p.Rules,
		repo:           p.Repo,
		planRepo:       p.PlanRepo,
		agentRepo:      p.AgentRepo,
		whiteGloveRepo: p.WhiteGloveRepo,
		resolver:       p.Resolver,
		metrics:        p.Metrics,
		audit:          p.Audit,
	}
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
