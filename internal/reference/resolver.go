package reference

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	agentdomain "github.com/smallbiznis/payrollrecon/internal/agent/domain"
	payscaledomain "github.com/smallbiznis/payrollrecon/internal/payscale/domain"
	plandomain "github.com/smallbiznis/payrollrecon/internal/plan/domain"
	referencedomain "github.com/smallbiznis/payrollrecon/internal/reference/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	AgentRepo    agentdomain.Repository
	PlanRepo     plandomain.Repository
	PayscaleRepo payscaledomain.Repository
}

// Resolver builds lookup snapshots from the store. It caches nothing between runs.
type Resolver struct {
	db           *gorm.DB
	log          *zap.Logger
	agentRepo    agentdomain.Repository
	planRepo     plandomain.Repository
	payscaleRepo payscaledomain.Repository
}

func NewResolver(p Params) *Resolver {
	return &Resolver{
		db:           p.DB,
		log:          p.Log.Named("reference.resolver"),
		agentRepo:    p.AgentRepo,
		planRepo:     p.PlanRepo,
		payscaleRepo: p.PayscaleRepo,
	}
}

func (r *Resolver) Load(ctx context.Context) (*referencedomain.Snapshot, error) {
	agents, err := r.agentRepo.List(ctx, r.db)
	if err != nil {
		return nil, fmt.Errorf("load agents: %w", err)
	}
	edges, err := r.agentRepo.ListEdges(ctx, r.db)
	if err != nil {
		return nil, fmt.Errorf("load agent managers: %w", err)
	}
	plans, err := r.planRepo.List(ctx, r.db)
	if err != nil {
		return nil, fmt.Errorf("load plans: %w", err)
	}
	personal, err := r.payscaleRepo.ListPersonal(ctx, r.db)
	if err != nil {
		return nil, fmt.Errorf("load personal payscales: %w", err)
	}
	personalCommissions, err := r.payscaleRepo.ListPersonalCommissions(ctx, r.db)
	if err != nil {
		return nil, fmt.Errorf("load personal commissions: %w", err)
	}
	managerCommissions, err := r.payscaleRepo.ListManagerCommissions(ctx, r.db)
	if err != nil {
		return nil, fmt.Errorf("load manager commissions: %w", err)
	}
	overrides, err := r.payscaleRepo.ListOverrides(ctx, r.db)
	if err != nil {
		return nil, fmt.Errorf("load overrides: %w", err)
	}

	snap := Build(agents, edges, plans, personal, personalCommissions, managerCommissions, overrides)
	r.log.Debug("reference snapshot loaded",
		zap.Int("agents", len(snap.AgentsByID)),
		zap.Int("plans", len(snap.PlansByName)),
		zap.Int("edges", len(edges)),
	)
	return snap, nil
}

// Build indexes already-loaded reference rows. Edges must arrive in their
// canonical fetch order; for an agent with several managers the last edge wins.
func Build(
	agents []agentdomain.Agent,
	edges []agentdomain.AgentManager,
	plans []plandomain.Plan,
	personal []payscaledomain.PersonalPayscale,
	personalCommissions []payscaledomain.PersonalPlanCommission,
	managerCommissions []payscaledomain.ManagerPlanCommission,
	overrides []payscaledomain.ManagerAgentOverride,
) *referencedomain.Snapshot {
	snap := referencedomain.NewSnapshot()

	for _, a := range agents {
		snap.AgentsByIdentifier[a.Identifier] = a
		snap.AgentsByID[a.ID] = a
	}
	for _, p := range plans {
		snap.PlansByName[p.Name] = p
	}
	for _, c := range personalCommissions {
		nested(snap.PersonalCommissions, c.PersonalPayscaleID)[c.PlanID] = c.Value
	}
	for _, c := range managerCommissions {
		nested(snap.ManagerCommissions, c.ManagerPayscaleID)[c.PlanID] = c.Value
	}
	for _, o := range overrides {
		if o.Value.IsZero() {
			continue
		}
		byAgent, ok := snap.Overrides[o.ManagerID]
		if !ok {
			byAgent = map[snowflake.ID]map[snowflake.ID]decimal.Decimal{}
			snap.Overrides[o.ManagerID] = byAgent
		}
		nested(byAgent, o.AgentID)[o.PlanID] = o.Value
	}
	for _, e := range edges {
		snap.ManagerForAgent[e.AgentID] = e.ManagerID
	}

	payscales := make(map[snowflake.ID]payscaledomain.PersonalPayscale, len(personal))
	for _, p := range personal {
		payscales[p.ID] = p
	}
	for _, a := range agents {
		if a.PersonalPayscaleID == nil {
			continue
		}
		p, ok := payscales[*a.PersonalPayscaleID]
		if !ok {
			continue
		}
		up, back := p.UpfrontPercentage, p.BackendPercentage
		snap.Percentages[a.ID] = referencedomain.Percentages{Upfront: &up, Backend: &back}
	}
	return snap
}

func nested(m map[snowflake.ID]map[snowflake.ID]decimal.Decimal, key snowflake.ID) map[snowflake.ID]decimal.Decimal {
	inner, ok := m[key]
	if !ok {
		inner = map[snowflake.ID]decimal.Decimal{}
		m[key] = inner
	}
	return inner
}
