package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	agentdomain "github.com/smallbiznis/payrollrecon/internal/agent/domain"
	payscaledomain "github.com/smallbiznis/payrollrecon/internal/payscale/domain"
	plandomain "github.com/smallbiznis/payrollrecon/internal/plan/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var hundred = decimal.NewFromInt(100)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Repo      payscaledomain.Repository
	PlanRepo  plandomain.Repository
	AgentRepo agentdomain.Repository
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	repo      payscaledomain.Repository
	planRepo  plandomain.Repository
	agentRepo agentdomain.Repository
}

func New(p Params) payscaledomain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("payscale.service"),
		genID:     p.GenID,
		repo:      p.Repo,
		planRepo:  p.PlanRepo,
		agentRepo: p.AgentRepo,
	}
}

func (s *Service) CreatePersonal(ctx context.Context, req payscaledomain.PersonalRequest) (*payscaledomain.PersonalPayscaleView, error) {
	name, err := validatePersonal(req)
	if err != nil {
		return nil, err
	}
	values, err := s.commissionValues(ctx, req.Commissions)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	payscale := &payscaledomain.PersonalPayscale{
		ID:                s.genID.Generate(),
		Name:              name,
		UpfrontPercentage: req.UpfrontPercentage,
		BackendPercentage: req.BackendPercentage,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.repo.InsertPersonal(ctx, s.db, payscale); err != nil {
		return nil, fmt.Errorf("insert personal payscale: %w", err)
	}

	rows := s.personalRows(payscale.ID, values)
	if err := s.repo.InsertPersonalCommissions(ctx, s.db, rows); err != nil {
		if delErr := s.repo.DeletePersonal(ctx, s.db, payscale.ID); delErr != nil {
			s.log.Error("compensating delete failed",
				zap.String("payscale_id", payscale.ID.String()),
				zap.Error(delErr),
			)
		}
		return nil, fmt.Errorf("insert personal commissions: %w", err)
	}

	s.log.Info("personal payscale created", zap.String("payscale_id", payscale.ID.String()))
	return &payscaledomain.PersonalPayscaleView{PersonalPayscale: *payscale, Commissions: views(values)}, nil
}

func (s *Service) UpdatePersonal(ctx context.Context, id snowflake.ID, req payscaledomain.PersonalRequest) (*payscaledomain.PersonalPayscaleView, error) {
	payscale, err := s.repo.FindPersonal(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if payscale == nil {
		return nil, payscaledomain.ErrPayscaleNotFound
	}
	name, err := validatePersonal(req)
	if err != nil {
		return nil, err
	}
	values, err := s.commissionValues(ctx, req.Commissions)
	if err != nil {
		return nil, err
	}

	payscale.Name = name
	payscale.UpfrontPercentage = req.UpfrontPercentage
	payscale.BackendPercentage = req.BackendPercentage
	if err := s.repo.UpdatePersonal(ctx, s.db, payscale); err != nil {
		return nil, fmt.Errorf("update personal payscale: %w", err)
	}
	if err := s.repo.DeletePersonalCommissions(ctx, s.db, id); err != nil {
		return nil, fmt.Errorf("clear personal commissions: %w", err)
	}
	if err := s.repo.InsertPersonalCommissions(ctx, s.db, s.personalRows(id, values)); err != nil {
		return nil, fmt.Errorf("insert personal commissions: %w", err)
	}
	return &payscaledomain.PersonalPayscaleView{PersonalPayscale: *payscale, Commissions: views(values)}, nil
}

func (s *Service) ListPersonal(ctx context.Context) ([]payscaledomain.PersonalPayscaleView, error) {
	payscales, err := s.repo.ListPersonal(ctx, s.db)
	if err != nil {
		return nil, err
	}
	commissions, err := s.repo.ListPersonalCommissions(ctx, s.db)
	if err != nil {
		return nil, err
	}
	byPayscale := map[snowflake.ID][]payscaledomain.PlanCommissionView{}
	for _, c := range commissions {
		byPayscale[c.PersonalPayscaleID] = append(byPayscale[c.PersonalPayscaleID], payscaledomain.PlanCommissionView{PlanID: c.PlanID, Value: c.Value})
	}

	out := make([]payscaledomain.PersonalPayscaleView, 0, len(payscales))
	for _, p := range payscales {
		out = append(out, payscaledomain.PersonalPayscaleView{PersonalPayscale: p, Commissions: byPayscale[p.ID]})
	}
	return out, nil
}

func (s *Service) DeletePersonal(ctx context.Context, id snowflake.ID) error {
	payscale, err := s.repo.FindPersonal(ctx, s.db, id)
	if err != nil {
		return err
	}
	if payscale == nil {
		return payscaledomain.ErrPayscaleNotFound
	}
	if err := s.repo.DeletePersonalCommissions(ctx, s.db, id); err != nil {
		return fmt.Errorf("delete personal commissions: %w", err)
	}
	return s.repo.DeletePersonal(ctx, s.db, id)
}

func (s *Service) CreateManager(ctx context.Context, req payscaledomain.ManagerRequest) (*payscaledomain.ManagerPayscaleView, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, payscaledomain.ErrInvalidName
	}
	values, err := s.commissionValues(ctx, req.Commissions)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	payscale := &payscaledomain.ManagerPayscale{
		ID:        s.genID.Generate(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.InsertManager(ctx, s.db, payscale); err != nil {
		return nil, fmt.Errorf("insert manager payscale: %w", err)
	}
	if err := s.repo.InsertManagerCommissions(ctx, s.db, s.managerRows(payscale.ID, values)); err != nil {
		if delErr := s.repo.DeleteManager(ctx, s.db, payscale.ID); delErr != nil {
			s.log.Error("compensating delete failed",
				zap.String("payscale_id", payscale.ID.String()),
				zap.Error(delErr),
			)
		}
		return nil, fmt.Errorf("insert manager commissions: %w", err)
	}

	s.log.Info("manager payscale created", zap.String("payscale_id", payscale.ID.String()))
	return &payscaledomain.ManagerPayscaleView{ManagerPayscale: *payscale, Commissions: views(values)}, nil
}

func (s *Service) UpdateManager(ctx context.Context, id snowflake.ID, req payscaledomain.ManagerRequest) (*payscaledomain.ManagerPayscaleView, error) {
	payscale, err := s.repo.FindManager(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if payscale == nil {
		return nil, payscaledomain.ErrPayscaleNotFound
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, payscaledomain.ErrInvalidName
	}
	values, err := s.commissionValues(ctx, req.Commissions)
	if err != nil {
		return nil, err
	}

	payscale.Name = name
	if err := s.repo.UpdateManager(ctx, s.db, payscale); err != nil {
		return nil, fmt.Errorf("update manager payscale: %w", err)
	}
	if err := s.repo.DeleteManagerCommissions(ctx, s.db, id); err != nil {
		return nil, fmt.Errorf("clear manager commissions: %w", err)
	}
	if err := s.repo.InsertManagerCommissions(ctx, s.db, s.managerRows(id, values)); err != nil {
		return nil, fmt.Errorf("insert manager commissions: %w", err)
	}
	return &payscaledomain.ManagerPayscaleView{ManagerPayscale: *payscale, Commissions: views(values)}, nil
}

func (s *Service) ListManager(ctx context.Context) ([]payscaledomain.ManagerPayscaleView, error) {
	payscales, err := s.repo.ListManager(ctx, s.db)
	if err != nil {
		return nil, err
	}
	commissions, err := s.repo.ListManagerCommissions(ctx, s.db)
	if err != nil {
		return nil, err
	}
	byPayscale := map[snowflake.ID][]payscaledomain.PlanCommissionView{}
	for _, c := range commissions {
		byPayscale[c.ManagerPayscaleID] = append(byPayscale[c.ManagerPayscaleID], payscaledomain.PlanCommissionView{PlanID: c.PlanID, Value: c.Value})
	}

	out := make([]payscaledomain.ManagerPayscaleView, 0, len(payscales))
	for _, p := range payscales {
		out = append(out, payscaledomain.ManagerPayscaleView{ManagerPayscale: p, Commissions: byPayscale[p.ID]})
	}
	return out, nil
}

func (s *Service) DeleteManager(ctx context.Context, id snowflake.ID) error {
	payscale, err := s.repo.FindManager(ctx, s.db, id)
	if err != nil {
		return err
	}
	if payscale == nil {
		return payscaledomain.ErrPayscaleNotFound
	}
	if err := s.repo.DeleteManagerCommissions(ctx, s.db, id); err != nil {
		return fmt.Errorf("delete manager commissions: %w", err)
	}
	return s.repo.DeleteManager(ctx, s.db, id)
}

func (s *Service) ListOverrides(ctx context.Context, managerID snowflake.ID) ([]payscaledomain.ManagerAgentOverride, error) {
	if _, err := s.manager(ctx, managerID); err != nil {
		return nil, err
	}
	return s.repo.ListOverridesForManager(ctx, s.db, managerID)
}

// SaveOverrides replaces every override held by the manager. Zero values are dropped.
func (s *Service) SaveOverrides(ctx context.Context, managerID snowflake.ID, inputs []payscaledomain.OverrideInput) ([]payscaledomain.ManagerAgentOverride, error) {
	if _, err := s.manager(ctx, managerID); err != nil {
		return nil, err
	}

	type key struct{ agent, plan snowflake.ID }
	latest := map[key]decimal.Decimal{}
	order := []key{}
	for _, in := range inputs {
		if in.Value.IsNegative() {
			return nil, payscaledomain.ErrInvalidCommission
		}
		k := key{in.AgentID, in.PlanID}
		if _, seen := latest[k]; !seen {
			order = append(order, k)
		}
		latest[k] = in.Value
	}

	rows := make([]*payscaledomain.ManagerAgentOverride, 0, len(order))
	for _, k := range order {
		value := latest[k]
		if value.IsZero() {
			continue
		}
		rows = append(rows, &payscaledomain.ManagerAgentOverride{
			ID:        s.genID.Generate(),
			ManagerID: managerID,
			AgentID:   k.agent,
			PlanID:    k.plan,
			Value:     value,
		})
	}

	if err := s.repo.DeleteOverridesForManager(ctx, s.db, managerID); err != nil {
		return nil, fmt.Errorf("clear overrides: %w", err)
	}
	if err := s.repo.InsertOverrides(ctx, s.db, rows); err != nil {
		return nil, fmt.Errorf("insert overrides: %w", err)
	}

	s.log.Info("manager overrides saved",
		zap.String("manager_id", managerID.String()),
		zap.Int("count", len(rows)),
	)
	return s.repo.ListOverridesForManager(ctx, s.db, managerID)
}

func (s *Service) manager(ctx context.Context, managerID snowflake.ID) (*agentdomain.Agent, error) {
	mgr, err := s.agentRepo.FindByID(ctx, s.db, managerID)
	if err != nil {
		return nil, err
	}
	if mgr == nil || !mgr.IsManager {
		return nil, payscaledomain.ErrInvalidManager
	}
	return mgr, nil
}

// commissionValues expands the request to one value per known plan, zero when omitted.
func (s *Service) commissionValues(ctx context.Context, requested map[snowflake.ID]decimal.Decimal) (map[snowflake.ID]decimal.Decimal, error) {
	plans, err := s.planRepo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}
	known := make(map[snowflake.ID]struct{}, len(plans))
	values := make(map[snowflake.ID]decimal.Decimal, len(plans))
	for _, p := range plans {
		known[p.ID] = struct{}{}
		values[p.ID] = decimal.Zero
	}
	for planID, value := range requested {
		if _, ok := known[planID]; !ok {
			return nil, payscaledomain.ErrUnknownPlan
		}
		if value.IsNegative() {
			return nil, payscaledomain.ErrInvalidCommission
		}
		values[planID] = value
	}
	return values, nil
}

func (s *Service) personalRows(payscaleID snowflake.ID, values map[snowflake.ID]decimal.Decimal) []*payscaledomain.PersonalPlanCommission {
	rows := make([]*payscaledomain.PersonalPlanCommission, 0, len(values))
	for _, v := range views(values) {
		rows = append(rows, &payscaledomain.PersonalPlanCommission{
			ID:                 s.genID.Generate(),
			PersonalPayscaleID: payscaleID,
			PlanID:             v.PlanID,
			Value:              v.Value,
		})
	}
	return rows
}

func (s *Service) managerRows(payscaleID snowflake.ID, values map[snowflake.ID]decimal.Decimal) []*payscaledomain.ManagerPlanCommission {
	rows := make([]*payscaledomain.ManagerPlanCommission, 0, len(values))
	for _, v := range views(values) {
		rows = append(rows, &payscaledomain.ManagerPlanCommission{
			ID:                s.genID.Generate(),
			ManagerPayscaleID: payscaleID,
			PlanID:            v.PlanID,
			Value:             v.Value,
		})
	}
	return rows
}

func validatePersonal(req payscaledomain.PersonalRequest) (string, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return "", payscaledomain.ErrInvalidName
	}
	for _, pct := range []decimal.Decimal{req.UpfrontPercentage, req.BackendPercentage} {
		if pct.IsNegative() || pct.GreaterThan(hundred) {
			return "", payscaledomain.ErrInvalidPercentage
		}
	}
	return name, nil
}

func views(values map[snowflake.ID]decimal.Decimal) []payscaledomain.PlanCommissionView {
	out := make([]payscaledomain.PlanCommissionView, 0, len(values))
	for planID, value := range values {
		out = append(out, payscaledomain.PlanCommissionView{PlanID: planID, Value: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlanID < out[j].PlanID })
	return out
}
