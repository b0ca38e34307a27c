package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	agentdomain "github.com/smallbiznis/payrollrecon/internal/agent/domain"
	auditdomain "github.com/smallbiznis/payrollrecon/internal/audit/domain"
	payscaledomain "github.com/smallbiznis/payrollrecon/internal/payscale/domain"
	"github.com/smallbiznis/payrollrecon/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Repo         agentdomain.Repository
	PayscaleRepo payscaledomain.Repository
	PayscaleSvc  payscaledomain.Service
	Provisioner  agentdomain.UserProvisioner
	Audit        auditdomain.Service `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	repo         agentdomain.Repository
	payscaleRepo payscaledomain.Repository
	payscaleSvc  payscaledomain.Service
	provisioner  agentdomain.UserProvisioner
	audit        auditdomain.Service
}

func New(p Params) agentdomain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("agent.service"),
		genID:        p.GenID,
		repo:         p.Repo,
		payscaleRepo: p.PayscaleRepo,
		payscaleSvc:  p.PayscaleSvc,
		provisioner:  p.Provisioner,
		audit:        p.Audit,
	}
}

func (s *Service) Create(ctx context.Context, req agentdomain.CreateRequest) (*agentdomain.Agent, error) {
	agent, err := s.buildAgent(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.insert(ctx, agent); err != nil {
		return nil, err
	}
	return agent, nil
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req agentdomain.UpdateRequest) (*agentdomain.Agent, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	agent, err := s.buildAgent(ctx, req.CreateRequest)
	if err != nil {
		return nil, err
	}
	agent.ID = existing.ID
	agent.UserID = existing.UserID
	agent.CreatedAt = existing.CreatedAt

	if err := s.repo.Update(ctx, s.db, agent); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, agentdomain.ErrAgentExists
		}
		return nil, fmt.Errorf("update agent: %w", err)
	}

	if err := s.repo.DeleteEdgesForManager(ctx, s.db, id); err != nil {
		return nil, fmt.Errorf("clear assigned agents: %w", err)
	}
	if agent.IsManager {
		if err := s.assign(ctx, id, req.AssignedAgentIDs); err != nil {
			return nil, err
		}
	}
	return s.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*agentdomain.Agent, error) {
	agent, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if agent == nil {
		return nil, agentdomain.ErrAgentNotFound
	}
	return agent, nil
}

func (s *Service) List(ctx context.Context) ([]agentdomain.Agent, error) {
	return s.repo.List(ctx, s.db)
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteEdgesForAgent(ctx, s.db, id); err != nil {
		return fmt.Errorf("delete agent edges: %w", err)
	}
	if err := s.repo.DeleteEdgesForManager(ctx, s.db, id); err != nil {
		return fmt.Errorf("delete manager edges: %w", err)
	}
	return s.repo.Delete(ctx, s.db, id)
}

func (s *Service) AssignedAgents(ctx context.Context, managerID snowflake.ID) ([]agentdomain.Agent, error) {
	edges, err := s.repo.ListEdgesForManager(ctx, s.db, managerID)
	if err != nil {
		return nil, err
	}
	ids := make([]snowflake.ID, 0, len(edges))
	for _, e := range edges {
		ids = append(ids, e.AgentID)
	}
	if len(ids) == 0 {
		return []agentdomain.Agent{}, nil
	}
	return s.repo.FindByIDs(ctx, s.db, ids)
}

func (s *Service) ManagersUsingPayscale(ctx context.Context, payscaleID snowflake.ID) ([]agentdomain.Agent, error) {
	return s.repo.ListByManagerPayscale(ctx, s.db, payscaleID)
}

func (s *Service) buildAgent(ctx context.Context, req agentdomain.CreateRequest) (*agentdomain.Agent, error) {
	identifier := strings.TrimSpace(req.Identifier)
	if identifier == "" {
		return nil, agentdomain.ErrInvalidIdentifier
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, agentdomain.ErrInvalidName
	}

	var email *string
	if req.Email != nil {
		if trimmed := strings.TrimSpace(*req.Email); trimmed != "" {
			email = &trimmed
		}
	}

	personal := nonZero(req.PersonalPayscaleID)
	if personal != nil {
		found, err := s.payscaleRepo.FindPersonal(ctx, s.db, *personal)
		if err != nil {
			return nil, err
		}
		if found == nil {
			return nil, agentdomain.ErrUnknownPayscale
		}
	}

	var manager *snowflake.ID
	if req.IsManager {
		manager = nonZero(req.ManagerPayscaleID)
	}
	if manager != nil {
		found, err := s.payscaleRepo.FindManager(ctx, s.db, *manager)
		if err != nil {
			return nil, err
		}
		if found == nil {
			return nil, agentdomain.ErrUnknownPayscale
		}
	}

	now := time.Now().UTC()
	return &agentdomain.Agent{
		ID:                 s.genID.Generate(),
		Identifier:         identifier,
		Name:               name,
		Email:              email,
		IsManager:          req.IsManager,
		PersonalPayscaleID: personal,
		ManagerPayscaleID:  manager,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

func (s *Service) insert(ctx context.Context, agent *agentdomain.Agent) error {
	if err := s.repo.Insert(ctx, s.db, agent); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return agentdomain.ErrAgentExists
		}
		return fmt.Errorf("insert agent: %w", err)
	}
	s.log.Info("agent created",
		zap.String("agent_id", agent.ID.String()),
		zap.Bool("is_manager", agent.IsManager),
	)
	return nil
}

// assign links agentIDs to managerID, ignoring self references and duplicates.
func (s *Service) assign(ctx context.Context, managerID snowflake.ID, agentIDs []snowflake.ID) error {
	return s.link(ctx, managerID, agentIDs, func(other snowflake.ID) *agentdomain.AgentManager {
		return &agentdomain.AgentManager{AgentID: other, ManagerID: managerID}
	})
}

// reportTo links agentID to each of managerIDs.
func (s *Service) reportTo(ctx context.Context, agentID snowflake.ID, managerIDs []snowflake.ID) error {
	return s.link(ctx, agentID, managerIDs, func(other snowflake.ID) *agentdomain.AgentManager {
		return &agentdomain.AgentManager{AgentID: agentID, ManagerID: other}
	})
}

func (s *Service) link(ctx context.Context, self snowflake.ID, others []snowflake.ID, edge func(snowflake.ID) *agentdomain.AgentManager) error {
	ids := dedupe(self, others)
	if len(ids) == 0 {
		return nil
	}
	found, err := s.repo.FindByIDs(ctx, s.db, ids)
	if err != nil {
		return err
	}
	if len(found) != len(ids) {
		return agentdomain.ErrUnknownAgent
	}

	now := time.Now().UTC()
	rows := make([]*agentdomain.AgentManager, 0, len(ids))
	for _, id := range ids {
		row := edge(id)
		row.CreatedAt = now
		rows = append(rows, row)
	}
	if err := s.repo.InsertEdges(ctx, s.db, rows); err != nil {
		return fmt.Errorf("insert agent managers: %w", err)
	}
	return nil
}

func dedupe(self snowflake.ID, ids []snowflake.ID) []snowflake.ID {
	seen := map[snowflake.ID]struct{}{self: {}}
	out := make([]snowflake.ID, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func nonZero(id *snowflake.ID) *snowflake.ID {
	if id == nil || *id == 0 {
		return nil
	}
	v := *id
	return &v
}
