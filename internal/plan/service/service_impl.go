package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	plandomain "github.com/smallbiznis/payrollrecon/internal/plan/domain"
	"github.com/smallbiznis/payrollrecon/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  plandomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  plandomain.Repository
	genID *snowflake.Node
}

func New(p Params) plandomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("plan.service"),
		repo:  p.Repo,
		genID: p.GenID,
	}
}

func (s *Service) Create(ctx context.Context, req plandomain.CreateRequest) (*plandomain.Plan, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, plandomain.ErrInvalidName
	}
	if req.CommissionAmount.IsNegative() {
		return nil, plandomain.ErrInvalidCommissionAmount
	}

	now := time.Now().UTC()
	plan := &plandomain.Plan{
		ID:               s.genID.Generate(),
		Name:             name,
		CommissionAmount: req.CommissionAmount,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.Insert(ctx, s.db, plan); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, plandomain.ErrPlanExists
		}
		return nil, fmt.Errorf("insert plan: %w", err)
	}

	s.log.Info("plan created", zap.String("plan_id", plan.ID.String()), zap.String("name", name))
	return plan, nil
}

func (s *Service) List(ctx context.Context) ([]plandomain.Plan, error) {
	return s.repo.List(ctx, s.db)
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*plandomain.Plan, error) {
	plan, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, plandomain.ErrPlanNotFound
	}
	return plan, nil
}

func (s *Service) Update(ctx context.Context, req plandomain.UpdateRequest) (*plandomain.Plan, error) {
	if _, err := s.Get(ctx, req.ID); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, plandomain.ErrInvalidName
		}
		fields["name"] = name
	}
	if req.CommissionAmount != nil {
		if req.CommissionAmount.IsNegative() {
			return nil, plandomain.ErrInvalidCommissionAmount
		}
		fields["commission_amount"] = *req.CommissionAmount
	}

	if len(fields) > 0 {
		if err := s.repo.Update(ctx, s.db, req.ID, fields); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return nil, plandomain.ErrPlanExists
			}
			return nil, fmt.Errorf("update plan: %w", err)
		}
	}
	return s.Get(ctx, req.ID)
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, s.db, id)
}
