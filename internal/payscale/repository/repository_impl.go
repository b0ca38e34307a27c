package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	payscaledomain "github.com/smallbiznis/payrollrecon/internal/payscale/domain"
	"github.com/smallbiznis/payrollrecon/pkg/db/option"
	"github.com/smallbiznis/payrollrecon/pkg/repository"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() payscaledomain.Repository {
	return &repo{}
}

func (r *repo) InsertPersonal(ctx context.Context, db *gorm.DB, p *payscaledomain.PersonalPayscale) error {
	return repository.ProvideStore[payscaledomain.PersonalPayscale](db).Create(ctx, p)
}

func (r *repo) UpdatePersonal(ctx context.Context, db *gorm.DB, p *payscaledomain.PersonalPayscale) error {
	return repository.ProvideStore[payscaledomain.PersonalPayscale](db).Update(ctx, p.ID, map[string]any{
		"name":               p.Name,
		"upfront_percentage": p.UpfrontPercentage,
		"backend_percentage": p.BackendPercentage,
		"updated_at":         time.Now().UTC(),
	})
}

func (r *repo) DeletePersonal(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return repository.ProvideStore[payscaledomain.PersonalPayscale](db).Delete(ctx, id)
}

func (r *repo) FindPersonal(ctx context.Context, db *gorm.DB, id snowflake.ID) (*payscaledomain.PersonalPayscale, error) {
	if id == 0 {
		return nil, nil
	}
	return repository.ProvideStore[payscaledomain.PersonalPayscale](db).FindOne(ctx, &payscaledomain.PersonalPayscale{ID: id})
}

func (r *repo) ListPersonal(ctx context.Context, db *gorm.DB) ([]payscaledomain.PersonalPayscale, error) {
	items, err := repository.ProvideStore[payscaledomain.PersonalPayscale](db).Find(ctx, nil, option.OrderBy("name", "id"))
	return deref(items), err
}

func (r *repo) InsertPersonalCommissions(ctx context.Context, db *gorm.DB, rows []*payscaledomain.PersonalPlanCommission) error {
	return repository.ProvideStore[payscaledomain.PersonalPlanCommission](db).BatchCreate(ctx, rows)
}

func (r *repo) DeletePersonalCommissions(ctx context.Context, db *gorm.DB, payscaleID snowflake.ID) error {
	_, err := repository.ProvideStore[payscaledomain.PersonalPlanCommission](db).DeleteWhere(ctx,
		option.ApplyOperator(option.Condition{Field: "personal_payscale_id", Value: payscaleID}))
	return err
}

func (r *repo) ListPersonalCommissions(ctx context.Context, db *gorm.DB) ([]payscaledomain.PersonalPlanCommission, error) {
	items, err := repository.ProvideStore[payscaledomain.PersonalPlanCommission](db).Find(ctx, nil, option.OrderBy("personal_payscale_id", "plan_id"))
	return deref(items), err
}

func (r *repo) InsertManager(ctx context.Context, db *gorm.DB, p *payscaledomain.ManagerPayscale) error {
	return repository.ProvideStore[payscaledomain.ManagerPayscale](db).Create(ctx, p)
}

func (r *repo) UpdateManager(ctx context.Context, db *gorm.DB, p *payscaledomain.ManagerPayscale) error {
	return repository.ProvideStore[payscaledomain.ManagerPayscale](db).Update(ctx, p.ID, map[string]any{
		"name":       p.Name,
		"updated_at": time.Now().UTC(),
	})
}

func (r *repo) DeleteManager(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return repository.ProvideStore[payscaledomain.ManagerPayscale](db).Delete(ctx, id)
}

func (r *repo) FindManager(ctx context.Context, db *gorm.DB, id snowflake.ID) (*payscaledomain.ManagerPayscale, error) {
	if id == 0 {
		return nil, nil
	}
	return repository.ProvideStore[payscaledomain.ManagerPayscale](db).FindOne(ctx, &payscaledomain.ManagerPayscale{ID: id})
}

func (r *repo) ListManager(ctx context.Context, db *gorm.DB) ([]payscaledomain.ManagerPayscale, error) {
	items, err := repository.ProvideStore[payscaledomain.ManagerPayscale](db).Find(ctx, nil, option.OrderBy("name", "id"))
	return deref(items), err
}

func (r *repo) InsertManagerCommissions(ctx context.Context, db *gorm.DB, rows []*payscaledomain.ManagerPlanCommission) error {
	return repository.ProvideStore[payscaledomain.ManagerPlanCommission](db).BatchCreate(ctx, rows)
}

func (r *repo) DeleteManagerCommissions(ctx context.Context, db *gorm.DB, payscaleID snowflake.ID) error {
	_, err := repository.ProvideStore[payscaledomain.ManagerPlanCommission](db).DeleteWhere(ctx,
		option.ApplyOperator(option.Condition{Field: "manager_payscale_id", Value: payscaleID}))
	return err
}

func (r *repo) ListManagerCommissions(ctx context.Context, db *gorm.DB) ([]payscaledomain.ManagerPlanCommission, error) {
	items, err := repository.ProvideStore[payscaledomain.ManagerPlanCommission](db).Find(ctx, nil, option.OrderBy("manager_payscale_id", "plan_id"))
	return deref(items), err
}

func (r *repo) InsertOverrides(ctx context.Context, db *gorm.DB, rows []*payscaledomain.ManagerAgentOverride) error {
	return repository.ProvideStore[payscaledomain.ManagerAgentOverride](db).BatchCreate(ctx, rows)
}

func (r *repo) DeleteOverridesForManager(ctx context.Context, db *gorm.DB, managerID snowflake.ID) error {
	_, err := repository.ProvideStore[payscaledomain.ManagerAgentOverride](db).DeleteWhere(ctx,
		option.ApplyOperator(option.Condition{Field: "manager_id", Value: managerID}))
	return err
}

func (r *repo) ListOverridesForManager(ctx context.Context, db *gorm.DB, managerID snowflake.ID) ([]payscaledomain.ManagerAgentOverride, error) {
	items, err := repository.ProvideStore[payscaledomain.ManagerAgentOverride](db).Find(ctx, nil,
		option.ApplyOperator(option.Condition{Field: "manager_id", Value: managerID}),
		option.OrderBy("agent_id", "plan_id"),
	)
	return deref(items), err
}

func (r *repo) ListOverrides(ctx context.Context, db *gorm.DB) ([]payscaledomain.ManagerAgentOverride, error) {
	items, err := repository.ProvideStore[payscaledomain.ManagerAgentOverride](db).Find(ctx, nil, option.OrderBy("manager_id", "agent_id", "plan_id"))
	return deref(items), err
}

func deref[T any](items []*T) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		out = append(out, *item)
	}
	return out
}
