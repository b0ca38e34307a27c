package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	agentdomain "github.com/smallbiznis/payrollrecon/internal/agent/domain"
	"github.com/smallbiznis/payrollrecon/pkg/db/option"
	"github.com/smallbiznis/payrollrecon/pkg/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() agentdomain.Repository {
	return &repo{}
}

func agents(db *gorm.DB) repository.Repository[agentdomain.Agent] {
	return repository.ProvideStore[agentdomain.Agent](db)
}

func edges(db *gorm.DB) repository.Repository[agentdomain.AgentManager] {
	return repository.ProvideStore[agentdomain.AgentManager](db)
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, a *agentdomain.Agent) error {
	return agents(db).Create(ctx, a)
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, a *agentdomain.Agent) error {
	return agents(db).Update(ctx, a.ID, map[string]any{
		"identifier":           a.Identifier,
		"name":                 a.Name,
		"email":                a.Email,
		"is_manager":           a.IsManager,
		"personal_payscale_id": a.PersonalPayscaleID,
		"manager_payscale_id":  a.ManagerPayscaleID,
		"updated_at":           time.Now().UTC(),
	})
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return agents(db).Delete(ctx, id)
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*agentdomain.Agent, error) {
	if id == 0 {
		return nil, nil
	}
	return agents(db).FindOne(ctx, &agentdomain.Agent{ID: id})
}

func (r *repo) FindByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]agentdomain.Agent, error) {
	items, err := agents(db).Find(ctx, nil, option.WhereIn("id", ids), option.OrderBy("name", "id"))
	return deref(items), err
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]agentdomain.Agent, error) {
	items, err := agents(db).Find(ctx, nil, option.OrderBy("name", "id"))
	return deref(items), err
}

func (r *repo) ListByManagerPayscale(ctx context.Context, db *gorm.DB, payscaleID snowflake.ID) ([]agentdomain.Agent, error) {
	items, err := agents(db).Find(ctx, nil,
		option.ApplyOperator(option.Condition{Field: "manager_payscale_id", Value: payscaleID}),
		option.ApplyOperator(option.Condition{Field: "is_manager", Value: true}),
		option.OrderBy("name", "id"),
	)
	return deref(items), err
}

func (r *repo) InsertMissing(ctx context.Context, db *gorm.DB, items []*agentdomain.Agent) error {
	return agents(db).Upsert(ctx, items, clause.OnConflict{
		Columns:   []clause.Column{{Name: "identifier"}},
		DoNothing: true,
	})
}

func (r *repo) InsertEdges(ctx context.Context, db *gorm.DB, items []*agentdomain.AgentManager) error {
	return edges(db).Upsert(ctx, items, clause.OnConflict{
		Columns:   []clause.Column{{Name: "agent_id"}, {Name: "manager_id"}},
		DoNothing: true,
	})
}

func (r *repo) DeleteEdgesForManager(ctx context.Context, db *gorm.DB, managerID snowflake.ID) error {
	_, err := edges(db).DeleteWhere(ctx, option.ApplyOperator(option.Condition{Field: "manager_id", Value: managerID}))
	return err
}

func (r *repo) DeleteEdgesForAgent(ctx context.Context, db *gorm.DB, agentID snowflake.ID) error {
	_, err := edges(db).DeleteWhere(ctx, option.ApplyOperator(option.Condition{Field: "agent_id", Value: agentID}))
	return err
}

func (r *repo) ListEdges(ctx context.Context, db *gorm.DB) ([]agentdomain.AgentManager, error) {
	items, err := edges(db).Find(ctx, nil, option.OrderBy("created_at", "agent_id", "manager_id"))
	return deref(items), err
}

func (r *repo) ListEdgesForManager(ctx context.Context, db *gorm.DB, managerID snowflake.ID) ([]agentdomain.AgentManager, error) {
	items, err := edges(db).Find(ctx, nil,
		option.ApplyOperator(option.Condition{Field: "manager_id", Value: managerID}),
		option.OrderBy("created_at", "agent_id"),
	)
	return deref(items), err
}

func deref[T any](items []*T) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		out = append(out, *item)
	}
	return out
}
