package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	plandomain "github.com/smallbiznis/payrollrecon/internal/plan/domain"
	"github.com/smallbiznis/payrollrecon/pkg/db/option"
	"github.com/smallbiznis/payrollrecon/pkg/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() plandomain.Repository {
	return &repo{}
}

func store(db *gorm.DB) repository.Repository[plandomain.Plan] {
	return repository.ProvideStore[plandomain.Plan](db)
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, plan *plandomain.Plan) error {
	return store(db).Create(ctx, plan)
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error {
	fields["updated_at"] = time.Now().UTC()
	return store(db).Update(ctx, id, fields)
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return store(db).Delete(ctx, id)
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*plandomain.Plan, error) {
	if id == 0 {
		return nil, nil
	}
	return store(db).FindOne(ctx, &plandomain.Plan{ID: id})
}

func (r *repo) FindByName(ctx context.Context, db *gorm.DB, name string) (*plandomain.Plan, error) {
	if name == "" {
		return nil, nil
	}
	return store(db).FindOne(ctx, &plandomain.Plan{Name: name})
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]plandomain.Plan, error) {
	items, err := store(db).Find(ctx, nil, option.OrderBy("id"))
	if err != nil {
		return nil, err
	}
	plans := make([]plandomain.Plan, 0, len(items))
	for _, item := range items {
		plans = append(plans, *item)
	}
	return plans, nil
}

func (r *repo) UpsertAmounts(ctx context.Context, db *gorm.DB, plans []*plandomain.Plan) error {
	return store(db).Upsert(ctx, plans, clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"commission_amount", "updated_at"}),
	})
}

func (r *repo) InsertMissing(ctx context.Context, db *gorm.DB, plans []*plandomain.Plan) error {
	return store(db).Upsert(ctx, plans, clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	})
}
