package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	payrolldomain "github.com/smallbiznis/payrollrecon/internal/payroll/domain"
	"github.com/smallbiznis/payrollrecon/pkg/db/option"
	"github.com/smallbiznis/payrollrecon/pkg/repository"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() payrolldomain.Repository {
	return &repo{}
}

func batches(db *gorm.DB) repository.Repository[payrolldomain.Batch] {
	return repository.ProvideStore[payrolldomain.Batch](db)
}

func lines(db *gorm.DB) repository.Repository[payrolldomain.Line] {
	return repository.ProvideStore[payrolldomain.Line](db)
}

func (r *repo) InsertBatch(ctx context.Context, db *gorm.DB, batch *payrolldomain.Batch) error {
	return batches(db).Create(ctx, batch)
}

func (r *repo) RenameBatch(ctx context.Context, db *gorm.DB, id snowflake.ID, name string) error {
	return batches(db).Update(ctx, id, map[string]any{
		"batch_name": name,
		"updated_at": time.Now().UTC(),
	})
}

func (r *repo) DeleteBatch(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return batches(db).Delete(ctx, id)
}

func (r *repo) FindBatch(ctx context.Context, db *gorm.DB, id snowflake.ID) (*payrolldomain.Batch, error) {
	if id == 0 {
		return nil, nil
	}
	return batches(db).FindOne(ctx, &payrolldomain.Batch{ID: id})
}

func (r *repo) ListBatches(ctx context.Context, db *gorm.DB) ([]payrolldomain.Batch, error) {
	items, err := batches(db).Find(ctx, nil, option.OrderByDesc("created_at", "id"))
	return deref(items), err
}

func (r *repo) InsertLines(ctx context.Context, db *gorm.DB, items []*payrolldomain.Line) error {
	if len(items) == 0 {
		return nil
	}
	return lines(db).BatchCreate(ctx, items)
}

func (r *repo) DeleteLines(ctx context.Context, db *gorm.DB, batchID snowflake.ID) error {
	_, err := lines(db).DeleteWhere(ctx, option.ApplyOperator(option.Condition{Field: "batch_id", Value: batchID}))
	return err
}

func (r *repo) FindLine(ctx context.Context, db *gorm.DB, id snowflake.ID) (*payrolldomain.Line, error) {
	if id == 0 {
		return nil, nil
	}
	return lines(db).FindOne(ctx, &payrolldomain.Line{ID: id})
}

func (r *repo) ListLines(ctx context.Context, db *gorm.DB, batchID snowflake.ID) ([]payrolldomain.Line, error) {
	items, err := lines(db).Find(ctx, nil,
		option.ApplyOperator(option.Condition{Field: "batch_id", Value: batchID}),
		option.OrderBy("name", "id"),
	)
	return deref(items), err
}

func (r *repo) CountLines(ctx context.Context, db *gorm.DB, batchID snowflake.ID) (int64, error) {
	return lines(db).Count(ctx, nil, option.ApplyOperator(option.Condition{Field: "batch_id", Value: batchID}))
}

func (r *repo) SetLinePaid(ctx context.Context, db *gorm.DB, id snowflake.ID, column string, paid bool) error {
	return lines(db).Update(ctx, id, map[string]any{
		column:       paid,
		"updated_at": time.Now().UTC(),
	})
}

func deref[T any](items []*T) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		out = append(out, *item)
	}
	return out
}
