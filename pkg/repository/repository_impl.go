package repository

import (
	"context"
	"errors"

	"github.com/smallbiznis/payrollrecon/pkg/db/option"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const writeBatchSize = 200

type store[T any] struct {
	db *gorm.DB
}

func ProvideStore[T any](db *gorm.DB) Repository[T] {
	return &store[T]{db: db}
}

func (r *store[T]) WithTrx(tx *gorm.DB) Repository[T] {
	return &store[T]{db: tx}
}

func (r *store[T]) Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error) {
	var result []*T
	err := r.buildQuery(ctx, query, opts...).Find(&result).Error
	return result, err
}

// FindOne returns nil, nil when nothing matches.
func (r *store[T]) FindOne(ctx context.Context, query *T, opts ...option.QueryOption) (*T, error) {
	var result T
	err := r.buildQuery(ctx, query, opts...).First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (r *store[T]) Create(ctx context.Context, resource *T) error {
	return r.db.WithContext(ctx).Create(resource).Error
}

func (r *store[T]) Update(ctx context.Context, resourceID any, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(new(T)).Where("id = ?", resourceID).Updates(fields).Error
}

// UpdateWhere applies fields to every row matched by opts. At least one option is required.
func (r *store[T]) UpdateWhere(ctx context.Context, fields map[string]any, opts ...option.QueryOption) (int64, error) {
	if len(opts) == 0 {
		return 0, gorm.ErrMissingWhereClause
	}
	stmt := r.db.WithContext(ctx).Model(new(T))
	for _, opt := range opts {
		stmt = opt.Apply(stmt)
	}
	res := stmt.Updates(fields)
	return res.RowsAffected, res.Error
}

func (r *store[T]) Delete(ctx context.Context, resourceID any) error {
	return r.db.WithContext(ctx).Where("id = ?", resourceID).Delete(new(T)).Error
}

// DeleteWhere removes every row matched by opts. At least one option is required.
func (r *store[T]) DeleteWhere(ctx context.Context, opts ...option.QueryOption) (int64, error) {
	if len(opts) == 0 {
		return 0, gorm.ErrMissingWhereClause
	}
	stmt := r.db.WithContext(ctx)
	for _, opt := range opts {
		stmt = opt.Apply(stmt)
	}
	res := stmt.Delete(new(T))
	return res.RowsAffected, res.Error
}

func (r *store[T]) Count(ctx context.Context, query *T, opts ...option.QueryOption) (int64, error) {
	var count int64
	err := r.buildQuery(ctx, query, opts...).Model(new(T)).Count(&count).Error
	return count, err
}

func (r *store[T]) BatchCreate(ctx context.Context, resources []*T) error {
	if len(resources) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(resources, writeBatchSize).Error
}

func (r *store[T]) Upsert(ctx context.Context, resources []*T, onConflict clause.OnConflict) error {
	if len(resources) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(onConflict).CreateInBatches(resources, writeBatchSize).Error
}

func (r *store[T]) buildQuery(ctx context.Context, filter *T, opts ...option.QueryOption) *gorm.DB {
	stmt := r.db.WithContext(ctx)
	if filter != nil {
		stmt = stmt.Where(filter)
	}
	for _, opt := range opts {
		stmt = opt.Apply(stmt)
	}
	return stmt
}
