package repository

import (
	"context"

	"github.com/smallbiznis/payrollrecon/pkg/db/option"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository is a generic record store over a single gorm model.
type Repository[T any] interface {
	WithTrx(tx *gorm.DB) Repository[T]
	Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error)
	FindOne(ctx context.Context, query *T, opts ...option.QueryOption) (*T, error)
	Create(ctx context.Context, resource *T) error
	Update(ctx context.Context, resourceID any, fields map[string]any) error
	UpdateWhere(ctx context.Context, fields map[string]any, opts ...option.QueryOption) (int64, error)
	Delete(ctx context.Context, resourceID any) error
	DeleteWhere(ctx context.Context, opts ...option.QueryOption) (int64, error)
	Count(ctx context.Context, query *T, opts ...option.QueryOption) (int64, error)
	BatchCreate(ctx context.Context, resources []*T) error
	Upsert(ctx context.Context, resources []*T, onConflict clause.OnConflict) error
}
