package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, plan *Plan) error
	Update(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Plan, error)
	FindByName(ctx context.Context, db *gorm.DB, name string) (*Plan, error)
	List(ctx context.Context, db *gorm.DB) ([]Plan, error)
	// UpsertAmounts inserts plans by name, overwriting commission_amount on conflict.
	UpsertAmounts(ctx context.Context, db *gorm.DB, plans []*Plan) error
	// InsertMissing inserts plans whose name is not stored yet and leaves the rest untouched.
	InsertMissing(ctx context.Context, db *gorm.DB, plans []*Plan) error
}
