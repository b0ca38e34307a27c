package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertBatch(ctx context.Context, db *gorm.DB, batch *Batch) error
	RenameBatch(ctx context.Context, db *gorm.DB, id snowflake.ID, name string) error
	DeleteBatch(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindBatch(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Batch, error)
	ListBatches(ctx context.Context, db *gorm.DB) ([]Batch, error)

	InsertLines(ctx context.Context, db *gorm.DB, lines []*Line) error
	DeleteLines(ctx context.Context, db *gorm.DB, batchID snowflake.ID) error
	FindLine(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Line, error)
	ListLines(ctx context.Context, db *gorm.DB, batchID snowflake.ID) ([]Line, error)
	CountLines(ctx context.Context, db *gorm.DB, batchID snowflake.ID) (int64, error)
	SetLinePaid(ctx context.Context, db *gorm.DB, id snowflake.ID, column string, paid bool) error
}
