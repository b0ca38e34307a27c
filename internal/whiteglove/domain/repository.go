package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// Upsert writes entries keyed by order number without touching paid flags.
	Upsert(ctx context.Context, db *gorm.DB, entries []*Entry) error
	FindByOrderNumbers(ctx context.Context, db *gorm.DB, orderNumbers []string) ([]Entry, error)
	FindByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]Entry, error)
	SetPaid(ctx context.Context, db *gorm.DB, ids []snowflake.ID, column string, paid bool) error
	// CountBackendOverdue counts backend-unpaid entries installed before cutoff,
	// optionally restricted to ids.
	CountBackendOverdue(ctx context.Context, db *gorm.DB, cutoff time.Time, ids []snowflake.ID) (int64, error)
}
