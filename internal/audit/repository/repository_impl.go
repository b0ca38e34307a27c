package repository

import (
	"context"
	"strings"

	auditdomain "github.com/smallbiznis/payrollrecon/internal/audit/domain"
	"github.com/smallbiznis/payrollrecon/pkg/repository"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() auditdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *auditdomain.AuditLog) error {
	if entry == nil {
		return nil
	}
	return repository.ProvideStore[auditdomain.AuditLog](db).Create(ctx, entry)
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter auditdomain.ListFilter) ([]*auditdomain.AuditLog, error) {
	var rows []*auditdomain.AuditLog
	err := db.WithContext(ctx).
		Scopes(matchColumn("action", filter.Action),
			matchColumn("target_type", filter.TargetType),
			matchColumn("target_id", filter.TargetID),
			createdBetween(filter),
			afterCursor(filter.Cursor),
		).
		Order("created_at desc").
		Order("id desc").
		Limit(filter.Limit + 1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func matchColumn(column, value string) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		value = strings.TrimSpace(value)
		if value == "" {
			return tx
		}
		return tx.Where(column+" = ?", value)
	}
}

func createdBetween(filter auditdomain.ListFilter) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if filter.StartAt != nil {
			tx = tx.Where("created_at >= ?", filter.StartAt.UTC())
		}
		if filter.EndAt != nil {
			tx = tx.Where("created_at <= ?", filter.EndAt.UTC())
		}
		return tx
	}
}

// afterCursor keeps rows strictly older than the cursor in (created_at, id) order.
func afterCursor(cursor *auditdomain.AuditCursor) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if cursor == nil {
			return tx
		}
		at := cursor.CreatedAt.UTC()
		return tx.Where("(created_at < ? OR (created_at = ? AND id < ?))", at, at, cursor.ID)
	}
}
