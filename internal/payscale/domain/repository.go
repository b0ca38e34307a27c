package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertPersonal(ctx context.Context, db *gorm.DB, payscale *PersonalPayscale) error
	UpdatePersonal(ctx context.Context, db *gorm.DB, payscale *PersonalPayscale) error
	DeletePersonal(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindPersonal(ctx context.Context, db *gorm.DB, id snowflake.ID) (*PersonalPayscale, error)
	ListPersonal(ctx context.Context, db *gorm.DB) ([]PersonalPayscale, error)
	InsertPersonalCommissions(ctx context.Context, db *gorm.DB, rows []*PersonalPlanCommission) error
	DeletePersonalCommissions(ctx context.Context, db *gorm.DB, payscaleID snowflake.ID) error
	ListPersonalCommissions(ctx context.Context, db *gorm.DB) ([]PersonalPlanCommission, error)

	InsertManager(ctx context.Context, db *gorm.DB, payscale *ManagerPayscale) error
	UpdateManager(ctx context.Context, db *gorm.DB, payscale *ManagerPayscale) error
	DeleteManager(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindManager(ctx context.Context, db *gorm.DB, id snowflake.ID) (*ManagerPayscale, error)
	ListManager(ctx context.Context, db *gorm.DB) ([]ManagerPayscale, error)
	InsertManagerCommissions(ctx context.Context, db *gorm.DB, rows []*ManagerPlanCommission) error
	DeleteManagerCommissions(ctx context.Context, db *gorm.DB, payscaleID snowflake.ID) error
	ListManagerCommissions(ctx context.Context, db *gorm.DB) ([]ManagerPlanCommission, error)

	InsertOverrides(ctx context.Context, db *gorm.DB, rows []*ManagerAgentOverride) error
	DeleteOverridesForManager(ctx context.Context, db *gorm.DB, managerID snowflake.ID) error
	ListOverridesForManager(ctx context.Context, db *gorm.DB, managerID snowflake.ID) ([]ManagerAgentOverride, error)
	ListOverrides(ctx context.Context, db *gorm.DB) ([]ManagerAgentOverride, error)
}
