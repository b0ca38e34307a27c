package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, agent *Agent) error
	Update(ctx context.Context, db *gorm.DB, agent *Agent) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Agent, error)
	FindByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]Agent, error)
	List(ctx context.Context, db *gorm.DB) ([]Agent, error)
	ListByManagerPayscale(ctx context.Context, db *gorm.DB, payscaleID snowflake.ID) ([]Agent, error)
	// InsertMissing inserts agents whose identifier is new and never touches existing rows.
	InsertMissing(ctx context.Context, db *gorm.DB, agents []*Agent) error

	InsertEdges(ctx context.Context, db *gorm.DB, edges []*AgentManager) error
	DeleteEdgesForManager(ctx context.Context, db *gorm.DB, managerID snowflake.ID) error
	DeleteEdgesForAgent(ctx context.Context, db *gorm.DB, agentID snowflake.ID) error
	// ListEdges returns every edge ordered by created_at, agent_id, manager_id.
	ListEdges(ctx context.Context, db *gorm.DB) ([]AgentManager, error)
	ListEdgesForManager(ctx context.Context, db *gorm.DB, managerID snowflake.ID) ([]AgentManager, error)
}
