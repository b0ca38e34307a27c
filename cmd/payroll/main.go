package main

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/payrollrecon/internal/agent"
	"github.com/smallbiznis/payrollrecon/internal/audit"
	"github.com/smallbiznis/payrollrecon/internal/clock"
	"github.com/smallbiznis/payrollrecon/internal/config"
	"github.com/smallbiznis/payrollrecon/internal/logger"
	"github.com/smallbiznis/payrollrecon/internal/migration"
	"github.com/smallbiznis/payrollrecon/internal/observability"
	"github.com/smallbiznis/payrollrecon/internal/overdue"
	"github.com/smallbiznis/payrollrecon/internal/payment"
	"github.com/smallbiznis/payrollrecon/internal/payroll"
	"github.com/smallbiznis/payrollrecon/internal/payscale"
	"github.com/smallbiznis/payrollrecon/internal/plan"
	"github.com/smallbiznis/payrollrecon/internal/reference"
	"github.com/smallbiznis/payrollrecon/internal/server"
	"github.com/smallbiznis/payrollrecon/internal/whiteglove"
	"github.com/smallbiznis/payrollrecon/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		logger.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		clock.Module,
		audit.Module,

		// Functional Domains
		plan.Module,
		payscale.Module,
		agent.Module,
		whiteglove.Module,
		reference.Module,
		payroll.Module,
		payment.Module,
		overdue.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	node, err := snowflake.NewNode(cfg.SnowflakeNode)
	if err != nil {
		return nil, fmt.Errorf("snowflake node %d: %w", cfg.SnowflakeNode, err)
	}
	return node, nil
}
