// Package testutil wires an in-memory store for service tests.
package testutil

import (
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/payrollrecon/internal/config"
	"github.com/smallbiznis/payrollrecon/internal/migration"
	"github.com/smallbiznis/payrollrecon/pkg/db"
	"gorm.io/gorm"
)

// NewDB returns a migrated in-memory database closed at test cleanup.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := migration.AutoMigrate(conn); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return conn
}

func NewNode(t *testing.T) *snowflake.Node {
	t.Helper()

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}
	return node
}

// Rules returns the default payroll rules.
func Rules() *config.PayrollConfigHolder {
	return config.NewStaticPayrollConfigHolder(config.DefaultPayrollConfig())
}
