package migration

import (
	"io/fs"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(embeddedMigrations, migrationsDir)
	require.NoError(t, err)

	names := map[string]bool{}
	for _, e := range entries {
		names[e.Name()] = true
	}
	require.True(t, names["000001_init.up.sql"])
	require.True(t, names["000001_init.down.sql"])
}

func TestApplyAutoMigratesSQLite(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, Apply(conn))

	for _, table := range []string{
		"plans", "personal_payscales", "personal_payscale_plan_commissions",
		"manager_payscales", "manager_payscale_plan_commissions", "agents",
		"agent_managers", "manager_agent_commissions", "white_glove_entries",
		"payroll_report_batches", "payroll_report_lines", "audit_logs",
	} {
		require.True(t, conn.Migrator().HasTable(table), table)
	}
}
