package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	agentdomain "github.com/smallbiznis/payrollrecon/internal/agent/domain"
	auditdomain "github.com/smallbiznis/payrollrecon/internal/audit/domain"
	payrolldomain "github.com/smallbiznis/payrollrecon/internal/payroll/domain"
	payscaledomain "github.com/smallbiznis/payrollrecon/internal/payscale/domain"
	plandomain "github.com/smallbiznis/payrollrecon/internal/plan/domain"
	whiteglovedomain "github.com/smallbiznis/payrollrecon/internal/whiteglove/domain"
	"gorm.io/gorm"
)

const migrationsDir = "migrations"

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// Models lists every persisted type, in dependency order.
func Models() []any {
	return []any{
		&plandomain.Plan{},
		&payscaledomain.PersonalPayscale{},
		&payscaledomain.PersonalPlanCommission{},
		&payscaledomain.ManagerPayscale{},
		&payscaledomain.ManagerPlanCommission{},
		&agentdomain.Agent{},
		&agentdomain.AgentManager{},
		&payscaledomain.ManagerAgentOverride{},
		&whiteglovedomain.Entry{},
		&payrolldomain.Batch{},
		&payrolldomain.Line{},
		&auditdomain.AuditLog{},
	}
}

// Apply brings the schema up to date. Postgres uses the embedded SQL
// migrations; other dialects fall back to AutoMigrate.
func Apply(conn *gorm.DB) error {
	if conn == nil {
		return errors.New("migration database handle is required")
	}
	if conn.Dialector.Name() != "postgres" {
		return AutoMigrate(conn)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return RunMigrations(sqlDB)
}

func AutoMigrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// RunMigrations applies the embedded postgres migrations.
func RunMigrations(db *sql.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// Do not call migrator.Close here because it would close the shared *sql.DB.

	return nil
}
