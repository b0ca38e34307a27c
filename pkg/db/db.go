package db

import (
	"context"
	"fmt"
	"time"

	obslogger "github.com/smallbiznis/payrollrecon/internal/observability/logger"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("db",
	fx.Provide(ConfigFrom),
	fx.Provide(Open),
	fx.Invoke(registerHooks),
)

// Open connects to the configured database, applies pool settings and
// registers query tracing on tp.
func Open(cfg Config, log *zap.Logger, tp trace.TracerProvider) (*gorm.DB, error) {
	dialector, err := Dialect(cfg)
	if err != nil {
		return nil, err
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger:         obslogger.NewGormLogger(obslogger.DefaultGormLoggerConfig()),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Type, err)
	}

	if err := Instrument(conn, cfg.Name, tp); err != nil {
		return nil, err
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxIdleConn > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConn)
	}
	if cfg.MaxOpenConn > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConn)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Second)
	}

	log.Info("database connected", zap.String("type", cfg.Type))
	return conn, nil
}

// Instrument emits a span per query. Bound values stay out of the spans since
// they carry agent and order data.
func Instrument(conn *gorm.DB, name string, tp trace.TracerProvider) error {
	if err := conn.Use(otelgorm.NewPlugin(
		otelgorm.WithDBName(name),
		otelgorm.WithTracerProvider(tp),
		otelgorm.WithoutQueryVariables(),
	)); err != nil {
		return fmt.Errorf("register gorm tracing: %w", err)
	}
	return nil
}

func registerHooks(lc fx.Lifecycle, conn *gorm.DB) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})
}
