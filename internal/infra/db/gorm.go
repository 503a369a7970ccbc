package db

import (
	"regexp"
	"strings"
	"time"

	"github.com/scanstack-io/Scantree/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

var sslmodeRe = regexp.MustCompile(`(?i)\bsslmode\s*=\s*\w+`)

// New opens the container store. The workload is JSONB-heavy row rewrites
// (permission lists, subject blobs, file lists), so the pool stays small and
// connections are recycled hourly.
func New(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsnFor(cfg)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpen)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdle)
	sqlDB.SetConnMaxLifetime(time.Hour)
	return db, nil
}

// dsnFor forces sslmode=require onto the configured DSN when TLS is enabled,
// replacing whatever the DSN itself says.
func dsnFor(cfg *config.Config) string {
	dsn := cfg.Database.DSN
	if !cfg.Database.EnableTLS {
		return dsn
	}
	if sslmodeRe.MatchString(dsn) {
		return sslmodeRe.ReplaceAllString(dsn, "sslmode=require")
	}
	return strings.TrimRight(dsn, " ") + " sslmode=require"
}

// RegisterOpenTelemetryPlugin instruments gorm with the global tracer
// provider; call after telemetry.SetupTracing.
func RegisterOpenTelemetryPlugin(db *gorm.DB) error {
	return db.Use(tracing.NewPlugin())
}
