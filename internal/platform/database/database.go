// Package database opens the relational store selected by configuration.
package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pypln-web/internal/config"
	"pypln-web/internal/platform/mysql"
	"pypln-web/internal/platform/postgres"
	"pypln-web/internal/platform/sqlite"
)

var ErrUnknownDriver = errors.New("unknown database driver")

// Open connects to the configured database. SQL logging goes through log
// at warn level so slow queries show up next to the request logs.
func Open(ctx context.Context, cfg *config.Config, log *slog.Logger) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: Logger(log)}

	switch strings.ToLower(cfg.Database.Driver) {
	case "mysql", "":
		return mysql.New(ctx, cfg.MySQLDSN(), gormCfg)
	case "postgres", "postgresql":
		return postgres.New(ctx, cfg.PostgresDSN(), gormCfg)
	case "sqlite":
		return sqlite.New(cfg.Database.Path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Database.Driver)
	}
}

func Logger(log *slog.Logger) logger.Interface {
	if log == nil {
		log = slog.Default()
	}
	return logger.New(slog.NewLogLogger(log.Handler(), slog.LevelWarn), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}
