package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/viper"

	"pypln-web/internal/bootstrap"
	"pypln-web/internal/config"
	"pypln-web/internal/pkg/logger"
)

// loadConfig reads the file named by --config and applies --log-level on
// top of the file and environment settings.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadFile(viper.GetString("config"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if level := viper.GetString("log.level"); level != "" {
		cfg.Log.Level = level
	}
	return cfg, logger.New(cfg.Log), nil
}

func newApp(ctx context.Context) (*bootstrap.App, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return bootstrap.New(ctx, cfg, log)
}
