package bootstrap

import (
	"log/slog"
	"os"

	"github.com/cardtycoon/cardtycoon/internal/config"
	"github.com/cardtycoon/cardtycoon/internal/logger"
)

// SetupLogger initializes the default slog logger from configuration.
func SetupLogger(cfg *config.Config) {
	logCfg := logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}
	slog.SetDefault(slog.New(logCfg.Handler(os.Stdout)))

	slog.Info("Logging initialized", "level", logCfg.LogLevel(), "format", cfg.LogFormat)
}
