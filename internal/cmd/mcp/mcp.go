// Package mcp parses MCP command flags and serves CampTrack over stdio.
package mcp

import (
	"context"
	"flag"
	"fmt"

	"go.uber.org/zap"

	platformcmd "github.com/louisbranch/camptrack/internal/platform/cmd"
	"github.com/louisbranch/camptrack/internal/platform/logging"
	"github.com/louisbranch/camptrack/internal/platform/otel"
	"github.com/louisbranch/camptrack/internal/services/camps/app"
	mcpservice "github.com/louisbranch/camptrack/internal/services/mcp/service"
)

// Config holds MCP command configuration.
type Config struct {
	App       app.Config
	Log       logging.Config
	OTel      otel.Config
	Transport string `env:"CAMPTRACK_MCP_TRANSPORT" envDefault:"stdio"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := platformcmd.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.App.CampsDB, "camps-db", cfg.App.CampsDB, "camp SQLite database path")
	fs.StringVar(&cfg.App.NotificationsDB, "notifications-db", cfg.App.NotificationsDB, "notification SQLite database path")
	fs.StringVar(&cfg.App.Locale, "locale", cfg.App.Locale, "notification locale (en-US or pt-BR)")
	fs.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "log level")
	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "transport type: stdio")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if err := mcpservice.ValidateTransport(cfg.Transport); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run opens the stores and serves MCP until ctx ends.
func Run(ctx context.Context, cfg Config) error {
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	return platformcmd.RunWithTelemetryAndOptions(ctx, platformcmd.ServiceMCP, cfg.OTel, platformcmd.RunOptions{Logger: logger}, func(ctx context.Context) error {
		svc, closeStores, err := app.Open(ctx, cfg.App, app.Options{Logger: logger})
		if err != nil {
			return err
		}
		defer func() {
			if err := closeStores(); err != nil {
				logger.Warn("close stores", zap.Error(err))
			}
		}()

		server, err := mcpservice.New(svc, logger)
		if err != nil {
			return fmt.Errorf("build MCP server: %w", err)
		}
		return server.ServeStdio(ctx)
	})
}
