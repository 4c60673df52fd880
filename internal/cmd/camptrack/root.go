// Package camptrack builds the operator command line for camps, leader
// schedules, notifications and messages.
package camptrack

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	platformcmd "github.com/louisbranch/camptrack/internal/platform/cmd"
	apperrors "github.com/louisbranch/camptrack/internal/platform/errors"
	"github.com/louisbranch/camptrack/internal/platform/logging"
	"github.com/louisbranch/camptrack/internal/platform/otel"
	"github.com/louisbranch/camptrack/internal/services/camps/app"
)

// Config holds operator command configuration.
type Config struct {
	App  app.Config
	Log  logging.Config
	OTel otel.Config
	// User is the operator identity used for notifications and messages.
	User string `env:"CAMPTRACK_USER" envDefault:"admin"`
}

// cli carries state shared by every subcommand of one invocation.
type cli struct {
	cfg    Config
	logger *zap.Logger
	svc    *app.Service
}

// NewRootCommand builds the camptrack command tree. Persistent flags override
// the environment values in cfg.
func NewRootCommand(cfg Config, logger *zap.Logger) *cobra.Command {
	_, root := newCLI(cfg, logger)
	return root
}

func newCLI(cfg Config, logger *zap.Logger) (*cli, *cobra.Command) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &cli{cfg: cfg, logger: logger}
	root := &cobra.Command{
		Use:   "camptrack",
		Short: "Manage scout camps, leader schedules and notifications",
		Long: `camptrack keeps the camp registry, scout leader assignments,
the notification ledger and the leader mailbox.

Every command opens the configured SQLite stores, applies one change
and closes them again.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.cfg.App.CampsDB, "camps-db", cfg.App.CampsDB, "camp SQLite database path")
	flags.StringVar(&c.cfg.App.NotificationsDB, "notifications-db", cfg.App.NotificationsDB, "notification SQLite database path")
	flags.StringVar(&c.cfg.App.Locale, "locale", cfg.App.Locale, "message locale (en-US or pt-BR)")
	flags.StringVarP(&c.cfg.User, "user", "u", cfg.User, "operator identity for notifications and messages")

	root.AddCommand(
		c.campsCommand(),
		c.foodCommand(),
		c.activitiesCommand(),
		c.incidentsCommand(),
		c.leadersCommand(),
		c.notificationsCommand(),
		c.messagesCommand(),
		c.seedCommand(),
	)
	return c, root
}

// withService opens the stores around fn so each invocation is one unit of
// work.
func (c *cli) withService(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
			cmd.SetContext(ctx)
		}
		svc, closeStores, err := app.Open(ctx, c.cfg.App, app.Options{Logger: c.logger})
		if err != nil {
			return err
		}
		defer func() {
			if err := closeStores(); err != nil {
				c.logger.Warn("close stores", zap.Error(err))
			}
		}()
		c.svc = svc
		return fn(cmd, args)
	}
}

// user returns the operator identity or a localized error when it is blank.
func (c *cli) user() (string, error) {
	user := strings.TrimSpace(c.cfg.User)
	if user == "" {
		return "", apperrors.New(apperrors.CodeUserRequired, "user is required")
	}
	return user, nil
}

// ParseConfig loads the command configuration from the environment.
func ParseConfig() (Config, error) {
	var cfg Config
	if err := platformcmd.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Execute runs the command line with args and returns the process exit code.
func Execute(ctx context.Context, cfg Config, args []string, stdout, stderr io.Writer) int {
	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(stderr, "configure logging: %v\n", err)
		return 2
	}
	defer func() { _ = logger.Sync() }()

	c, root := newCLI(cfg, logger)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err = platformcmd.RunWithTelemetryAndOptions(ctx, platformcmd.ServiceCampTrack, cfg.OTel, platformcmd.RunOptions{Logger: logger}, root.ExecuteContext)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", apperrors.LocalizedMessage(err, c.cfg.App.Locale))
		return 1
	}
	return 0
}
