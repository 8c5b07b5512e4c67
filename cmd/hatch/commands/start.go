package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/hatch/internal/logger"
	"github.com/marmos91/hatch/pkg/bootstrap"
	"github.com/marmos91/hatch/pkg/config"
	"github.com/marmos91/hatch/pkg/httpserver"
	"github.com/marmos91/hatch/pkg/metrics"

	// Import prometheus metrics to register init() functions
	_ "github.com/marmos91/hatch/pkg/metrics/prometheus"
)

var envFile string

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the hatch server",
	Long: `Start the hatch server in the foreground.

Services start first, then the HTTP listener binds PORT. The process runs
until SIGINT or SIGTERM, then releases every service and closes the server
within SHUTDOWN_TIMEOUT milliseconds.

Use --config to specify a custom configuration file, or it will use the
default location at $XDG_CONFIG_HOME/hatch/config.yaml. A .env file in the
working directory is loaded first; variables already set take precedence.

Examples:
  # Start with defaults (port 3000)
  hatch start

  # Start services in parallel on another port
  PORT=8080 PARALLEL=1 hatch start

  # Start with custom config file
  hatch start --config /etc/hatch/config.yaml

  # Start with environment variable overrides
  HATCH_LOGGING_LEVEL=DEBUG hatch start`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().StringVar(&envFile, "env-file", ".env", "Path to a dotenv file loaded before configuration")
}

func runStart(cmd *cobra.Command, args []string) error {
	if err := config.LoadDotEnv(envFile); err != nil {
		return err
	}

	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	if err := InitLogger(cfg); err != nil {
		return err
	}

	logger.Info("Log level", "level", cfg.Logging.Level, "format", cfg.Logging.Format)
	logger.Info("Configuration loaded", logger.KeySource, getConfigSource(GetConfigFile()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
	}

	app := httpserver.NewApp()
	httpserver.RegisterDefaultRoutes(app)

	names, inits := buildServices(cfg)
	if len(names) > 0 {
		logger.Info("Services registered", "services", names)
	}

	res, err := bootstrap.New(*cfg, app, inits...).
		With(bootstrap.WithMetrics(metrics.NewLifecycleMetrics())).
		Start(ctx)
	if err != nil {
		logger.Error("Startup error", logger.KeyError, err)
		return fmt.Errorf("startup failed: %w", err)
	}

	select {
	case <-res.Shutdown.Done():
	case <-res.Server.Done():
		// The serve loop exited on its own; release services anyway.
		_ = res.Shutdown.Shutdown("server stopped")
	}

	if err := res.Shutdown.Err(); err != nil {
		logger.Warn("Shutdown completed with errors", logger.KeyError, err)
	}
	return nil
}

// getConfigSource returns a description of where the config was loaded from.
func getConfigSource(configFile string) string {
	if configFile != "" {
		return configFile
	}
	if config.DefaultConfigExists() {
		return config.GetDefaultConfigPath()
	}
	return "defaults"
}
