package commands

import (
	"fmt"

	"github.com/marmos91/hatch/internal/logger"
	"github.com/marmos91/hatch/internal/telemetry"
	"github.com/marmos91/hatch/pkg/config"
	"github.com/marmos91/hatch/pkg/lifecycle"
	"github.com/marmos91/hatch/pkg/services/journal"
	metricsvc "github.com/marmos91/hatch/pkg/services/metrics"
	telemetrysvc "github.com/marmos91/hatch/pkg/services/telemetry"
)

// serviceName is reported to trace and profile backends.
const serviceName = "hatch"

// InitLogger initializes the structured logger from configuration.
func InitLogger(cfg *config.Config) error {
	loggerCfg := logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}
	if err := logger.Init(loggerCfg); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// buildServices returns the enabled bundled services in start order:
// tracing, profiling, metrics, journal.
func buildServices(cfg *config.Config) ([]string, []lifecycle.Initializer) {
	var (
		names []string
		inits []lifecycle.Initializer
	)
	add := func(name string, init lifecycle.Initializer) {
		names = append(names, name)
		inits = append(inits, init)
	}

	if cfg.Telemetry.Enabled {
		add(telemetrysvc.TracingService, telemetrysvc.Tracing(telemetry.Config{
			Enabled:        true,
			ServiceName:    serviceName,
			ServiceVersion: Version,
			Endpoint:       cfg.Telemetry.Endpoint,
			Insecure:       cfg.Telemetry.Insecure,
			SampleRate:     cfg.Telemetry.SampleRate,
		}))
	}

	if cfg.Telemetry.Profiling.Enabled {
		add(telemetrysvc.ProfilingService, telemetrysvc.Profiling(telemetry.ProfilingConfig{
			Enabled:        true,
			ServiceName:    serviceName,
			ServiceVersion: Version,
			Endpoint:       cfg.Telemetry.Profiling.Endpoint,
			ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
			Tags:           map[string]string{"mode": lifecycle.ModeFor(cfg.Parallel).String()},
		}))
	}

	if cfg.Metrics.Enabled {
		add(metricsvc.ServiceName, metricsvc.Server(metricsvc.Config{
			Host: cfg.Metrics.Host,
			Port: cfg.Metrics.Port,
			Path: cfg.Metrics.Path,
		}))
	}

	if cfg.Journal.Enabled {
		add(journal.ServiceName, journal.Initializer(journal.Options{
			Database: cfg.Journal.Database,
			History:  cfg.Journal.History,
			Version:  Version,
		}))
	}

	return names, inits
}
