// Package telemetry wraps tracing and profiling setup as lifecycle services,
// so exporters are flushed and stopped by the shutdown sequence.
package telemetry

import (
	"context"

	"github.com/marmos91/hatch/internal/logger"
	"github.com/marmos91/hatch/internal/telemetry"
	"github.com/marmos91/hatch/pkg/httpserver"
	"github.com/marmos91/hatch/pkg/lifecycle"
)

// Service names.
const (
	TracingService   = "tracing"
	ProfilingService = "profiling"
)

// Tracing returns the initializer that installs the OTLP tracer provider.
// Its Stoppable handle flushes pending spans and shuts the exporter down.
func Tracing(cfg telemetry.Config) lifecycle.Initializer {
	return func(ctx context.Context, _ *httpserver.App) (lifecycle.Handle, error) {
		shutdown, err := telemetry.Init(ctx, cfg)
		if err != nil {
			return lifecycle.Handle{}, err
		}

		if cfg.Enabled {
			logger.InfoCtx(ctx, "Telemetry enabled",
				"endpoint", cfg.Endpoint,
				"sample_rate", cfg.SampleRate,
			)
		}

		return lifecycle.Stoppable(TracingService, shutdown), nil
	}
}

// Profiling returns the initializer that starts the Pyroscope profiler.
// Its Stoppable handle stops the profiler.
func Profiling(cfg telemetry.ProfilingConfig) lifecycle.Initializer {
	return func(ctx context.Context, _ *httpserver.App) (lifecycle.Handle, error) {
		shutdown, err := telemetry.InitProfiling(cfg)
		if err != nil {
			return lifecycle.Handle{}, err
		}

		if cfg.Enabled {
			logger.InfoCtx(ctx, "Profiling enabled",
				"endpoint", cfg.Endpoint,
				"profile_types", cfg.ProfileTypes,
			)
		}

		return lifecycle.Stoppable(ProfilingService, func(context.Context) error {
			return shutdown()
		}), nil
	}
}
