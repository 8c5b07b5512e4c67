package config

import (
	"strings"
	"time"

	"github.com/marmos91/hatch/pkg/services/journal"
	"github.com/spf13/viper"
)

// Default values for the lifecycle settings.
const (
	DefaultPort            = 3000
	DefaultShutdownTimeout = 3000 * time.Millisecond
	DefaultMetricsPort     = 9090
	DefaultJournalHistory  = 20
)

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// Default Strategy:
//   - Zero values (0, "", false, nil) are replaced with defaults
//   - Explicit values are preserved
//
// Port is the exception: 0 is a valid request for a free port, so its default
// comes from the viper layer instead.
func ApplyDefaults(cfg *Config) {
	applyShutdownTimeoutDefaults(cfg)
	applyServerDefaults(&cfg.Server)
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyMetricsDefaults(&cfg.Metrics)
	applyJournalDefaults(&cfg.Journal)
}

// applyShutdownTimeoutDefaults sets the shutdown timeout default.
func applyShutdownTimeoutDefaults(cfg *Config) {
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
}

// applyServerDefaults sets HTTP server timeout defaults.
func applyServerDefaults(cfg *ServerConfig) {
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.ReadHeaderTimeout == 0 {
		cfg.ReadHeaderTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 30 * time.Second
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 120 * time.Second
	}
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	cfg.Format = strings.ToLower(cfg.Format)

	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

// applyTelemetryDefaults sets OpenTelemetry defaults.
func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}

	applyProfilingDefaults(&cfg.Profiling)
}

// applyProfilingDefaults sets Pyroscope profiling defaults.
func applyProfilingDefaults(cfg *ProfilingConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "http://localhost:4040"
	}
	if len(cfg.ProfileTypes) == 0 {
		cfg.ProfileTypes = []string{
			"cpu",
			"alloc_objects",
			"alloc_space",
			"inuse_objects",
			"inuse_space",
			"goroutines",
		}
	}
}

// applyMetricsDefaults sets metrics defaults.
func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Enabled && cfg.Port == 0 {
		cfg.Port = DefaultMetricsPort
	}
	if cfg.Path == "" {
		cfg.Path = "/metrics"
	}
}

// applyJournalDefaults sets boot journal defaults.
func applyJournalDefaults(cfg *JournalConfig) {
	if cfg.History == 0 {
		cfg.History = DefaultJournalHistory
	}
	cfg.Database.ApplyDefaults()
}

// setViperDefaults registers every known key with viper so that environment
// overrides reach Unmarshal even when no config file mentions the key.
func setViperDefaults(v *viper.Viper) {
	v.SetDefault("host", "")
	v.SetDefault("port", DefaultPort)
	v.SetDefault("parallel", false)
	v.SetDefault("shutdown_timeout", DefaultShutdownTimeout)

	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.read_header_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)

	v.SetDefault("logging.level", "INFO")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output", "stdout")

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.endpoint", "localhost:4317")
	v.SetDefault("telemetry.insecure", true)
	v.SetDefault("telemetry.sample_rate", 1.0)
	v.SetDefault("telemetry.profiling.enabled", false)
	v.SetDefault("telemetry.profiling.endpoint", "http://localhost:4040")
	v.SetDefault("telemetry.profiling.profile_types", []string{})

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.host", "")
	v.SetDefault("metrics.port", DefaultMetricsPort)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("journal.enabled", false)
	v.SetDefault("journal.history", DefaultJournalHistory)
	v.SetDefault("journal.database.type", string(journal.DatabaseTypeSQLite))
	v.SetDefault("journal.database.sqlite.path", "")
	v.SetDefault("journal.database.postgres.host", "")
	v.SetDefault("journal.database.postgres.port", 0)
	v.SetDefault("journal.database.postgres.database", "")
	v.SetDefault("journal.database.postgres.user", "")
	v.SetDefault("journal.database.postgres.password", "")
	v.SetDefault("journal.database.postgres.sslmode", "")
	v.SetDefault("journal.database.postgres.max_open_conns", 0)
	v.SetDefault("journal.database.postgres.max_idle_conns", 0)
}

// GetDefaultConfig returns a Config struct with all default values applied.
//
// This is useful for:
//   - Generating sample configuration files
//   - Testing
func GetDefaultConfig() *Config {
	cfg := &Config{
		Port: DefaultPort,
		Telemetry: TelemetryConfig{
			Insecure: true,
		},
		Metrics: MetricsConfig{
			Port: DefaultMetricsPort,
		},
		Journal: JournalConfig{
			Database: journal.DatabaseConfig{
				Type: journal.DatabaseTypeSQLite,
			},
		},
	}

	ApplyDefaults(cfg)
	return cfg
}
