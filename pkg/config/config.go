package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/marmos91/hatch/internal/logger"
	"github.com/marmos91/hatch/pkg/services/journal"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix for environment variable overrides (HATCH_LOGGING_LEVEL, ...).
const EnvPrefix = "HATCH"

// Config represents the hatch configuration.
//
// The three top-level lifecycle settings can also be set through the
// unprefixed PORT, PARALLEL and SHUTDOWN_TIMEOUT environment variables.
// PARALLEL is presence-based and an unparsable SHUTDOWN_TIMEOUT means the
// default.
//
// Configuration sources (in order of precedence):
//  1. CLI flags (highest priority)
//  2. Environment variables (HATCH_*, plus PORT, PARALLEL, SHUTDOWN_TIMEOUT)
//  3. .env file in the working directory
//  4. Configuration file (YAML or TOML)
//  5. Default values (lowest priority)
type Config struct {
	// Host is the interface the HTTP listener binds to. Empty means all interfaces.
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the HTTP listen port. 0 picks a free port.
	// Default: 3000
	Port int `mapstructure:"port" validate:"min=0,max=65535" yaml:"port"`

	// Parallel starts and releases services concurrently instead of in order.
	// Default: false
	Parallel bool `mapstructure:"parallel" yaml:"parallel"`

	// ShutdownTimeout bounds the whole graceful shutdown sequence.
	// Plain numbers are milliseconds; duration strings ("5s") are accepted too.
	// Default: 3s
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`

	// Server contains HTTP server timeouts
	Server ServerConfig `mapstructure:"server" yaml:"server"`

	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Telemetry controls OpenTelemetry distributed tracing
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`

	// Metrics contains Prometheus metrics server configuration
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// Journal controls the boot journal service
	Journal JournalConfig `mapstructure:"journal" yaml:"journal"`
}

// ServerConfig holds timeouts applied to the HTTP server.
type ServerConfig struct {
	// ReadTimeout is the maximum duration for reading an entire request
	// Default: 30s
	ReadTimeout time.Duration `mapstructure:"read_timeout" validate:"gte=0" yaml:"read_timeout"`

	// ReadHeaderTimeout is the maximum duration for reading request headers
	// Default: 10s
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" validate:"gte=0" yaml:"read_header_timeout"`

	// WriteTimeout is the maximum duration before timing out a response write
	// Default: 30s
	WriteTimeout time.Duration `mapstructure:"write_timeout" validate:"gte=0" yaml:"write_timeout"`

	// IdleTimeout is the maximum time to wait for the next keep-alive request
	// Default: 120s
	IdleTimeout time.Duration `mapstructure:"idle_timeout" validate:"gte=0" yaml:"idle_timeout"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive, normalized to uppercase)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format specifies the log output format
	// Valid values: text, json
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output specifies where logs are written
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// TelemetryConfig controls OpenTelemetry distributed tracing.
type TelemetryConfig struct {
	// Enabled controls whether distributed tracing is enabled
	// Default: false
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the OTLP collector endpoint (host:port)
	// Default: "localhost:4317"
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// Insecure controls whether to use a non-TLS connection
	// Default: true
	Insecure bool `mapstructure:"insecure" yaml:"insecure"`

	// SampleRate controls the trace sampling rate (0.0 to 1.0)
	// Default: 1.0
	SampleRate float64 `mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1" yaml:"sample_rate"`

	// Profiling contains Pyroscope continuous profiling configuration
	Profiling ProfilingConfig `mapstructure:"profiling" yaml:"profiling"`
}

// ProfilingConfig controls Pyroscope continuous profiling.
type ProfilingConfig struct {
	// Enabled controls whether continuous profiling is enabled
	// Default: false
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the Pyroscope server URL
	// Default: "http://localhost:4040"
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// ProfileTypes specifies which profile types to collect
	// Valid values: cpu, alloc_objects, alloc_space, inuse_objects, inuse_space,
	//               goroutines, mutex_count, mutex_duration, block_count, block_duration
	ProfileTypes []string `mapstructure:"profile_types" validate:"dive,oneof=cpu alloc_objects alloc_space inuse_objects inuse_space goroutines mutex_count mutex_duration block_count block_duration" yaml:"profile_types"`
}

// MetricsConfig configures the Prometheus metrics HTTP server.
// When Enabled is false, no metrics are collected.
type MetricsConfig struct {
	// Enabled controls whether metrics collection and HTTP server are enabled
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Host is the interface the metrics server binds to
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the HTTP port for the metrics endpoint
	// Default: 9090
	Port int `mapstructure:"port" validate:"min=0,max=65535" yaml:"port"`

	// Path is the URL path metrics are served on
	// Default: /metrics
	Path string `mapstructure:"path" validate:"omitempty,startswith=/" yaml:"path"`
}

// JournalConfig controls the boot journal service.
type JournalConfig struct {
	// Enabled registers the journal service at startup
	// Default: false
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// History is how many recent boots GET /journal returns
	// Default: 20
	History int `mapstructure:"history" validate:"omitempty,min=1,max=1000" yaml:"history"`

	// Database selects and configures the journal database (SQLite or PostgreSQL)
	Database journal.DatabaseConfig `mapstructure:"database" yaml:"database"`
}

// Load loads configuration from file, environment, and defaults.
//
// A missing configuration file is not an error: defaults and environment
// variables still apply.
//
// Parameters:
//   - configPath: Path to config file (empty string uses default location)
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: Configuration loading or validation error
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setupViper(v, configPath)

	if _, err := readConfigFile(v); err != nil {
		return nil, err
	}

	applyLifecycleEnv(v)

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration with helpful error messages.
// Unlike Load, an explicitly named config file must exist.
func MustLoad(configPath string) (*Config, error) {
	if configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found: %s\n\n"+
				"Please create the configuration file:\n"+
				"  hatch init --config %s",
				configPath, configPath)
		}
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return cfg, nil
}

// LoadDotEnv loads variables from a .env file into the process environment.
// Variables already set in the environment are left untouched, and a missing
// file is ignored.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// SaveConfig saves the configuration to the specified file path in YAML format.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Config files may carry database passwords.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// setupViper configures viper with defaults, environment variables and config file settings.
func setupViper(v *viper.Viper, configPath string) {
	setViperDefaults(v)

	// Environment variables use the HATCH_ prefix and underscores
	// Example: HATCH_LOGGING_LEVEL=DEBUG
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The lifecycle settings also answer to their unprefixed names.
	// Prefixed names win when both are set.
	// PARALLEL is handled by applyLifecycleEnv.
	_ = v.BindEnv("port", EnvPrefix+"_PORT", "PORT")
	_ = v.BindEnv("shutdown_timeout", EnvPrefix+"_SHUTDOWN_TIMEOUT", "SHUTDOWN_TIMEOUT")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Default location: $XDG_CONFIG_HOME/hatch/config.{yaml,toml}
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// applyLifecycleEnv applies the lenient rules of the unprefixed lifecycle
// variables:
//   - PARALLEL enables parallel mode whenever it is non-empty, "false" included.
//     HATCH_PARALLEL, when set, wins and is parsed as a boolean.
//   - An unparsable shutdown timeout falls back to DefaultShutdownTimeout.
func applyLifecycleEnv(v *viper.Viper) {
	if strings.TrimSpace(os.Getenv(EnvPrefix+"_PARALLEL")) == "" &&
		strings.TrimSpace(os.Getenv("PARALLEL")) != "" {
		v.Set("parallel", true)
	}

	if raw, ok := v.Get("shutdown_timeout").(string); ok {
		if _, err := ParseMillis(raw); err != nil {
			logger.Warn("Invalid shutdown timeout, using default",
				"value", raw,
				logger.KeyTimeout, DefaultShutdownTimeout.String(),
			)
			v.Set("shutdown_timeout", DefaultShutdownTimeout)
		}
	}
}

// readConfigFile reads the configuration file if it exists.
// Returns (fileFound, error) where fileFound indicates if a config file was found.
func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}

	return true, nil
}

// getConfigDir returns the configuration directory path.
//
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config, or falls back to the
// current directory if the home directory cannot be determined.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "hatch")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "hatch")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists checks if a config file exists at the default location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetConfigDir returns the configuration directory path (exposed for init command).
func GetConfigDir() string {
	return getConfigDir()
}
