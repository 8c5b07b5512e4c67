package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// yamlSafePath converts a filesystem path to a YAML-safe representation.
// On Windows, backslashes in double-quoted YAML strings are interpreted as
// escape sequences (e.g. \U -> Unicode escape), causing parse errors.
func yamlSafePath(p string) string {
	return filepath.ToSlash(p)
}

// isolateEnv clears every variable Load reads so the host environment
// cannot leak into a test.
func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, name := range []string{
		"PORT", "PARALLEL", "SHUTDOWN_TIMEOUT",
		"HATCH_PORT", "HATCH_PARALLEL", "HATCH_SHUTDOWN_TIMEOUT",
		"HATCH_HOST", "HATCH_LOGGING_LEVEL", "HATCH_METRICS_ENABLED",
		"HATCH_TELEMETRY_PROFILING_PROFILE_TYPES",
	} {
		t.Setenv(name, "")
	}
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoad_DefaultConfig(t *testing.T) {
	isolateEnv(t)

	configPath := writeConfig(t, "config.yaml", `
logging:
  level: "INFO"

port: 8081
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Port != 8081 {
		t.Errorf("Expected port 8081, got %d", cfg.Port)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected default output 'stdout', got %q", cfg.Logging.Output)
	}
	if cfg.ShutdownTimeout != 3*time.Second {
		t.Errorf("Expected default shutdown_timeout 3s, got %v", cfg.ShutdownTimeout)
	}
	if cfg.Parallel {
		t.Error("Expected parallel to default to false")
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	isolateEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err != nil {
		t.Fatalf("Expected no error when loading default config, got: %v", err)
	}

	if cfg.Port != DefaultPort {
		t.Errorf("Expected default port %d, got %d", DefaultPort, cfg.Port)
	}
	if cfg.ShutdownTimeout != DefaultShutdownTimeout {
		t.Errorf("Expected default shutdown timeout %v, got %v", DefaultShutdownTimeout, cfg.ShutdownTimeout)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	isolateEnv(t)

	configPath := writeConfig(t, "invalid.yaml", `
logging:
  level: INFO
  invalid yaml here [[[
`)

	if _, err := Load(configPath); err == nil {
		t.Fatal("Expected error with invalid YAML, got nil")
	}
}

func TestLoad_TOML(t *testing.T) {
	isolateEnv(t)

	configPath := writeConfig(t, "config.toml", `
port = 4000
shutdown_timeout = "10s"

[logging]
level = "WARN"
format = "json"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load TOML config: %v", err)
	}

	if cfg.Logging.Level != "WARN" {
		t.Errorf("Expected level 'WARN', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Expected format 'json', got %q", cfg.Logging.Format)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("Expected shutdown timeout 10s, got %v", cfg.ShutdownTimeout)
	}
}

func TestLoad_ShutdownTimeoutFromFileIsMilliseconds(t *testing.T) {
	isolateEnv(t)

	configPath := writeConfig(t, "config.yaml", "shutdown_timeout: 1500\n")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.ShutdownTimeout != 1500*time.Millisecond {
		t.Errorf("Expected 1.5s, got %v", cfg.ShutdownTimeout)
	}
}

func TestLoad_LifecycleEnvironmentVariables(t *testing.T) {
	tests := []struct {
		name         string
		env          map[string]string
		wantPort     int
		wantParallel bool
		wantTimeout  time.Duration
	}{
		{
			name:        "Defaults",
			env:         map[string]string{},
			wantPort:    3000,
			wantTimeout: 3 * time.Second,
		},
		{
			name:         "PlainNames",
			env:          map[string]string{"PORT": "8080", "PARALLEL": "1", "SHUTDOWN_TIMEOUT": "500"},
			wantPort:     8080,
			wantParallel: true,
			wantTimeout:  500 * time.Millisecond,
		},
		{
			name:        "DurationString",
			env:         map[string]string{"SHUTDOWN_TIMEOUT": "2s"},
			wantPort:    3000,
			wantTimeout: 2 * time.Second,
		},
		{
			name:        "ZeroTimeoutFallsBackToDefault",
			env:         map[string]string{"SHUTDOWN_TIMEOUT": "0"},
			wantPort:    3000,
			wantTimeout: 3 * time.Second,
		},
		{
			name:         "TruthyWords",
			env:          map[string]string{"PARALLEL": "yes"},
			wantPort:     3000,
			wantParallel: true,
			wantTimeout:  3 * time.Second,
		},
		{
			name:         "ParallelIsPresenceBased",
			env:          map[string]string{"PARALLEL": "false"},
			wantPort:     3000,
			wantParallel: true,
			wantTimeout:  3 * time.Second,
		},
		{
			name:        "PrefixedParallelIsParsed",
			env:         map[string]string{"PARALLEL": "1", "HATCH_PARALLEL": "off"},
			wantPort:    3000,
			wantTimeout: 3 * time.Second,
		},
		{
			name:        "UnparsableTimeoutFallsBackToDefault",
			env:         map[string]string{"SHUTDOWN_TIMEOUT": "abc"},
			wantPort:    3000,
			wantTimeout: 3 * time.Second,
		},
		{
			name:        "PrefixedNameWins",
			env:         map[string]string{"PORT": "8080", "HATCH_PORT": "9000"},
			wantPort:    9000,
			wantTimeout: 3 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load("")
			if err != nil {
				t.Fatalf("Failed to load config: %v", err)
			}
			if cfg.Port != tt.wantPort {
				t.Errorf("Expected port %d, got %d", tt.wantPort, cfg.Port)
			}
			if cfg.Parallel != tt.wantParallel {
				t.Errorf("Expected parallel %v, got %v", tt.wantParallel, cfg.Parallel)
			}
			if cfg.ShutdownTimeout != tt.wantTimeout {
				t.Errorf("Expected shutdown timeout %v, got %v", tt.wantTimeout, cfg.ShutdownTimeout)
			}
		})
	}
}

func TestLoad_NegativeShutdownTimeout(t *testing.T) {
	isolateEnv(t)
	t.Setenv("SHUTDOWN_TIMEOUT", "-500")

	if _, err := Load(""); err == nil {
		t.Fatal("Expected validation error for negative SHUTDOWN_TIMEOUT")
	}
}

func TestLoad_UnparsableShutdownTimeoutInFile(t *testing.T) {
	isolateEnv(t)
	configPath := writeConfig(t, "config.yaml", "shutdown_timeout: soon\n")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.ShutdownTimeout != DefaultShutdownTimeout {
		t.Errorf("Expected default shutdown timeout %v, got %v", DefaultShutdownTimeout, cfg.ShutdownTimeout)
	}
}

func TestLoad_InvalidPort(t *testing.T) {
	isolateEnv(t)
	t.Setenv("PORT", "70000")

	if _, err := Load(""); err == nil {
		t.Fatal("Expected validation error for port out of range")
	}
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	isolateEnv(t)
	t.Setenv("HATCH_LOGGING_LEVEL", "ERROR")
	t.Setenv("HATCH_METRICS_ENABLED", "true")
	t.Setenv("HATCH_TELEMETRY_PROFILING_PROFILE_TYPES", "cpu,goroutines")

	configPath := writeConfig(t, "config.yaml", `
logging:
  level: "INFO"
metrics:
  port: 9100
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Logging.Level != "ERROR" {
		t.Errorf("Expected level 'ERROR' from env var, got %q", cfg.Logging.Level)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Expected metrics enabled from env var")
	}
	if cfg.Metrics.Port != 9100 {
		t.Errorf("Expected metrics port 9100 from file, got %d", cfg.Metrics.Port)
	}
	if got := cfg.Telemetry.Profiling.ProfileTypes; len(got) != 2 || got[0] != "cpu" || got[1] != "goroutines" {
		t.Errorf("Expected profile types [cpu goroutines], got %v", got)
	}
}

func TestMustLoad_MissingExplicitFile(t *testing.T) {
	isolateEnv(t)

	_, err := MustLoad(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("Expected error for missing explicit config file")
	}
}

func TestLoadDotEnv(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("PORT=4100\nPARALLEL=true\n"), 0644); err != nil {
		t.Fatalf("Failed to write .env: %v", err)
	}

	// Existing values win over the file.
	t.Setenv("PARALLEL", "false")
	// godotenv only fills variables that are unset, so clear PORT completely.
	_ = os.Unsetenv("PORT")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv failed: %v", err)
	}

	if got := os.Getenv("PORT"); got != "4100" {
		t.Errorf("Expected PORT=4100 from .env, got %q", got)
	}
	if got := os.Getenv("PARALLEL"); got != "false" {
		t.Errorf("Expected PARALLEL to keep its value, got %q", got)
	}

	if err := LoadDotEnv(filepath.Join(dir, "absent.env")); err != nil {
		t.Errorf("Expected a missing .env to be ignored, got %v", err)
	}
}

func TestSaveConfig(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := GetDefaultConfig()
	cfg.Port = 5050
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to reload saved config: %v", err)
	}
	if loaded.Port != 5050 {
		t.Errorf("Expected port 5050 after reload, got %d", loaded.Port)
	}
}

func TestGetDefaultConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	path := GetDefaultConfigPath()

	if !filepath.IsAbs(path) {
		t.Errorf("Expected absolute path, got %q", path)
	}
	if filepath.Base(path) != "config.yaml" {
		t.Errorf("Expected filename 'config.yaml', got %q", filepath.Base(path))
	}
	if DefaultConfigExists() {
		t.Error("Expected no config in a fresh XDG_CONFIG_HOME")
	}
}

func TestGetConfigDir(t *testing.T) {
	dir := GetConfigDir()

	if filepath.Base(dir) != "hatch" {
		t.Errorf("Expected directory name 'hatch', got %q", filepath.Base(dir))
	}
}
