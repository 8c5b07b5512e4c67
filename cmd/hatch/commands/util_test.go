package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/marmos91/hatch/pkg/config"
)

func TestBuildServicesNoneEnabled(t *testing.T) {
	names, inits := buildServices(config.GetDefaultConfig())
	assert.Empty(t, names)
	assert.Empty(t, inits)
}

func TestBuildServicesOrder(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Journal.Enabled = true
	cfg.Metrics.Enabled = true
	cfg.Telemetry.Enabled = true
	cfg.Telemetry.Profiling.Enabled = true

	names, inits := buildServices(cfg)
	assert.Equal(t, []string{"tracing", "profiling", "metrics", "journal"}, names)
	assert.Len(t, inits, 4)
}

func TestGetConfigSource(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	assert.Equal(t, "/etc/hatch.yaml", getConfigSource("/etc/hatch.yaml"))
	assert.Equal(t, "defaults", getConfigSource(""))
}
