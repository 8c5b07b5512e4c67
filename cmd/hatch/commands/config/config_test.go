package config

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/hatch/pkg/config"
)

func TestGenerateSchema(t *testing.T) {
	data, err := generateSchema()
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal(data, &schema))
	assert.Equal(t, "Hatch Configuration", schema["title"])

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	for _, key := range []string{"port", "parallel", "shutdown_timeout", "logging", "journal"} {
		assert.Contains(t, props, key)
	}
}

func TestSummary(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Parallel = true

	rows := summary(cfg).Rows()
	values := make(map[string]string, len(rows))
	for _, row := range rows {
		values[row[0]] = row[1]
	}

	assert.Equal(t, "-", values["host"])
	assert.Equal(t, "3000", values["port"])
	assert.Equal(t, "true", values["parallel"])
	assert.Equal(t, "3s", values["shutdown_timeout"])
}
