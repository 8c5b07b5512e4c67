package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/hatch/pkg/lifecycle"
)

func TestRegistryDisabledByDefault(t *testing.T) {
	resetRegistry()
	t.Cleanup(resetRegistry)

	assert.False(t, IsEnabled())
	assert.Nil(t, GetRegistry())
	assert.Nil(t, NewLifecycleMetrics())

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestInitRegistry(t *testing.T) {
	resetRegistry()
	t.Cleanup(resetRegistry)

	reg := InitRegistry()
	require.NotNil(t, reg)
	assert.Same(t, reg, InitRegistry())
	assert.True(t, IsEnabled())

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

type stubMetrics struct{ lifecycle.Metrics }

func TestNewLifecycleMetricsUsesRegisteredConstructor(t *testing.T) {
	resetRegistry()
	prev := newPrometheusLifecycleMetrics
	t.Cleanup(func() {
		resetRegistry()
		newPrometheusLifecycleMetrics = prev
	})

	RegisterLifecycleMetricsConstructor(func() lifecycle.Metrics { return stubMetrics{} })
	assert.Nil(t, NewLifecycleMetrics(), "disabled registry yields no metrics")

	InitRegistry()
	assert.Equal(t, stubMetrics{}, NewLifecycleMetrics())
}
