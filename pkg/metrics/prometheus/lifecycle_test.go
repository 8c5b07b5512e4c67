package prometheus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/hatch/pkg/lifecycle"
)

func TestLifecycleMetricsObserve(t *testing.T) {
	m := newLifecycleMetrics(prometheus.NewRegistry())

	m.ObserveStart("journal", lifecycle.Parallel, 5*time.Millisecond, nil)
	m.ObserveStart("journal", lifecycle.Parallel, 5*time.Millisecond, errors.New("boom"))
	m.ObserveRelease("journal", lifecycle.KindClose, time.Millisecond, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.starts.WithLabelValues("journal", "parallel", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.starts.WithLabelValues("journal", "parallel", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.releases.WithLabelValues("journal", "close", "success")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.startDuration))
}

func TestLifecycleMetricsShutdownOutcome(t *testing.T) {
	m := newLifecycleMetrics(prometheus.NewRegistry())

	m.ObserveShutdown(time.Second, false, nil)
	m.ObserveShutdown(3*time.Second, true, nil)
	m.ObserveShutdown(time.Second, true, errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.shutdowns.WithLabelValues("clean")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.shutdowns.WithLabelValues("timeout")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.shutdowns.WithLabelValues("error")))
}

func TestLifecycleMetricsGauges(t *testing.T) {
	m := newLifecycleMetrics(prometheus.NewRegistry())

	m.SetState(lifecycle.StateShuttingDown)
	m.SetServices(3)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.state))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.services))
}

func TestLifecycleMetricsNilSafe(t *testing.T) {
	var m *lifecycleMetrics
	assert.NotPanics(t, func() {
		m.ObserveStart("x", lifecycle.Sequential, 0, nil)
		m.ObserveRelease("x", lifecycle.KindStop, 0, nil)
		m.ObserveShutdown(0, false, nil)
		m.SetState(lifecycle.StateClosed)
		m.SetServices(0)
	})
}

func TestLifecycleMetricsWithCoordinator(t *testing.T) {
	m := newLifecycleMetrics(prometheus.NewRegistry())

	set := lifecycle.NewServiceSet(lifecycle.Sequential, m,
		lifecycle.Closeable("db", func(context.Context) error { return nil }),
	)
	c := lifecycle.NewCoordinator(noopServer{}, set, time.Second, lifecycle.WithMetrics(m))
	require.NoError(t, c.Shutdown("test"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.state))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.services))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.releases.WithLabelValues("db", "close", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.shutdowns.WithLabelValues("clean")))
}

type noopServer struct{}

func (noopServer) Shutdown(context.Context) error { return nil }
func (noopServer) Close() error                   { return nil }
