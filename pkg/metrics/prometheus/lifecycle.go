package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marmos91/hatch/pkg/lifecycle"
	"github.com/marmos91/hatch/pkg/metrics"
)

func init() {
	metrics.RegisterLifecycleMetricsConstructor(NewLifecycleMetrics)
}

// durationBuckets covers service start and release times, in milliseconds.
var durationBuckets = []float64{
	1,     // 1ms - in-process services
	5,     // 5ms
	10,    // 10ms
	50,    // 50ms - local connections
	100,   // 100ms
	500,   // 500ms - remote connections
	1000,  // 1s
	3000,  // 3s - default shutdown timeout
	10000, // 10s
}

// lifecycleMetrics is the Prometheus implementation of lifecycle.Metrics.
type lifecycleMetrics struct {
	starts           *prometheus.CounterVec
	startDuration    *prometheus.HistogramVec
	releases         *prometheus.CounterVec
	releaseDuration  *prometheus.HistogramVec
	shutdowns        *prometheus.CounterVec
	shutdownDuration prometheus.Histogram
	state            prometheus.Gauge
	services         prometheus.Gauge
}

// NewLifecycleMetrics creates a new Prometheus-backed lifecycle.Metrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewLifecycleMetrics() lifecycle.Metrics {
	if !metrics.IsEnabled() {
		return nil
	}
	return newLifecycleMetrics(metrics.GetRegistry())
}

func newLifecycleMetrics(reg prometheus.Registerer) *lifecycleMetrics {
	return &lifecycleMetrics{
		starts: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "hatch_service_starts_total",
				Help: "Total number of service initializer runs by outcome",
			},
			[]string{"service", "mode", "status"}, // status: "success", "error"
		),
		startDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hatch_service_start_duration_milliseconds",
				Help:    "Duration of service initializers in milliseconds",
				Buckets: durationBuckets,
			},
			[]string{"service"},
		),
		releases: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "hatch_service_releases_total",
				Help: "Total number of service releases by capability and outcome",
			},
			[]string{"service", "kind", "status"}, // kind: "stop", "close"
		),
		releaseDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hatch_service_release_duration_milliseconds",
				Help:    "Duration of service releases in milliseconds",
				Buckets: durationBuckets,
			},
			[]string{"service", "kind"},
		),
		shutdowns: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "hatch_shutdowns_total",
				Help: "Total number of completed shutdown sequences by outcome",
			},
			[]string{"outcome"}, // "clean", "timeout", "error"
		),
		shutdownDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "hatch_shutdown_duration_milliseconds",
				Help:    "Duration of the shutdown sequence in milliseconds",
				Buckets: durationBuckets,
			},
		),
		state: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "hatch_lifecycle_state",
				Help: "Shutdown coordinator state (0=running, 1=shutting_down, 2=closed)",
			},
		),
		services: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "hatch_services_running",
				Help: "Number of services started and not yet released",
			},
		),
	}
}

func (m *lifecycleMetrics) ObserveStart(service string, mode lifecycle.Mode, duration time.Duration, err error) {
	if m == nil {
		return
	}

	m.starts.WithLabelValues(service, mode.String(), status(err)).Inc()
	m.startDuration.WithLabelValues(service).Observe(milliseconds(duration))
}

func (m *lifecycleMetrics) ObserveRelease(service string, kind lifecycle.Kind, duration time.Duration, err error) {
	if m == nil {
		return
	}

	m.releases.WithLabelValues(service, kind.String(), status(err)).Inc()
	m.releaseDuration.WithLabelValues(service, kind.String()).Observe(milliseconds(duration))
}

func (m *lifecycleMetrics) ObserveShutdown(duration time.Duration, timedOut bool, err error) {
	if m == nil {
		return
	}

	outcome := "clean"
	switch {
	case err != nil:
		outcome = "error"
	case timedOut:
		outcome = "timeout"
	}

	m.shutdowns.WithLabelValues(outcome).Inc()
	m.shutdownDuration.Observe(milliseconds(duration))
}

func (m *lifecycleMetrics) SetState(state lifecycle.State) {
	if m == nil {
		return
	}
	m.state.Set(float64(state))
}

func (m *lifecycleMetrics) SetServices(count int) {
	if m == nil {
		return
	}
	m.services.Set(float64(count))
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func milliseconds(d time.Duration) float64 {
	return d.Seconds() * 1000
}
