package metrics

import "github.com/marmos91/hatch/pkg/lifecycle"

// NewLifecycleMetrics creates a Prometheus-backed lifecycle.Metrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called) or no
// implementation has been registered. Pass the result straight to
// lifecycle.Runner and lifecycle.WithMetrics; nil disables collection.
//
// Example usage:
//
//	import _ "github.com/marmos91/hatch/pkg/metrics/prometheus"
//
//	metrics.InitRegistry()
//	m := metrics.NewLifecycleMetrics()
//	runner := &lifecycle.Runner{Mode: mode, Metrics: m}
func NewLifecycleMetrics() lifecycle.Metrics {
	if !IsEnabled() || newPrometheusLifecycleMetrics == nil {
		return nil
	}
	return newPrometheusLifecycleMetrics()
}

// newPrometheusLifecycleMetrics is set by pkg/metrics/prometheus.
// This indirection avoids import cycles while keeping the API clean.
var newPrometheusLifecycleMetrics func() lifecycle.Metrics

// RegisterLifecycleMetricsConstructor registers the Prometheus lifecycle
// metrics constructor. Called by pkg/metrics/prometheus during package
// initialization.
func RegisterLifecycleMetricsConstructor(constructor func() lifecycle.Metrics) {
	newPrometheusLifecycleMetrics = constructor
}
