package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys for lifecycle spans.
const (
	AttrService     = "lifecycle.service"
	AttrServiceKind = "lifecycle.kind"
	AttrIndex       = "lifecycle.index"
	AttrMode        = "lifecycle.mode"
	AttrCount       = "lifecycle.count"
	AttrSignal      = "lifecycle.signal"
	AttrTimeout     = "lifecycle.timeout_ms"
	AttrTimedOut    = "lifecycle.timed_out"
	AttrPort        = "net.host.port"
)

// Span names used by the lifecycle package.
const (
	SpanServiceStart   = "lifecycle.start"
	SpanServiceRelease = "lifecycle.release"
	SpanShutdown       = "lifecycle.shutdown"
)

// Service returns an attribute for a service name.
func Service(name string) attribute.KeyValue {
	return attribute.String(AttrService, name)
}

// ServiceKind returns an attribute for a handle's release capability.
func ServiceKind(kind string) attribute.KeyValue {
	return attribute.String(AttrServiceKind, kind)
}

// Index returns an attribute for an initializer position.
func Index(i int) attribute.KeyValue {
	return attribute.Int(AttrIndex, i)
}

// Mode returns an attribute for a concurrency mode.
func Mode(mode string) attribute.KeyValue {
	return attribute.String(AttrMode, mode)
}

// Count returns an attribute for a number of services.
func Count(n int) attribute.KeyValue {
	return attribute.Int(AttrCount, n)
}

// Signal returns an attribute for the shutdown trigger.
func Signal(s string) attribute.KeyValue {
	return attribute.String(AttrSignal, s)
}

// Timeout returns an attribute for a timeout, in milliseconds.
func Timeout(d time.Duration) attribute.KeyValue {
	return attribute.Int64(AttrTimeout, d.Milliseconds())
}

// TimedOut returns an attribute marking a wait that hit its deadline.
func TimedOut(v bool) attribute.KeyValue {
	return attribute.Bool(AttrTimedOut, v)
}

// Port returns an attribute for a bound TCP port.
func Port(p int) attribute.KeyValue {
	return attribute.Int(AttrPort, p)
}

// StartServiceSpan starts a span around a single service start or release.
func StartServiceSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return StartSpan(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}
