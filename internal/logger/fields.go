package logger

import (
	"log/slog"
	"time"
)

// Standard field keys for structured logging.
// Use these keys consistently so lifecycle logs can be queried across services.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id"
	KeySpanID  = "span_id"

	// ========================================================================
	// Lifecycle
	// ========================================================================
	KeyService = "service" // Service name as reported by its handle
	KeyKind    = "kind"    // Release capability: stop, close
	KeyMode    = "mode"    // Concurrency mode: sequential, parallel
	KeyIndex   = "index"   // Position of an initializer in the registration list
	KeyCount   = "count"   // Number of services
	KeyState   = "state"   // Coordinator state
	KeySignal  = "signal"  // Signal or reason that triggered shutdown
	KeyTimeout = "timeout" // Configured shutdown timeout

	// ========================================================================
	// HTTP
	// ========================================================================
	KeyPort       = "port"
	KeyAddr       = "addr"
	KeyRequestID  = "request_id"
	KeyMethod     = "method"
	KeyPath       = "path"
	KeyStatus     = "status"
	KeyRemoteAddr = "remote_addr"

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyDurationMs = "duration_ms"
	KeyError      = "error"
	KeySource     = "source"
)

// TraceID returns a slog.Attr for OpenTelemetry trace ID
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// SpanID returns a slog.Attr for OpenTelemetry span ID
func SpanID(id string) slog.Attr {
	return slog.String(KeySpanID, id)
}

// Service returns a slog.Attr for a service name
func Service(name string) slog.Attr {
	return slog.String(KeyService, name)
}

// Kind returns a slog.Attr for a handle's release capability
func Kind(k string) slog.Attr {
	return slog.String(KeyKind, k)
}

// Mode returns a slog.Attr for a concurrency mode
func Mode(m string) slog.Attr {
	return slog.String(KeyMode, m)
}

// Index returns a slog.Attr for an initializer position
func Index(i int) slog.Attr {
	return slog.Int(KeyIndex, i)
}

// Count returns a slog.Attr for a number of services
func Count(n int) slog.Attr {
	return slog.Int(KeyCount, n)
}

// State returns a slog.Attr for a coordinator state
func State(s string) slog.Attr {
	return slog.String(KeyState, s)
}

// Signal returns a slog.Attr for the shutdown trigger
func Signal(s string) slog.Attr {
	return slog.String(KeySignal, s)
}

// Timeout returns a slog.Attr for a configured timeout
func Timeout(d time.Duration) slog.Attr {
	return slog.Duration(KeyTimeout, d)
}

// Port returns a slog.Attr for a TCP port
func Port(p int) slog.Attr {
	return slog.Int(KeyPort, p)
}

// Addr returns a slog.Attr for a network address
func Addr(a string) slog.Attr {
	return slog.String(KeyAddr, a)
}

// DurationMs returns a slog.Attr for duration in milliseconds
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Source returns a slog.Attr for where a value came from
func Source(src string) slog.Attr {
	return slog.String(KeySource, src)
}
