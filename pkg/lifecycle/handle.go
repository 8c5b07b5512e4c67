package lifecycle

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNoReleaseMethod is returned when a service exposes neither a stop
	// nor a close capability.
	ErrNoReleaseMethod = errors.New("service has no stop or close method")

	// ErrInvalidHandle is returned for a zero Handle.
	ErrInvalidHandle = errors.New("invalid service handle")

	// ErrReleaseTimeout is returned when services are still being released
	// once the release deadline expires.
	ErrReleaseTimeout = errors.New("service release timed out")
)

// Kind is the release capability of a Handle.
type Kind uint8

const (
	kindInvalid Kind = iota
	// KindStop marks a service released through its stop capability.
	KindStop
	// KindClose marks a service released through its close capability.
	KindClose
)

// String returns the kind name used in logs and metrics.
func (k Kind) String() string {
	switch k {
	case KindStop:
		return "stop"
	case KindClose:
		return "close"
	default:
		return "invalid"
	}
}

// ReleaseFunc releases a service. The context carries the shutdown deadline.
type ReleaseFunc func(ctx context.Context) error

// Handle describes how to release one running service.
//
// A Handle is either Stoppable or Closeable. The variant is fixed when the
// Handle is built, so release never has to guess.
type Handle struct {
	name    string
	kind    Kind
	release ReleaseFunc
}

// Stoppable returns a Handle released through stop.
func Stoppable(name string, stop ReleaseFunc) Handle {
	if stop == nil {
		return Handle{}
	}
	return Handle{name: name, kind: KindStop, release: stop}
}

// Closeable returns a Handle released through close.
func Closeable(name string, closeFn ReleaseFunc) Handle {
	if closeFn == nil {
		return Handle{}
	}
	return Handle{name: name, kind: KindClose, release: closeFn}
}

// Capabilities recognised by FromService, in priority order.
type (
	stopperCtx interface{ Stop(context.Context) error }
	stopper    interface{ Stop() error }
	closerCtx  interface{ Close(context.Context) error }
	closer     interface{ Close() error }
)

// FromService builds a Handle from any value exposing a stop or close method.
//
// Stop is preferred over close when a value has both. Recognised methods,
// in order: Stop(ctx) error, Stop() error, Close(ctx) error, Close() error.
func FromService(name string, svc any) (Handle, error) {
	switch v := svc.(type) {
	case stopperCtx:
		return Stoppable(name, v.Stop), nil
	case stopper:
		return Stoppable(name, func(context.Context) error { return v.Stop() }), nil
	case closerCtx:
		return Closeable(name, v.Close), nil
	case closer:
		return Closeable(name, func(context.Context) error { return v.Close() }), nil
	default:
		return Handle{}, fmt.Errorf("%s (%T): %w", name, svc, ErrNoReleaseMethod)
	}
}

// Name returns the service name.
func (h Handle) Name() string {
	return h.name
}

// Kind returns the release capability.
func (h Handle) Kind() Kind {
	return h.kind
}

// Valid reports whether h can be released.
func (h Handle) Valid() bool {
	return h.kind != kindInvalid && h.release != nil
}

// Release invokes the release capability. Callers are responsible for
// releasing a service only once; ServiceSet does that.
func (h Handle) Release(ctx context.Context) error {
	if !h.Valid() {
		return ErrInvalidHandle
	}
	return h.release(ctx)
}

func (h Handle) withDefaultName(index int) Handle {
	if h.name == "" {
		h.name = fmt.Sprintf("service-%d", index)
	}
	return h
}
