package lifecycle

import "time"

// Metrics receives lifecycle observations.
//
// A nil Metrics disables collection; every call site checks for nil.
type Metrics interface {
	// ObserveStart records one initializer run.
	ObserveStart(service string, mode Mode, duration time.Duration, err error)

	// ObserveRelease records one service release.
	ObserveRelease(service string, kind Kind, duration time.Duration, err error)

	// ObserveShutdown records a completed shutdown sequence.
	ObserveShutdown(duration time.Duration, timedOut bool, err error)

	// SetState records the coordinator state.
	SetState(state State)

	// SetServices records how many services are running.
	SetServices(count int)
}
