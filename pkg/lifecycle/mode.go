package lifecycle

// Mode selects how services are started and released.
type Mode uint8

const (
	// Sequential runs one service at a time, in registration order.
	Sequential Mode = iota
	// Parallel runs every service concurrently.
	Parallel
)

// ModeFor maps the parallel flag to a Mode.
func ModeFor(parallel bool) Mode {
	if parallel {
		return Parallel
	}
	return Sequential
}

// String returns the mode name used in logs and metrics.
func (m Mode) String() string {
	if m == Parallel {
		return "parallel"
	}
	return "sequential"
}

// State is the shutdown coordinator state.
type State int32

const (
	// StateRunning means the server is serving and no shutdown has started.
	StateRunning State = iota
	// StateShuttingDown means services and the server are being released.
	StateShuttingDown
	// StateClosed means the shutdown sequence has finished.
	StateClosed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateShuttingDown:
		return "shutting_down"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
