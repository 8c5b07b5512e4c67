package lifecycle

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// counter is a service that counts its stop and close calls.
type counter struct {
	stops  atomic.Int32
	closes atomic.Int32
}

func (c *counter) stopHandle(name string) Handle {
	return Stoppable(name, func(context.Context) error {
		c.stops.Add(1)
		return nil
	})
}

func (c *counter) closeHandle(name string) Handle {
	return Closeable(name, func(context.Context) error {
		c.closes.Add(1)
		return nil
	})
}

// recorder collects ordered events from concurrent goroutines.
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(e string) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

// fakeServer honours the shutdown deadline like http.Server.
type fakeServer struct {
	shutdowns atomic.Int32
	closes    atomic.Int32
	err       error
	onShut    func()
}

func (s *fakeServer) Shutdown(ctx context.Context) error {
	s.shutdowns.Add(1)
	if s.onShut != nil {
		s.onShut()
	}
	if err := ctx.Err(); err != nil {
		_ = s.Close()
		return err
	}
	return s.err
}

func (s *fakeServer) Close() error {
	s.closes.Add(1)
	return nil
}

type shutdownObservation struct {
	duration time.Duration
	timedOut bool
	err      error
}

type fakeMetrics struct {
	mu        sync.Mutex
	starts    map[string]error
	releases  map[string]Kind
	shutdowns []shutdownObservation
	states    []State
	services  []int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{
		starts:   make(map[string]error),
		releases: make(map[string]Kind),
	}
}

func (m *fakeMetrics) ObserveStart(service string, _ Mode, _ time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.starts[service] = err
}

func (m *fakeMetrics) ObserveRelease(service string, kind Kind, _ time.Duration, _ error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.releases[service] = kind
}

func (m *fakeMetrics) ObserveShutdown(d time.Duration, timedOut bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shutdowns = append(m.shutdowns, shutdownObservation{d, timedOut, err})
}

func (m *fakeMetrics) SetState(s State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states = append(m.states, s)
}

func (m *fakeMetrics) SetServices(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.services = append(m.services, n)
}

type metricsSnapshot struct {
	shutdowns []shutdownObservation
	states    []State
	services  []int
}

func (m *fakeMetrics) snapshot() metricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return metricsSnapshot{
		shutdowns: append([]shutdownObservation(nil), m.shutdowns...),
		states:    append([]State(nil), m.states...),
		services:  append([]int(nil), m.services...),
	}
}
