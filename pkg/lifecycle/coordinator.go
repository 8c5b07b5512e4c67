package lifecycle

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"go.opentelemetry.io/otel/codes"

	"github.com/marmos91/hatch/internal/logger"
	"github.com/marmos91/hatch/internal/telemetry"
)

// DefaultShutdownTimeout bounds the shutdown sequence when none is configured.
const DefaultShutdownTimeout = 3 * time.Second

// Server is the listening server closed at the end of the shutdown sequence.
type Server interface {
	Shutdown(ctx context.Context) error
	Close() error
}

// Coordinator runs the graceful shutdown sequence once.
type Coordinator struct {
	server   Server
	services *ServiceSet
	timeout  time.Duration
	signals  []os.Signal
	metrics  Metrics

	state     atomic.Int32
	watchOnce sync.Once
	done      chan struct{}

	mu  sync.Mutex
	err error
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithSignals replaces the signals Watch subscribes to.
func WithSignals(sigs ...os.Signal) Option {
	return func(c *Coordinator) {
		c.signals = sigs
	}
}

// WithMetrics attaches a metrics sink.
func WithMetrics(m Metrics) Option {
	return func(c *Coordinator) {
		c.metrics = m
	}
}

// NewCoordinator returns a running Coordinator over server and services.
// A non-positive timeout uses DefaultShutdownTimeout.
func NewCoordinator(server Server, services *ServiceSet, timeout time.Duration, opts ...Option) *Coordinator {
	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}
	if services == nil {
		services = NewServiceSet(Sequential, nil)
	}

	c := &Coordinator{
		server:   server,
		services: services,
		timeout:  timeout,
		signals:  []os.Signal{os.Interrupt, syscall.SIGTERM},
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.setState(StateRunning)
	return c
}

// Watch subscribes to the configured signals. The first signal starts the
// shutdown sequence; later ones are logged and ignored. The subscription is
// removed once the sequence has finished. Calling Watch again has no effect.
func (c *Coordinator) Watch() {
	c.watchOnce.Do(func() {
		sigCh := make(chan os.Signal, 2)
		signal.Notify(sigCh, c.signals...)

		go func() {
			defer signal.Stop(sigCh)
			for {
				select {
				case sig := <-sigCh:
					if c.State() != StateRunning {
						logger.Warn("Shutdown already in progress, ignoring signal",
							logger.KeySignal, sig.String(),
							logger.KeyState, c.State().String(),
						)
						continue
					}
					go func() { _ = c.Shutdown(sig.String()) }()
				case <-c.done:
					return
				}
			}
		}()
	})
}

// Shutdown runs the shutdown sequence and returns its error.
//
// Services are released first, then the server is shut down. The whole
// sequence is bounded by the timeout: when services have not been released
// by the deadline the Coordinator stops waiting for them and closes the
// server forcibly. Reaching the deadline is not an error.
//
// Only the first call runs the sequence. Concurrent and later calls wait for
// it and return the same result.
func (c *Coordinator) Shutdown(reason string) error {
	if c.state.CompareAndSwap(int32(StateRunning), int32(StateShuttingDown)) {
		if c.metrics != nil {
			c.metrics.SetState(StateShuttingDown)
		}
		c.run(reason)
	} else {
		<-c.done
	}
	return c.Err()
}

func (c *Coordinator) run(reason string) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanShutdown)
	span.SetAttributes(
		telemetry.Signal(reason),
		telemetry.Count(c.services.Count()),
		telemetry.Mode(c.services.Mode().String()),
		telemetry.Timeout(c.timeout),
	)
	defer span.End()

	ctx = withLogContext(ctx, "")

	logger.InfoCtx(ctx, "Received shutdown notice", logger.KeySignal, reason)
	logger.InfoCtx(ctx, "Shutting down services",
		logger.KeyCount, c.services.Count(),
		logger.KeyMode, c.services.Mode().String(),
		logger.KeyTimeout, c.timeout.String(),
	)

	var errs []error
	timedOut := false

	switch err := c.services.ShutdownWithin(ctx); {
	case errors.Is(err, ErrReleaseTimeout):
		timedOut = true
		logger.WarnCtx(ctx, "Shutdown timeout reached before services were released",
			logger.KeyTimeout, c.timeout.String(),
		)
	case err != nil:
		logger.ErrorCtx(ctx, "Service shutdown failed", logger.KeyError, err)
		errs = append(errs, err)
	default:
		logger.InfoCtx(ctx, "Done shutting down services")
	}

	if err := c.server.Shutdown(ctx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			timedOut = true
			logger.WarnCtx(ctx, "Server closed forcibly after shutdown timeout",
				logger.KeyTimeout, c.timeout.String(),
			)
		} else {
			logger.ErrorCtx(ctx, "Server shutdown failed", logger.KeyError, err)
			errs = append(errs, err)
		}
	}

	err := errors.Join(errs...)
	span.SetAttributes(telemetry.TimedOut(timedOut))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "shutdown failed")
	}

	c.mu.Lock()
	c.err = err
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.ObserveShutdown(time.Since(start), timedOut, err)
	}
	c.setState(StateClosed)

	logger.InfoCtx(ctx, "Server gracefully shut down", logger.KeyDurationMs, logger.Duration(start))
	close(c.done)
}

func (c *Coordinator) setState(s State) {
	c.state.Store(int32(s))
	if c.metrics != nil {
		c.metrics.SetState(s)
	}
}

// State returns the current state.
func (c *Coordinator) State() State {
	return State(c.state.Load())
}

// Done is closed when the shutdown sequence has finished.
func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}

// Err returns the aggregated release and server error of a finished
// shutdown sequence. It is nil while running.
func (c *Coordinator) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Timeout returns the shutdown deadline.
func (c *Coordinator) Timeout() time.Duration {
	return c.timeout
}
