package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/codes"

	"github.com/marmos91/hatch/internal/logger"
	"github.com/marmos91/hatch/internal/telemetry"
)

// ServiceSet holds the handles of started services in registration order.
//
// Shutdown releases every handle at most once; later calls return the result
// of the first.
type ServiceSet struct {
	mode    Mode
	metrics Metrics
	handles []Handle

	once sync.Once
	err  error
}

// NewServiceSet returns a set releasing handles with the given mode.
// metrics may be nil.
func NewServiceSet(mode Mode, metrics Metrics, handles ...Handle) *ServiceSet {
	return &ServiceSet{
		mode:    mode,
		metrics: metrics,
		handles: handles,
	}
}

// Count returns the number of services in the set.
func (s *ServiceSet) Count() int {
	return len(s.handles)
}

// Mode returns the concurrency mode used for release.
func (s *ServiceSet) Mode() Mode {
	return s.mode
}

// Names returns the service names in registration order.
func (s *ServiceSet) Names() []string {
	names := make([]string, len(s.handles))
	for i, h := range s.handles {
		names[i] = h.Name()
	}
	return names
}

// Shutdown releases every service.
//
// Sequential sets release in registration order and stop at the first
// failure. Parallel sets release all services concurrently and join their
// errors. Concurrent callers block until the first call finishes.
func (s *ServiceSet) Shutdown(ctx context.Context) error {
	s.once.Do(func() {
		if s.mode == Parallel {
			s.err = s.releaseParallel(ctx)
		} else {
			s.err = s.releaseSequential(ctx)
		}
		if s.metrics != nil {
			s.metrics.SetServices(0)
		}
	})
	return s.err
}

// ShutdownWithin runs Shutdown but returns once ctx is done even if a service
// ignores the deadline. The abandoned releases keep running in the background
// and the returned error wraps ErrReleaseTimeout.
func (s *ServiceSet) ShutdownWithin(ctx context.Context) error {
	released := make(chan error, 1)
	go func() { released <- s.Shutdown(ctx) }()

	select {
	case err := <-released:
		return err
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrReleaseTimeout, ctx.Err())
	}
}

func (s *ServiceSet) releaseSequential(ctx context.Context) error {
	for _, h := range s.handles {
		if err := s.release(ctx, h); err != nil {
			return err
		}
	}
	return nil
}

func (s *ServiceSet) releaseParallel(ctx context.Context) error {
	p := pool.New().WithErrors()
	for _, h := range s.handles {
		p.Go(func() error {
			return s.release(ctx, h)
		})
	}
	return p.Wait()
}

func (s *ServiceSet) release(ctx context.Context, h Handle) error {
	ctx, span := telemetry.StartServiceSpan(ctx, telemetry.SpanServiceRelease,
		telemetry.Service(h.Name()),
		telemetry.ServiceKind(h.Kind().String()),
	)
	defer span.End()

	ctx = withLogContext(ctx, h.Name())

	start := time.Now()
	err := h.Release(ctx)

	if s.metrics != nil {
		s.metrics.ObserveRelease(h.Name(), h.Kind(), time.Since(start), err)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "service release failed")
		return fmt.Errorf("%s %s: %w", h.Kind(), h.Name(), err)
	}

	logger.DebugCtx(ctx, "Service released",
		logger.KeyKind, h.Kind().String(),
		logger.KeyDurationMs, logger.Duration(start),
	)
	return nil
}
