package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/codes"

	"github.com/marmos91/hatch/internal/logger"
	"github.com/marmos91/hatch/internal/telemetry"
	"github.com/marmos91/hatch/pkg/httpserver"
)

// Initializer starts one service against the application handle and returns
// the Handle that releases it.
type Initializer func(ctx context.Context, app *httpserver.App) (Handle, error)

// Runner invokes initializers and collects their handles.
type Runner struct {
	// Mode selects sequential or parallel startup. The resulting ServiceSet
	// is released with the same mode.
	Mode Mode

	// RollbackTimeout bounds the release of services started before a
	// failure. Zero means DefaultShutdownTimeout.
	RollbackTimeout time.Duration

	// Metrics receives start and release observations. Optional.
	Metrics Metrics
}

type startResult struct {
	index  int
	handle Handle
	err    error
}

// Run invokes every initializer and returns the started services.
//
// In Sequential mode initializer N runs only after N-1 returned, and the first
// failure skips the rest. In Parallel mode every initializer runs at once and
// Run returns at the first failure without cancelling the others. Services
// started before a failure are released before Run returns, within
// RollbackTimeout. In Parallel mode services whose initializers finish after
// Run returned are released in the background.
func (r *Runner) Run(ctx context.Context, app *httpserver.App, inits []Initializer) (*ServiceSet, error) {
	start := time.Now()

	logger.InfoCtx(ctx, "Initializing services",
		logger.KeyCount, len(inits),
		logger.KeyMode, r.Mode.String(),
	)

	var (
		handles []Handle
		err     error
	)
	if r.Mode == Parallel {
		handles, err = r.runParallel(ctx, app, inits)
	} else {
		handles, err = r.runSequential(ctx, app, inits)
	}
	if err != nil {
		return nil, err
	}

	if r.Metrics != nil {
		r.Metrics.SetServices(len(handles))
	}

	logger.InfoCtx(ctx, "Services initialized",
		logger.KeyCount, len(handles),
		logger.KeyMode, r.Mode.String(),
		logger.KeyDurationMs, logger.Duration(start),
	)

	return NewServiceSet(r.Mode, r.Metrics, handles...), nil
}

func (r *Runner) runSequential(ctx context.Context, app *httpserver.App, inits []Initializer) ([]Handle, error) {
	handles := make([]Handle, 0, len(inits))

	for i, init := range inits {
		h, err := r.startOne(ctx, app, i, init)
		if err != nil {
			r.rollback(ctx, handles)
			return nil, err
		}
		handles = append(handles, h)
	}

	return handles, nil
}

func (r *Runner) runParallel(ctx context.Context, app *httpserver.App, inits []Initializer) ([]Handle, error) {
	results := make(chan startResult, len(inits))
	for i, init := range inits {
		go func() {
			h, err := r.startOne(ctx, app, i, init)
			results <- startResult{index: i, handle: h, err: err}
		}()
	}

	started := make([]Handle, len(inits))
	for received := 0; received < len(inits); received++ {
		res := <-results
		if res.err != nil {
			r.rollback(ctx, compact(started))
			if pending := len(inits) - received - 1; pending > 0 {
				go r.rollbackLate(ctx, results, pending)
			}
			return nil, res.err
		}
		started[res.index] = res.handle
	}

	return started, nil
}

// startOne runs a single initializer inside a lifecycle.start span.
func (r *Runner) startOne(ctx context.Context, app *httpserver.App, index int, init Initializer) (Handle, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, telemetry.SpanServiceStart,
		telemetry.Index(index),
		telemetry.Mode(r.Mode.String()),
	)
	defer span.End()

	ctx = withLogContext(ctx, "")

	start := time.Now()
	h, err := init(ctx, app)
	if err == nil && !h.Valid() {
		err = ErrInvalidHandle
	}
	h = h.withDefaultName(index)
	ctx = withLogContext(ctx, h.Name())

	if r.Metrics != nil {
		r.Metrics.ObserveStart(h.Name(), r.Mode, time.Since(start), err)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "service start failed")
		logger.ErrorCtx(ctx, "Service failed to start",
			logger.KeyIndex, index,
			logger.KeyError, err,
		)
		return Handle{}, fmt.Errorf("service %d: %w", index, err)
	}

	span.SetAttributes(telemetry.Service(h.Name()), telemetry.ServiceKind(h.Kind().String()))
	logger.DebugCtx(ctx, "Service started",
		logger.KeyIndex, index,
		logger.KeyKind, h.Kind().String(),
		logger.KeyDurationMs, logger.Duration(start),
	)
	return h, nil
}

// rollback releases services started before a failed startup. It returns
// once the services are released or RollbackTimeout expires.
func (r *Runner) rollback(ctx context.Context, handles []Handle) {
	if len(handles) == 0 {
		return
	}

	ctx, cancel := r.rollbackContext(ctx)
	defer cancel()

	logger.WarnCtx(ctx, "Releasing services started before failure", logger.KeyCount, len(handles))

	switch err := NewServiceSet(r.Mode, r.Metrics, handles...).ShutdownWithin(ctx); {
	case errors.Is(err, ErrReleaseTimeout):
		logger.WarnCtx(ctx, "Rollback timeout reached before services were released",
			logger.KeyTimeout, r.rollbackTimeout().String(),
		)
	case err != nil:
		logger.ErrorCtx(ctx, "Rollback failed", logger.KeyError, err)
	}
}

// rollbackLate releases the services whose initializers finish after a
// parallel startup already failed.
func (r *Runner) rollbackLate(ctx context.Context, results <-chan startResult, pending int) {
	for ; pending > 0; pending-- {
		res := <-results
		if res.err != nil {
			continue
		}
		r.rollback(ctx, []Handle{res.handle})
	}
}

func (r *Runner) rollbackTimeout() time.Duration {
	if r.RollbackTimeout > 0 {
		return r.RollbackTimeout
	}
	return DefaultShutdownTimeout
}

func (r *Runner) rollbackContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), r.rollbackTimeout())
}

// withLogContext scopes *Ctx logging to service and the span active in ctx.
func withLogContext(ctx context.Context, service string) context.Context {
	lc := logger.FromContext(ctx).Clone()
	if lc == nil {
		lc = logger.NewLogContext(service)
	} else if service != "" {
		lc.Service = service
	}
	return logger.WithContext(ctx, lc.WithTrace(telemetry.TraceID(ctx), telemetry.SpanID(ctx)))
}

func compact(handles []Handle) []Handle {
	out := handles[:0:0]
	for _, h := range handles {
		if h.Valid() {
			out = append(out, h)
		}
	}
	return out
}
