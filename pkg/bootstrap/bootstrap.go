// Package bootstrap wires the lifecycle pieces into the startup sequence:
// start services, bind the listener, arm the shutdown coordinator.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/marmos91/hatch/internal/logger"
	"github.com/marmos91/hatch/pkg/config"
	"github.com/marmos91/hatch/pkg/httpserver"
	"github.com/marmos91/hatch/pkg/lifecycle"
)

// Bootstrap starts an App with its services.
type Bootstrap struct {
	cfg     config.Config
	app     *httpserver.App
	inits   []lifecycle.Initializer
	metrics lifecycle.Metrics
	signals []os.Signal
}

// Result is a started application.
type Result struct {
	// Server is the listening HTTP server.
	Server *httpserver.Server

	// Shutdown owns the services and the server and runs the graceful
	// shutdown sequence.
	Shutdown *lifecycle.Coordinator
}

// Option configures a Bootstrap.
type Option func(*Bootstrap)

// WithMetrics attaches a lifecycle metrics sink. nil disables collection.
func WithMetrics(m lifecycle.Metrics) Option {
	return func(b *Bootstrap) {
		b.metrics = m
	}
}

// WithSignals replaces the signals that trigger shutdown.
func WithSignals(sigs ...os.Signal) Option {
	return func(b *Bootstrap) {
		b.signals = sigs
	}
}

// New returns a Bootstrap for app. Routes registered on app before Start are
// served alongside those added by the initializers.
func New(cfg config.Config, app *httpserver.App, inits ...lifecycle.Initializer) *Bootstrap {
	if app == nil {
		app = httpserver.NewApp()
	}
	return &Bootstrap{cfg: cfg, app: app, inits: inits}
}

// With applies options and returns b.
func (b *Bootstrap) With(opts ...Option) *Bootstrap {
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Start runs the services, binds the listener and arms the shutdown
// coordinator, in that order. It returns once the server is listening.
//
// A failing initializer aborts startup before any port is bound. When the
// listener cannot bind, the services already started are released before
// the error is returned.
func (b *Bootstrap) Start(ctx context.Context) (*Result, error) {
	mode := lifecycle.ModeFor(b.cfg.Parallel)

	runner := &lifecycle.Runner{
		Mode:            mode,
		RollbackTimeout: b.cfg.ShutdownTimeout,
		Metrics:         b.metrics,
	}

	services, err := runner.Run(ctx, b.app, b.inits)
	if err != nil {
		return nil, fmt.Errorf("start services: %w", err)
	}

	logger.InfoCtx(ctx, "Initializing HTTP server", logger.KeyPort, b.cfg.Port)

	server, err := httpserver.Listen(ctx, b.app, ServerConfig(b.cfg))
	if err != nil {
		b.release(ctx, services)
		return nil, err
	}

	logger.InfoCtx(ctx, "HTTP server initialized", logger.KeyAddr, server.Addr())

	opts := []lifecycle.Option{lifecycle.WithMetrics(b.metrics)}
	if len(b.signals) > 0 {
		opts = append(opts, lifecycle.WithSignals(b.signals...))
	}
	coordinator := lifecycle.NewCoordinator(server, services, b.cfg.ShutdownTimeout, opts...)
	coordinator.Watch()

	logger.InfoCtx(ctx, "Serving", logger.KeyAddr, server.Addr(), logger.KeyPort, server.Port())

	return &Result{Server: server, Shutdown: coordinator}, nil
}

func (b *Bootstrap) release(ctx context.Context, services *lifecycle.ServiceSet) {
	timeout := b.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = lifecycle.DefaultShutdownTimeout
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	switch err := services.ShutdownWithin(ctx); {
	case errors.Is(err, lifecycle.ErrReleaseTimeout):
		logger.WarnCtx(ctx, "Release timeout reached after startup error", logger.KeyTimeout, timeout.String())
	case err != nil:
		logger.ErrorCtx(ctx, "Failed to release services after startup error", logger.KeyError, err)
	}
}

// ServerConfig maps the listener settings of cfg.
func ServerConfig(cfg config.Config) httpserver.Config {
	return httpserver.Config{
		Host:              cfg.Host,
		Port:              cfg.Port,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}
}
