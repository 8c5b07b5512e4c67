// Package metrics provides the service that exposes the Prometheus registry
// on its own HTTP listener.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/marmos91/hatch/pkg/httpserver"
	"github.com/marmos91/hatch/pkg/lifecycle"
	pkgmetrics "github.com/marmos91/hatch/pkg/metrics"
)

// ServiceName identifies the metrics server in logs and metrics.
const ServiceName = "metrics"

// Config configures the metrics listener.
type Config struct {
	Host string
	Port int

	// Path is the URL path metrics are served on (default /metrics)
	Path string
}

// DefaultPort is the metrics listener port when none is configured.
const DefaultPort = 9090

// Server returns the initializer of the metrics server. It enables the
// global registry, binds its own listener and returns a Stoppable handle
// that shuts the listener down.
func Server(cfg Config) lifecycle.Initializer {
	return func(ctx context.Context, _ *httpserver.App) (lifecycle.Handle, error) {
		pkgmetrics.InitRegistry()

		path := cfg.Path
		if path == "" {
			path = "/metrics"
		}

		srv, err := httpserver.Serve(ctx, Router(path), httpserver.Config{
			Name:              "Metrics server",
			Host:              cfg.Host,
			Port:              cfg.Port,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		})
		if err != nil {
			return lifecycle.Handle{}, err
		}

		return lifecycle.Stoppable(ServiceName, srv.Shutdown), nil
	}
}

// Router serves the global registry on path.
func Router(path string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Method(http.MethodGet, path, pkgmetrics.Handler())
	return r
}
