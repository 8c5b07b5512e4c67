// Package journal records process boots in a SQL database.
//
// The journal is an ordinary service: its initializer opens the database,
// records the current boot and mounts GET /journal on the application. On
// release it stamps the boot's stop time and closes the database.
package journal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/marmos91/hatch/internal/logger"
	"github.com/marmos91/hatch/pkg/httpserver"
	"github.com/marmos91/hatch/pkg/lifecycle"
)

// ServiceName identifies the journal in logs and metrics.
const ServiceName = "journal"

// DefaultHistory is the number of boots GET /journal returns by default.
const DefaultHistory = 20

// Options configures the journal service.
type Options struct {
	Database DatabaseConfig

	// History is the default number of boots GET /journal returns.
	History int

	// Version is recorded with every boot.
	Version string
}

// Service is a running boot journal.
type Service struct {
	store   *Store
	boot    Boot
	history int
}

// Initializer returns the lifecycle initializer of the journal service.
// The returned handle is Closeable.
func Initializer(opts Options) lifecycle.Initializer {
	return func(ctx context.Context, app *httpserver.App) (lifecycle.Handle, error) {
		svc, err := Start(ctx, opts)
		if err != nil {
			return lifecycle.Handle{}, err
		}

		app.Get("/journal", svc.handleList)

		return lifecycle.FromService(ServiceName, svc)
	}
}

// Start opens the journal database and records the current boot.
func Start(ctx context.Context, opts Options) (*Service, error) {
	store, err := Open(&opts.Database)
	if err != nil {
		return nil, err
	}

	hostname, _ := os.Hostname()
	boot := Boot{
		Hostname: hostname,
		PID:      os.Getpid(),
		Version:  opts.Version,
	}
	if err := store.RecordStart(ctx, &boot); err != nil {
		_ = store.Close()
		return nil, err
	}

	history := opts.History
	if history <= 0 {
		history = DefaultHistory
	}

	logger.InfoCtx(ctx, "Boot journal opened",
		logger.KeyService, ServiceName,
		"boot_id", boot.ID,
		"database", string(opts.Database.Type),
	)

	return &Service{store: store, boot: boot, history: history}, nil
}

// Boot returns the boot recorded for this process.
func (s *Service) Boot() Boot {
	return s.boot
}

// Store returns the underlying store.
func (s *Service) Store() *Store {
	return s.store
}

// Close records the stop time of the current boot and closes the database.
func (s *Service) Close(ctx context.Context) error {
	stopErr := s.store.RecordStop(ctx, s.boot.ID, time.Now())
	closeErr := s.store.Close()

	logger.InfoCtx(ctx, "Boot journal closed", "boot_id", s.boot.ID)
	return errors.Join(stopErr, closeErr)
}

type listResponse struct {
	Current string `json:"current"`
	Boots   []Boot `json:"boots"`
}

// handleList serves the most recent boots as JSON.
// The optional "limit" query parameter overrides the configured history.
func (s *Service) handleList(w http.ResponseWriter, r *http.Request) {
	limit := s.history
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	boots, err := s.store.Recent(r.Context(), limit)
	if err != nil {
		logger.ErrorCtx(r.Context(), "Failed to list boots", logger.KeyError, err)
		writeError(w, http.StatusInternalServerError, "failed to list boots")
		return
	}

	writeJSON(w, http.StatusOK, listResponse{Current: s.boot.ID, Boots: boots})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
