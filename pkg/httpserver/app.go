// Package httpserver provides the application handle handed to service
// initializers and the listener that serves it.
package httpserver

import (
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// App is the application handle passed to every service initializer.
//
// It wraps a chi router and a settings map. Route registration is serialized,
// so initializers running in parallel may register routes on the same App.
// Routes must be registered before the App starts serving.
type App struct {
	mu       sync.Mutex
	mux      *chi.Mux
	settings map[string]any
}

// NewApp creates an App with the standard middleware stack installed:
//   - Request ID middleware for request tracking
//   - Real IP extraction for proper client identification
//   - Request logging using the internal logger
//   - Panic recovery to prevent server crashes
func NewApp() *App {
	mux := chi.NewRouter()

	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(requestLogger)
	mux.Use(middleware.Recoverer)

	return &App{
		mux:      mux,
		settings: make(map[string]any),
	}
}

// Get registers a handler for GET requests on pattern.
func (a *App) Get(pattern string, h http.HandlerFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.mux.Get(pattern, h)
}

// Method registers a handler for the given HTTP method on pattern.
func (a *App) Method(method, pattern string, h http.Handler) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.mux.Method(method, pattern, h)
}

// Handle registers a handler for all methods on pattern.
func (a *App) Handle(pattern string, h http.Handler) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.mux.Handle(pattern, h)
}

// Mount attaches a sub-handler under pattern.
func (a *App) Mount(pattern string, h http.Handler) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.mux.Mount(pattern, h)
}

// Route registers a group of routes under pattern.
func (a *App) Route(pattern string, fn func(r chi.Router)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.mux.Route(pattern, fn)
}

// Set stores an application setting.
func (a *App) Set(key string, value any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.settings[key] = value
}

// Setting returns an application setting and whether it was set.
func (a *App) Setting(key string) (any, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	v, ok := a.settings[key]
	return v, ok
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}
