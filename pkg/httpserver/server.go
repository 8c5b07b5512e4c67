package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/marmos91/hatch/internal/logger"
)

// Config holds the address and timeouts of a listener.
type Config struct {
	// Name identifies the server in logs (default "HTTP server")
	Name string

	// Host is the interface to bind. Empty binds all interfaces.
	Host string

	// Port is the TCP port to bind. 0 picks a free port.
	Port int

	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
}

// Addr returns the host:port the listener binds.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c Config) name() string {
	if c.Name == "" {
		return "HTTP server"
	}
	return c.Name
}

// Server is a listening HTTP server.
//
// A Server is closed at most once and never reopened. Shutdown and Close are
// safe to call multiple times and concurrently.
type Server struct {
	name     string
	http     *http.Server
	listener net.Listener
	port     int

	closed     atomic.Bool
	notifyOnce sync.Once
	shutOnce   sync.Once
	shutErr    error

	mu       sync.Mutex
	onClose  []func()
	serveErr error
	done     chan struct{}
}

// Serve binds cfg's address and serves h on a background goroutine.
//
// The port is bound before Serve returns, so an address that is already in
// use fails the call. Binding is never retried.
func Serve(ctx context.Context, h http.Handler, cfg Config) (*Server, error) {
	name := cfg.name()
	addr := cfg.Addr()

	logger.DebugCtx(ctx, "Initializing "+name, logger.KeyAddr, addr)

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	s := &Server{
		name:     name,
		listener: ln,
		port:     ln.Addr().(*net.TCPAddr).Port,
		done:     make(chan struct{}),
		http: &http.Server{
			Handler:           h,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
		},
	}

	go s.serve()

	logger.Info(name+" listening", logger.KeyAddr, ln.Addr().String(), logger.KeyPort, s.port)
	return s, nil
}

// Listen binds app to cfg's address. It is the listener initializer of the
// bootstrap sequence and records the bound port in the app's "port" setting.
func Listen(ctx context.Context, app *App, cfg Config) (*Server, error) {
	s, err := Serve(ctx, app, cfg)
	if err != nil {
		return nil, err
	}
	app.Set("port", s.Port())
	return s, nil
}

func (s *Server) serve() {
	defer close(s.done)

	err := s.http.Serve(s.listener)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.mu.Lock()
		s.serveErr = err
		s.mu.Unlock()
		logger.Error(s.name+" failed", logger.KeyError, err)
		s.notifyClosed()
	}
}

// Port returns the bound TCP port.
func (s *Server) Port() int {
	return s.port
}

// Addr returns the bound address.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// OnClose registers fn to run once when the server closes.
// Registering on an already closed server runs fn immediately.
func (s *Server) OnClose(fn func()) {
	s.mu.Lock()
	if !s.closed.Load() {
		s.onClose = append(s.onClose, fn)
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	fn()
}

// IsClosed reports whether the server has closed.
func (s *Server) IsClosed() bool {
	return s.closed.Load()
}

// Done is closed when the serve loop has exited.
func (s *Server) Done() <-chan struct{} {
	return s.done
}

// Err returns the error that stopped the serve loop, if any.
func (s *Server) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.serveErr
}

// Shutdown stops accepting connections and waits for in-flight requests.
//
// When ctx expires first, remaining connections are closed forcibly and the
// context error is returned.
func (s *Server) Shutdown(ctx context.Context) error {
	s.shutOnce.Do(func() {
		err := s.http.Shutdown(ctx)
		if err != nil {
			_ = s.http.Close()
			s.shutErr = fmt.Errorf("%s shutdown: %w", s.name, err)
		}
		s.notifyClosed()
	})
	return s.shutErr
}

// Close closes the listener and all connections immediately.
func (s *Server) Close() error {
	err := s.http.Close()
	s.notifyClosed()
	return err
}

func (s *Server) notifyClosed() {
	s.notifyOnce.Do(func() {
		s.mu.Lock()
		s.closed.Store(true)
		callbacks := s.onClose
		s.onClose = nil
		s.mu.Unlock()

		logger.Info(s.name+" closed", logger.KeyPort, s.port)
		for _, fn := range callbacks {
			fn()
		}
	})
}
