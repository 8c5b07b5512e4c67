package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/marmos91/hatch/internal/logger"
)

// HelloMessage is the body served on the root route.
const HelloMessage = "Hello World!"

// Hello answers the root route.
func Hello(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(HelloMessage))
}

// RegisterDefaultRoutes installs the root route on app.
func RegisterDefaultRoutes(app *App) {
	app.Get("/", Hello)
}

// requestLogger logs each request with its status and duration. The request
// ID is attached to the request context for *Ctx logging in handlers.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lc := logger.NewLogContext("").WithRequestID(middleware.GetReqID(r.Context()))
		ctx := logger.WithContext(r.Context(), lc)

		logger.DebugCtx(ctx, "HTTP request started",
			logger.KeyMethod, r.Method,
			logger.KeyPath, r.URL.Path,
			logger.KeyRemoteAddr, r.RemoteAddr,
		)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		logger.InfoCtx(ctx, "HTTP request completed",
			logger.KeyMethod, r.Method,
			logger.KeyPath, r.URL.Path,
			logger.KeyStatus, ww.Status(),
			"bytes", ww.BytesWritten(),
			logger.KeyDurationMs, lc.DurationMs(),
		)
	})
}
