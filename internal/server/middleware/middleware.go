// Package middleware provides HTTP middleware for request logging and panic
// recovery for the docsite API.
package middleware

import (
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/observability"
)

// Chain returns a middleware wrapper that applies logging and panic recovery
// around a handler. It expects chi's RequestID middleware to run first.
func Chain(logger *slog.Logger, adapter *errors.HTTPErrorAdapter) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return requestContext(loggingMiddleware(logger, panicRecoveryMiddleware(logger, adapter, next)))
	}
}

// requestContext copies chi's request id into the observability context.
func requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := chimw.GetReqID(r.Context()); id != "" {
			r = r.WithContext(observability.WithRequestID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs method, path, status, duration, user agent, and remote addr.
func loggingMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		attrs := append(observability.Attrs(r.Context()),
			logfields.Method(r.Method),
			logfields.Path(r.URL.Path),
			logfields.Status(wrapped.statusCode),
			logfields.Duration(time.Since(start)),
			logfields.UserAgent(r.UserAgent()),
			logfields.RemoteAddr(r.RemoteAddr))
		logger.LogAttrs(r.Context(), slog.LevelInfo, "HTTP request", attrs...)
	})
}

// panicRecoveryMiddleware recovers from panics and writes a structured error response via the HTTPErrorAdapter.
func panicRecoveryMiddleware(logger *slog.Logger, adapter *errors.HTTPErrorAdapter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.Error("HTTP handler panic",
					slog.Any("panic", rec),
					logfields.Path(r.URL.Path),
					logfields.Method(r.Method))

				panicErr := errors.InternalError("internal server error").
					WithContext("path", r.URL.Path).
					WithContext("method", r.Method).
					Build()
				adapter.WriteErrorResponse(w, r, panicErr)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// responseWriter captures status codes for logging.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Flush forwards to the underlying writer so event streams keep working.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (rw *responseWriter) Unwrap() http.ResponseWriter { return rw.ResponseWriter }
