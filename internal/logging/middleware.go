package logging

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

type contextKey string

const loggerContextKey contextKey = "logger"

// Successful requests to these paths are logged at debug level
var quietPaths = map[string]bool{
	"/health": true,
}

// statusRecorder captures the status code and body size of a response
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
	wrote  bool
}

func (sr *statusRecorder) WriteHeader(status int) {
	if sr.wrote {
		return
	}
	sr.status = status
	sr.wrote = true
	sr.ResponseWriter.WriteHeader(status)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if !sr.wrote {
		sr.WriteHeader(http.StatusOK)
	}
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += n
	return n, err
}

// RequestLogger logs each request once it completes and puts a
// request-scoped logger into the context for handlers to use.
func RequestLogger(logger *Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi's RequestID middleware runs before this one
			reqLogger := logger.WithFields(map[string]any{
				"request_id": middleware.GetReqID(r.Context()),
				"method":     r.Method,
				"path":       r.URL.Path,
				"remote_ip":  r.RemoteAddr,
			})

			// Holder lets inner middleware (auth) enrich the completion line
			holder := &loggerHolder{logger: reqLogger}
			ctx := context.WithValue(r.Context(), loggerContextKey, holder)
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r.WithContext(ctx))

			level := completionLevel(r.URL.Path, rec.status)
			holder.logger.Log(r.Context(), level, "request completed",
				"status", rec.status,
				"bytes", rec.bytes,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

func completionLevel(path string, status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	case quietPaths[path]:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

type loggerHolder struct {
	logger *Logger
}

// WithLogger stores a logger in the context
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, &loggerHolder{logger: logger})
}

// AddFields attaches fields to the request logger in ctx, including the
// line RequestLogger writes when the request completes.
func AddFields(ctx context.Context, fields map[string]any) {
	if h, ok := ctx.Value(loggerContextKey).(*loggerHolder); ok {
		h.logger = h.logger.WithFields(fields)
	}
}

// GetLoggerFromContext retrieves the logger from the request context
func GetLoggerFromContext(ctx context.Context) *Logger {
	if h, ok := ctx.Value(loggerContextKey).(*loggerHolder); ok {
		return h.logger
	}
	// Fallback to a default logger if not found
	return NewLogger(true)
}
