package ratelimit

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/redmonkez12/fitness-api/internal/httputil"
	"github.com/redmonkez12/fitness-api/internal/logging"
)

// Middleware rejects requests with 429 once an IP exceeds limit within window.
// Redis errors are logged and the request is let through.
func (l *Limiter) Middleware(purpose string, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := logging.GetLoggerFromContext(r.Context())
			ip := l.ClientIP(r)

			allowed, retryAfter, err := l.Allow(r.Context(), purpose, ip, limit, window)
			if err != nil {
				logger.Error("failed to check IP rate limit", "purpose", purpose, "error", err.Error())
				next.ServeHTTP(w, r)
				return
			}

			if !allowed {
				logger.Warn("IP rate limit exceeded", "purpose", purpose, "ip", ip)
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
				httputil.RespondErrorWithCode(w, "Too many requests, please try again later", httputil.CodeTooManyRequests, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
