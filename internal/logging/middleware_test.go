package logging

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLogger_InjectsLoggerAndKeepsStatus(t *testing.T) {
	base := NewNopLogger()

	var fromCtx *Logger
	handler := middleware.RequestID(RequestLogger(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx = GetLoggerFromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users/profile", nil))

	require.NotNil(t, fromCtx)
	assert.NotSame(t, base, fromCtx)
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestRequestLogger_CompletionLineCarriesAddedFields(t *testing.T) {
	var buf bytes.Buffer
	base := newLogger(&buf, false)

	handler := RequestLogger(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		AddFields(r.Context(), map[string]any{"user_id": "u-1"})
		_, _ = w.Write([]byte("hello"))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/users/calories", nil))

	out := buf.String()
	assert.Contains(t, out, `"msg":"request completed"`)
	assert.Contains(t, out, `"user_id":"u-1"`)
	assert.Contains(t, out, `"bytes":5`)
}

func TestCompletionLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, completionLevel("/health", http.StatusOK))
	assert.Equal(t, slog.LevelInfo, completionLevel("/api/weather", http.StatusOK))
	assert.Equal(t, slog.LevelWarn, completionLevel("/api/weather", http.StatusBadRequest))
	assert.Equal(t, slog.LevelError, completionLevel("/health", http.StatusInternalServerError))
}

func TestStatusRecorder_FirstStatusWins(t *testing.T) {
	rec := httptest.NewRecorder()
	sr := &statusRecorder{ResponseWriter: rec, status: http.StatusOK}

	sr.WriteHeader(http.StatusCreated)
	sr.WriteHeader(http.StatusInternalServerError)

	assert.Equal(t, http.StatusCreated, sr.status)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestGetLoggerFromContext_Fallback(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.NotNil(t, GetLoggerFromContext(req.Context()))
}
