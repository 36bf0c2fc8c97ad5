package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingTokens records how often verification was attempted
type countingTokens struct {
	TokenService
	verifyCalls int
}

func (c *countingTokens) VerifyToken(token string) (*TokenClaims, error) {
	c.verifyCalls++
	return c.TokenService.VerifyToken(token)
}

func newTestMiddleware(t *testing.T) (*Middleware, *Issuer, *countingTokens) {
	t.Helper()
	jwtSvc, err := NewJWTService(testKey)
	require.NoError(t, err)

	tokens := &countingTokens{TokenService: jwtSvc}
	issuer := NewIssuer(tokens, time.Hour)
	return NewMiddleware(issuer), issuer, tokens
}

func TestRequireAuth(t *testing.T) {
	mw, issuer, tokens := newTestMiddleware(t)

	id := uuid.New()
	valid, err := issuer.Mint(id, "ann@example.com")
	require.NoError(t, err)

	tests := []struct {
		name        string
		header      string
		wantStatus  int
		wantVerify  int
		wantReached bool
	}{
		{"missing header", "", http.StatusUnauthorized, 0, false},
		{"missing token segment", "Bearer", http.StatusUnauthorized, 0, false},
		{"empty token segment", "Bearer   ", http.StatusUnauthorized, 0, false},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, 0, false},
		{"garbage token", "Bearer abc.def.ghi", http.StatusUnauthorized, 1, false},
		{"valid token", "Bearer " + valid, http.StatusOK, 1, true},
		{"lowercase scheme", "bearer " + valid, http.StatusOK, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens.verifyCalls = 0
			reached := false

			h := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				reached = true
				gotID, ok := GetUserIDFromContext(r.Context())
				assert.True(t, ok)
				assert.Equal(t, id, gotID)
				email, _ := GetUserEmailFromContext(r.Context())
				assert.Equal(t, "ann@example.com", email)
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/users/profile", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantVerify, tokens.verifyCalls)
			assert.Equal(t, tt.wantReached, reached)
		})
	}
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	jwtSvc, err := NewJWTService(testKey)
	require.NoError(t, err)

	issued := time.Now().Add(-2 * time.Hour)
	jwtSvc.now = func() time.Time { return issued }
	token, err := jwtSvc.CreateToken(uuid.New(), "ann@example.com", time.Hour)
	require.NoError(t, err)
	jwtSvc.now = time.Now

	mw := NewMiddleware(NewIssuer(jwtSvc, time.Hour))
	h := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "TOKEN_EXPIRED")
}
