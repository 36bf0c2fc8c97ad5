package googlefit

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/redmonkez12/fitness-api/internal/httputil"
	"github.com/redmonkez12/fitness-api/internal/logging"
)

const (
	AccessTokenCookie = "google_access_token"
	stateCookie       = "google_oauth_state"
	stateTTL          = 10 * time.Minute
)

// Provider is the Google side of the flow
type Provider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	CaloriesBurned(ctx context.Context, accessToken string) (float64, error)
}

type Handler struct {
	provider     Provider
	dashboardURL string
	secureCookie bool
}

// NewHandler redirects to frontendURL/dashboard after a successful login.
// Cookies are marked Secure when secureCookie is set.
func NewHandler(provider Provider, frontendURL string, secureCookie bool) *Handler {
	return &Handler{
		provider:     provider,
		dashboardURL: strings.TrimRight(frontendURL, "/") + "/dashboard",
		secureCookie: secureCookie,
	}
}

// CaloriesResponse is the Google Fit total for the last 24 hours
type CaloriesResponse struct {
	CaloriesBurned float64 `json:"caloriesBurned"`
}

// Login redirects to the Google consent screen
// @Summary      Connect Google Fit
// @Tags         integrations
// @Success      302
// @Router       /auth/google [get]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	state, err := newState()
	if err != nil {
		logger.Error("failed to generate oauth state", "error", err.Error())
		httputil.RespondErrorWithCode(w, "Internal Server Error", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/auth/google",
		MaxAge:   int(stateTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.provider.AuthCodeURL(state), http.StatusFound)
}

// Callback exchanges the authorization code and stores the access token in a cookie
// @Summary      Google OAuth callback
// @Tags         integrations
// @Param        code  query string true "Authorization code"
// @Param        state query string true "OAuth state"
// @Success      302
// @Failure      400 {object} httputil.ErrorResponse "No authorization code received."
// @Failure      500 {object} httputil.ErrorResponse "Authentication failed"
// @Router       /auth/google/callback [get]
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	code := r.URL.Query().Get("code")
	if code == "" {
		httputil.RespondErrorWithCode(w, "No authorization code received.", httputil.CodeMissingFields, http.StatusBadRequest)
		return
	}

	stored, err := r.Cookie(stateCookie)
	state := r.URL.Query().Get("state")
	if err != nil || state == "" || subtle.ConstantTimeCompare([]byte(stored.Value), []byte(state)) != 1 {
		logger.Warn("oauth callback with invalid state")
		httputil.RespondErrorWithCode(w, "Invalid OAuth state", httputil.CodeOAuthExchange, http.StatusBadRequest)
		return
	}

	token, err := h.provider.Exchange(r.Context(), code)
	if err != nil {
		logger.Error("google token exchange failed", "error", err.Error())
		httputil.RespondErrorWithCode(w, "Authentication failed", httputil.CodeOAuthExchange, http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    "",
		Path:     "/auth/google",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
	})

	cookie := &http.Cookie{
		Name:     AccessTokenCookie,
		Value:    token.AccessToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
	if !token.Expiry.IsZero() {
		cookie.Expires = token.Expiry
	}
	http.SetCookie(w, cookie)

	logger.Info("google fit connected")
	http.Redirect(w, r, h.dashboardURL, http.StatusFound)
}

// CaloriesBurned returns calories expended in the last 24 hours
// @Summary      Calories burned
// @Description  Requires the google_access_token cookie set by the OAuth callback
// @Tags         integrations
// @Produce      json
// @Success      200 {object} CaloriesResponse
// @Failure      401 {object} httputil.ErrorResponse "Not authenticated"
// @Failure      500 {object} httputil.ErrorResponse "Failed to fetch calories burned data"
// @Router       /api/fit/calories-burned [get]
func (h *Handler) CaloriesBurned(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	cookie, err := r.Cookie(AccessTokenCookie)
	if err != nil || cookie.Value == "" {
		httputil.RespondErrorWithCode(w, "Not authenticated", httputil.CodeGoogleAuthRequired, http.StatusUnauthorized)
		return
	}

	calories, err := h.provider.CaloriesBurned(r.Context(), cookie.Value)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			httputil.RespondErrorWithCode(w, "Not authenticated", httputil.CodeGoogleAuthRequired, http.StatusUnauthorized)
			return
		}
		logger.Error("failed to fetch calories from google fit", "error", err.Error())
		httputil.RespondErrorWithCode(w, "Failed to fetch calories burned data", httputil.CodeUpstreamFailure, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, CaloriesResponse{CaloriesBurned: calories}, http.StatusOK)
}

func newState() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
