package weather

import (
	"context"
	"errors"
	"net/http"

	"github.com/redmonkez12/fitness-api/internal/httputil"
	"github.com/redmonkez12/fitness-api/internal/logging"
)

var ErrMissingCoordinates = errors.New("latitude and longitude are required")

// Provider returns current conditions for a location
type Provider interface {
	Current(ctx context.Context, lat, lon float64) (*Current, error)
}

// Request carries the browser's coordinates
type Request struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

func (r *Request) Validate() error {
	if r.Lat == nil || r.Lon == nil {
		return ErrMissingCoordinates
	}
	return nil
}

type Handler struct {
	provider Provider
}

func NewHandler(provider Provider) *Handler {
	return &Handler{provider: provider}
}

// Current returns the weather at the given coordinates
// @Summary      Current weather
// @Tags         integrations
// @Accept       json
// @Produce      json
// @Param        request body Request true "Coordinates"
// @Success      200 {object} Current
// @Failure      400 {object} httputil.ErrorResponse "Latitude and longitude are required"
// @Failure      500 {object} httputil.ErrorResponse "Failed to fetch weather data"
// @Router       /api/weather [post]
func (h *Handler) Current(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req Request
	if err := httputil.DecodeJSON(r, &req); err != nil {
		logger.Warn("invalid weather request", "error", err.Error())
		if errors.Is(err, httputil.ErrInvalidBody) {
			httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
			return
		}
		httputil.RespondErrorWithCode(w, "Latitude and longitude are required", httputil.CodeMissingFields, http.StatusBadRequest)
		return
	}

	current, err := h.provider.Current(r.Context(), *req.Lat, *req.Lon)
	if err != nil {
		logger.Error("failed to fetch weather data", "error", err.Error())
		httputil.RespondErrorWithCode(w, "Failed to fetch weather data", httputil.CodeUpstreamFailure, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, current, http.StatusOK)
}
