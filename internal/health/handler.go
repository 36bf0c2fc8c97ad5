package health

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/redmonkez12/fitness-api/internal/auth"
	"github.com/redmonkez12/fitness-api/internal/httputil"
	"github.com/redmonkez12/fitness-api/internal/logging"
	"github.com/redmonkez12/fitness-api/internal/user"
)

// Handler serves the authenticated /api/users endpoints
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// MeasurementsResponse is returned after measurements change
type MeasurementsResponse struct {
	Message string     `json:"message"`
	User    *user.User `json:"user"`
}

// CaloriesResponse is today's calorie total
type CaloriesResponse struct {
	TotalCalories float64 `json:"totalCalories"`
}

// SaveProfile stores body data and derived targets
// @Summary      Save health profile
// @Description  Store gender, age, activity, height, weight and target weight. Derives BMI, calorie and macro targets and resets today's intake.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body ProfileInput true "Profile data"
// @Success      200 {object} httputil.MessageResponse
// @Failure      400 {object} httputil.ErrorResponse "Missing required fields"
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Router       /api/users/save [post]
func (h *Handler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	userID, logger, ok := requestUser(w, r)
	if !ok {
		return
	}

	var in ProfileInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		respondValidationError(w, logger, err)
		return
	}

	if err := h.service.SaveProfile(r.Context(), userID, in); err != nil {
		respondServiceError(w, logger, "save profile", err)
		return
	}

	httputil.RespondMessage(w, "Health data saved successfully!", http.StatusOK)
}

// UpdateHealthData recomputes derived targets
// @Summary      Update health data
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body HealthDataInput true "Health data"
// @Success      200 {object} httputil.MessageResponse
// @Failure      400 {object} httputil.ErrorResponse "Missing required fields"
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Router       /api/users/update-health-data [post]
func (h *Handler) UpdateHealthData(w http.ResponseWriter, r *http.Request) {
	userID, logger, ok := requestUser(w, r)
	if !ok {
		return
	}

	var in HealthDataInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		respondValidationError(w, logger, err)
		return
	}

	if err := h.service.UpdateHealthData(r.Context(), userID, in); err != nil {
		respondServiceError(w, logger, "update health data", err)
		return
	}

	httputil.RespondMessage(w, "Health data updated successfully!", http.StatusOK)
}

// UpdateMeasurements sets chest, waist and hips
// @Summary      Update body measurements
// @Description  Only the fields present in the body are changed
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body MeasurementsInput true "Measurements in cm"
// @Success      200 {object} MeasurementsResponse
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Router       /api/users/update-measurements [post]
func (h *Handler) UpdateMeasurements(w http.ResponseWriter, r *http.Request) {
	userID, logger, ok := requestUser(w, r)
	if !ok {
		return
	}

	var in MeasurementsInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		respondValidationError(w, logger, err)
		return
	}

	u, err := h.service.UpdateMeasurements(r.Context(), userID, in)
	if err != nil {
		respondServiceError(w, logger, "update measurements", err)
		return
	}

	httputil.RespondJSON(w, MeasurementsResponse{
		Message: "Measurements updated successfully",
		User:    u,
	}, http.StatusOK)
}

// LogSleep stores the hours slept on a date
// @Summary      Log sleep
// @Description  Saves the hours for the date, replacing an earlier entry for the same date
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body SleepInput true "Date (YYYY-MM-DD) and hours"
// @Success      200 {object} httputil.MessageResponse
// @Failure      400 {object} httputil.ErrorResponse "Invalid date or hours"
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Router       /api/users/sleep [post]
func (h *Handler) LogSleep(w http.ResponseWriter, r *http.Request) {
	userID, logger, ok := requestUser(w, r)
	if !ok {
		return
	}

	var in SleepInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		respondValidationError(w, logger, err)
		return
	}

	if err := h.service.LogSleep(r.Context(), userID, in); err != nil {
		respondServiceError(w, logger, "log sleep", err)
		return
	}

	httputil.RespondMessage(w, "Sleep data saved successfully", http.StatusOK)
}

// SleepWeek lists the last seven days of sleep
// @Summary      Get sleep for the last 7 days
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} SleepWeek
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Router       /api/users/sleep [get]
func (h *Handler) SleepWeek(w http.ResponseWriter, r *http.Request) {
	userID, logger, ok := requestUser(w, r)
	if !ok {
		return
	}

	week, err := h.service.SleepWeek(r.Context(), userID)
	if err != nil {
		respondServiceError(w, logger, "get sleep week", err)
		return
	}

	httputil.RespondJSON(w, week, http.StatusOK)
}

// LogFood records a food item
// @Summary      Log food
// @Description  Stores the item and adds its calories to today's intake
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body FoodInput true "Food item"
// @Success      200 {object} httputil.MessageResponse
// @Failure      400 {object} httputil.ErrorResponse "Missing required fields"
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Router       /api/users/log-food [post]
func (h *Handler) LogFood(w http.ResponseWriter, r *http.Request) {
	userID, logger, ok := requestUser(w, r)
	if !ok {
		return
	}

	var in FoodInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		respondValidationError(w, logger, err)
		return
	}

	if err := h.service.LogFood(r.Context(), userID, in); err != nil {
		respondServiceError(w, logger, "log food", err)
		return
	}

	httputil.RespondMessage(w, "Food logged successfully!", http.StatusOK)
}

// DailyCalories returns today's calories
// @Summary      Get today's calories
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} CaloriesResponse
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /api/users/calories [get]
func (h *Handler) DailyCalories(w http.ResponseWriter, r *http.Request) {
	userID, logger, ok := requestUser(w, r)
	if !ok {
		return
	}

	total, err := h.service.DailyCalories(r.Context(), userID)
	if err != nil {
		respondServiceError(w, logger, "get daily calories", err)
		return
	}

	httputil.RespondJSON(w, CaloriesResponse{TotalCalories: total}, http.StatusOK)
}

// MealTotals returns today's sums for one meal
// @Summary      Get today's totals for a meal
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        mealType query string false "Meal type" default(breakfast)
// @Success      200 {object} MealTotals
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /api/users/meal-totals [get]
func (h *Handler) MealTotals(w http.ResponseWriter, r *http.Request) {
	userID, logger, ok := requestUser(w, r)
	if !ok {
		return
	}

	totals, err := h.service.MealTotals(r.Context(), userID, r.URL.Query().Get("mealType"))
	if err != nil {
		respondServiceError(w, logger, "get meal totals", err)
		return
	}

	httputil.RespondJSON(w, totals, http.StatusOK)
}

// Profile returns the user with sleep data
// @Summary      Get profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} Profile
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Router       /api/users/profile [get]
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, logger, ok := requestUser(w, r)
	if !ok {
		return
	}

	profile, err := h.service.Profile(r.Context(), userID)
	if err != nil {
		respondServiceError(w, logger, "get profile", err)
		return
	}

	httputil.RespondJSON(w, profile, http.StatusOK)
}

// requestUser reads the authenticated user id set by auth.Middleware
func requestUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, *logging.Logger, bool) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "Unauthorized", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return uuid.Nil, logger, false
	}

	return userID, logger.WithFields(map[string]any{"user_id": userID}), true
}

func respondValidationError(w http.ResponseWriter, logger *logging.Logger, err error) {
	logger.Warn("invalid request", "error", err.Error())

	switch {
	case errors.Is(err, httputil.ErrInvalidBody):
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
	case errors.Is(err, ErrInvalidDate):
		httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeInvalidDate, http.StatusBadRequest)
	case errors.Is(err, ErrInvalidHours), errors.Is(err, ErrInvalidValue):
		httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeInvalidValue, http.StatusBadRequest)
	default:
		httputil.RespondErrorWithCode(w, "Missing required fields", httputil.CodeMissingFields, http.StatusBadRequest)
	}
}

func respondServiceError(w http.ResponseWriter, logger *logging.Logger, op string, err error) {
	if errors.Is(err, user.ErrNotFound) {
		logger.Warn(op+" failed: user not found")
		httputil.RespondErrorWithCode(w, "User not found", httputil.CodeUserNotFound, http.StatusNotFound)
		return
	}

	logger.Error(op+" failed: internal error", "error", err.Error())
	httputil.RespondErrorWithCode(w, "Internal Server Error", httputil.CodeInternalError, http.StatusInternalServerError)
}
