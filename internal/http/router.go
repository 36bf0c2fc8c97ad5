package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/redmonkez12/fitness-api/internal/auth"
	"github.com/redmonkez12/fitness-api/internal/config"
	"github.com/redmonkez12/fitness-api/internal/health"
	"github.com/redmonkez12/fitness-api/internal/httputil"
	"github.com/redmonkez12/fitness-api/internal/integrations/fooddata"
	"github.com/redmonkez12/fitness-api/internal/integrations/googlefit"
	"github.com/redmonkez12/fitness-api/internal/integrations/weather"
	"github.com/redmonkez12/fitness-api/internal/logging"
	"github.com/redmonkez12/fitness-api/internal/ratelimit"
)

// Rate limit buckets
const (
	purposeSendOTP = "send_otp"
	purposeLogin   = "login"
)

// Handlers groups everything the router mounts
type Handlers struct {
	Auth           *auth.Handler
	AuthMiddleware *auth.Middleware
	Health         *health.Handler
	Weather        *weather.Handler
	GoogleFit      *googlefit.Handler
	FoodData       *fooddata.Handler
	Limiter        *ratelimit.Limiter
}

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, h Handlers, logger *logging.Logger) *chi.Mux {
	r := chi.NewRouter()

	// CORS - must be first
	if len(cfg.Server.TrustedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.TrustedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Length", "Retry-After"},
			AllowCredentials: true,
			MaxAge:           300, // 5 minutes
		}))
	}

	r.Use(SecurityHeaders(!cfg.Server.IsDevelopment()))
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(logging.RequestLogger(logger))
	r.Use(middleware.Compress(5))

	r.Get("/health", handleHealth)

	// Swagger UI - only in development
	if cfg.Server.IsDevelopment() {
		logger.Info("swagger UI enabled at /swagger/*")
		r.Get("/swagger/*", httpSwagger.WrapHandler)
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/signup", h.Auth.Signup)
		r.With(h.Limiter.Middleware(purposeSendOTP, cfg.Auth.OTPRateLimit, cfg.Auth.OTPRateWindow)).
			Post("/send-otp", h.Auth.SendOTP)
		r.Post("/verify-otp", h.Auth.VerifyOTP)
		r.With(h.Limiter.Middleware(purposeLogin, cfg.Auth.LoginRateLimit, cfg.Auth.LoginWindow)).
			Post("/login", h.Auth.Login)
		r.Post("/forgot-password", h.Auth.ForgotPassword)
		r.Post("/reset-password", h.Auth.ResetPassword)
	})

	r.Route("/api/users", func(r chi.Router) {
		r.Use(h.AuthMiddleware.RequireAuth)
		r.Post("/save", h.Health.SaveProfile)
		r.Get("/profile", h.Health.Profile)
		r.Post("/update-measurements", h.Health.UpdateMeasurements)
		r.Post("/update-health-data", h.Health.UpdateHealthData)
		r.Post("/log-food", h.Health.LogFood)
		r.Post("/sleep", h.Health.LogSleep)
		r.Get("/sleep", h.Health.SleepWeek)
		r.Get("/calories", h.Health.DailyCalories)
		r.Get("/meal-totals", h.Health.MealTotals)
	})

	// Google OAuth and third-party proxies
	r.Get("/auth/google", h.GoogleFit.Login)
	r.Get("/auth/google/callback", h.GoogleFit.Callback)
	r.Get("/api/fit/calories-burned", h.GoogleFit.CaloriesBurned)
	r.Post("/api/weather", h.Weather.Current)
	r.Get("/api/food/search", h.FoodData.Search)
	r.Get("/api/food/product/{code}", h.FoodData.Product)

	return r
}

// handleHealth is a simple health check endpoint
// @Summary      Health check
// @Description  Check if the API is running
// @Tags         health
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /health [get]
func handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, map[string]string{"status": "api is running"}, http.StatusOK)
}
