package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/fitness-api/internal/httputil"
	"github.com/redmonkez12/fitness-api/internal/logging"
	"github.com/redmonkez12/fitness-api/internal/otp"
	"github.com/redmonkez12/fitness-api/internal/user"
)

const resetCooldownPurpose = "forgot_password"

// Cooldown limits how often a single email can trigger mail
type Cooldown interface {
	AcquireEmailCooldown(ctx context.Context, purpose, email string, cooldown time.Duration) (bool, error)
	ClearEmailCooldown(ctx context.Context, purpose, email string) error
}

// Handler contains HTTP handlers for authentication endpoints
type Handler struct {
	service       *Service
	cooldown      Cooldown
	resetCooldown time.Duration
}

func NewHandler(service *Service, cooldown Cooldown, resetCooldown time.Duration) *Handler {
	return &Handler{
		service:       service,
		cooldown:      cooldown,
		resetCooldown: resetCooldown,
	}
}

// SignupResponse is returned after registration
type SignupResponse struct {
	Message string    `json:"message"`
	Token   string    `json:"token"`
	UserID  uuid.UUID `json:"userId"`
}

// LoginResponse is returned after a successful login
type LoginResponse struct {
	Message string    `json:"message"`
	Token   string    `json:"token"`
	UserID  uuid.UUID `json:"userId"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
}

// Signup handles user registration with an OTP
// @Summary      Register a new user
// @Description  Create an account after the emailed OTP has been entered
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body SignupRequest true "Signup data"
// @Success      201 {object} SignupResponse
// @Failure      400 {object} httputil.ErrorResponse "Missing fields, invalid OTP or existing user"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /api/auth/signup [post]
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req SignupRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		respondValidationError(w, logger, err)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	result, err := h.service.Signup(r.Context(), req.Name, req.Email, req.Password, req.OTP)
	if err != nil {
		if errors.Is(err, otp.ErrInvalidCode) {
			logger.Warn("signup failed: invalid otp")
			respondError(w, "Invalid or expired OTP", httputil.CodeInvalidOTP, http.StatusBadRequest)
			return
		}
		if errors.Is(err, user.ErrDuplicateEmail) {
			logger.Warn("signup failed: email already exists")
			respondError(w, "User already exists", httputil.CodeEmailAlreadyExists, http.StatusBadRequest)
			return
		}
		logger.Error("signup failed: internal error", "error", err.Error())
		respondError(w, "Internal Server Error", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("user registered successfully", "user_id", result.UserID)

	httputil.RespondJSON(w, SignupResponse{
		Message: "User registered successfully!",
		Token:   result.Token,
		UserID:  result.UserID,
	}, http.StatusCreated)
}

// SendOTP emails a signup code
// @Summary      Send signup OTP
// @Description  Email a 6 digit code valid for 10 minutes. Limited to 5 requests per minute per IP.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body SendOTPRequest true "Email address"
// @Success      200 {object} httputil.MessageResponse
// @Failure      400 {object} httputil.ErrorResponse "Invalid email"
// @Failure      429 {object} httputil.ErrorResponse "Too many requests"
// @Failure      500 {object} httputil.ErrorResponse "Mail delivery failed"
// @Router       /api/auth/send-otp [post]
func (h *Handler) SendOTP(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req SendOTPRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		respondValidationError(w, logger, err)
		return
	}

	if err := h.service.SendOTP(r.Context(), req.Email); err != nil {
		if errors.Is(err, otp.ErrDeliveryFailed) {
			logger.Error("otp delivery failed", "email", req.Email, "error", err.Error())
			respondError(w, "Error sending OTP. Please try again.", httputil.CodeOTPDeliveryFailed, http.StatusInternalServerError)
			return
		}
		logger.Error("send otp failed: internal error", "error", err.Error())
		respondError(w, "Internal Server Error", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondMessage(w, "OTP sent successfully to your email.", http.StatusOK)
}

// VerifyOTP checks a code without consuming it
// @Summary      Verify signup OTP
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body VerifyOTPRequest true "Email and code"
// @Success      200 {object} httputil.MessageResponse
// @Failure      400 {object} httputil.ErrorResponse "Invalid or expired OTP"
// @Router       /api/auth/verify-otp [post]
func (h *Handler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req VerifyOTPRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		respondValidationError(w, logger, err)
		return
	}

	if err := h.service.VerifyOTP(r.Context(), req.Email, req.OTP); err != nil {
		if errors.Is(err, otp.ErrInvalidCode) {
			respondError(w, "Invalid or expired OTP", httputil.CodeInvalidOTP, http.StatusBadRequest)
			return
		}
		logger.Error("verify otp failed: internal error", "error", err.Error())
		respondError(w, "Internal Server Error", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondMessage(w, "OTP verified successfully.", http.StatusOK)
}

// Login handles user login
// @Summary      User login
// @Description  Authenticate with email and password and receive a 7 day session token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} LoginResponse
// @Failure      400 {object} httputil.ErrorResponse "Missing fields"
// @Failure      401 {object} httputil.ErrorResponse "Invalid credentials"
// @Failure      429 {object} httputil.ErrorResponse "Too many requests"
// @Router       /api/auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req LoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		respondValidationError(w, logger, err)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			logger.Warn("login failed: invalid credentials")
			respondError(w, "Invalid email or password", httputil.CodeInvalidCredentials, http.StatusUnauthorized)
			return
		}
		logger.Error("login failed: internal error", "error", err.Error())
		respondError(w, "Internal Server Error", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("user logged in successfully")

	httputil.RespondJSON(w, LoginResponse{
		Message: "Login successful",
		Token:   result.Token,
		UserID:  result.User.ID,
		Name:    result.User.Name,
		Email:   result.User.Email,
	}, http.StatusOK)
}

// ForgotPassword mails a reset link
// @Summary      Request password reset
// @Description  Send a password reset link to the user's email
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body ForgotPasswordRequest true "Email address"
// @Success      200 {object} httputil.MessageResponse
// @Failure      400 {object} httputil.ErrorResponse "Unknown user"
// @Failure      429 {object} httputil.ErrorResponse "Cooldown active"
// @Failure      500 {object} httputil.ErrorResponse "Mail delivery failed"
// @Router       /api/auth/forgot-password [post]
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req ForgotPasswordRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		respondValidationError(w, logger, err)
		return
	}

	acquired, err := h.cooldown.AcquireEmailCooldown(r.Context(), resetCooldownPurpose, req.Email, h.resetCooldown)
	if err != nil {
		logger.Error("failed to check email cooldown", "error", err.Error())
		// Continue despite error
	} else if !acquired {
		logger.Warn("email on cooldown", "email", req.Email)
		respondError(w, "Please wait before requesting another reset", httputil.CodeCooldownActive, http.StatusTooManyRequests)
		return
	}

	if err := h.service.RequestPasswordReset(r.Context(), req.Email); err != nil {
		if acquired {
			if clearErr := h.cooldown.ClearEmailCooldown(r.Context(), resetCooldownPurpose, req.Email); clearErr != nil {
				logger.Warn("failed to clear email cooldown", "error", clearErr.Error())
			}
		}

		if errors.Is(err, user.ErrNotFound) {
			respondError(w, "User not found", httputil.CodeUserNotFound, http.StatusBadRequest)
			return
		}
		if errors.Is(err, ErrResetDeliveryFailed) {
			logger.Error("reset link delivery failed", "email", req.Email, "error", err.Error())
			respondError(w, "Failed to send reset link. Please try again.", httputil.CodeUpstreamFailure, http.StatusInternalServerError)
			return
		}
		logger.Error("forgot password failed: internal error", "error", err.Error())
		respondError(w, "Internal Server Error", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondMessage(w, "Reset password link sent to your email.", http.StatusOK)
}

// ResetPassword handles password reset with token
// @Summary      Reset password
// @Description  Set a new password using the token from the reset link. A token works once.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body ResetPasswordRequest true "Reset token and new password"
// @Success      200 {object} httputil.MessageResponse
// @Failure      400 {object} httputil.ErrorResponse "Invalid request or token"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /api/auth/reset-password [post]
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req ResetPasswordRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		respondValidationError(w, logger, err)
		return
	}

	if err := h.service.ResetPassword(r.Context(), req.ResetToken, req.NewPassword); err != nil {
		if errors.Is(err, ErrInvalidResetToken) {
			logger.Warn("password reset failed: invalid token", "error", err.Error())
			respondError(w, "Invalid or expired reset token.", httputil.CodeInvalidResetToken, http.StatusBadRequest)
			return
		}
		if errors.Is(err, user.ErrNotFound) {
			respondError(w, "User not found", httputil.CodeUserNotFound, http.StatusBadRequest)
			return
		}
		logger.Error("password reset failed: internal error", "error", err.Error())
		respondError(w, "Internal Server Error", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("password reset successfully")
	httputil.RespondMessage(w, "Password reset successfully.", http.StatusOK)
}

// respondValidationError maps body decoding and validation failures to 400 responses
func respondValidationError(w http.ResponseWriter, logger *logging.Logger, err error) {
	logger.Warn("invalid request", "error", err.Error())

	switch {
	case errors.Is(err, httputil.ErrInvalidBody):
		respondError(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
	case errors.Is(err, ErrEmailRequired):
		respondError(w, "Email is required", httputil.CodeEmailRequired, http.StatusBadRequest)
	case errors.Is(err, ErrPasswordRequired):
		respondError(w, "Password is required", httputil.CodePasswordRequired, http.StatusBadRequest)
	case errors.Is(err, ErrPasswordTooLong):
		respondError(w, err.Error(), httputil.CodePasswordTooLong, http.StatusBadRequest)
	case errors.Is(err, ErrInvalidEmailFormat):
		respondError(w, "Invalid email format", httputil.CodeInvalidEmailFormat, http.StatusBadRequest)
	case errors.Is(err, ErrInvalidResetToken):
		respondError(w, "Invalid or expired reset token.", httputil.CodeInvalidResetToken, http.StatusBadRequest)
	default:
		respondError(w, "All fields are required", httputil.CodeMissingFields, http.StatusBadRequest)
	}
}

func respondError(w http.ResponseWriter, message string, code string, statusCode int) {
	httputil.RespondErrorWithCode(w, message, code, statusCode)
}
