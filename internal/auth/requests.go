package auth

import (
	"errors"
	"net/mail"
	"strings"
)

var (
	ErrMissingFields      = errors.New("all fields are required")
	ErrEmailRequired      = errors.New("email is required")
	ErrPasswordRequired   = errors.New("password is required")
	ErrInvalidEmailFormat = errors.New("invalid email format")
	ErrPasswordTooLong    = errors.New("password must be at most 72 bytes")
	ErrOTPRequired        = errors.New("otp is required")
)

// bcrypt ignores input past 72 bytes
const maxPasswordBytes = 72

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	OTP      string `json:"otp"`
}

func (r *SignupRequest) Validate() error {
	r.Email = normalizeEmail(r.Email)
	r.Name = strings.TrimSpace(r.Name)
	r.OTP = strings.TrimSpace(r.OTP)

	if r.Name == "" || r.Email == "" || r.Password == "" || r.OTP == "" {
		return ErrMissingFields
	}
	if err := validateEmail(r.Email); err != nil {
		return err
	}
	return validatePassword(r.Password)
}

type SendOTPRequest struct {
	Email string `json:"email"`
}

func (r *SendOTPRequest) Validate() error {
	r.Email = normalizeEmail(r.Email)
	if r.Email == "" {
		return ErrEmailRequired
	}
	return validateEmail(r.Email)
}

type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

func (r *VerifyOTPRequest) Validate() error {
	r.Email = normalizeEmail(r.Email)
	r.OTP = strings.TrimSpace(r.OTP)

	if r.Email == "" {
		return ErrEmailRequired
	}
	if r.OTP == "" {
		return ErrOTPRequired
	}
	return nil
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	r.Email = normalizeEmail(r.Email)
	if r.Email == "" {
		return ErrEmailRequired
	}
	if r.Password == "" {
		return ErrPasswordRequired
	}
	return nil
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

func (r *ForgotPasswordRequest) Validate() error {
	r.Email = normalizeEmail(r.Email)
	if r.Email == "" {
		return ErrEmailRequired
	}
	return validateEmail(r.Email)
}

type ResetPasswordRequest struct {
	ResetToken  string `json:"resetToken"`
	NewPassword string `json:"newPassword"`
}

func (r *ResetPasswordRequest) Validate() error {
	r.ResetToken = strings.TrimSpace(r.ResetToken)
	if r.ResetToken == "" {
		return ErrInvalidResetToken
	}
	return validatePassword(r.NewPassword)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if len(email) > 254 {
		return ErrInvalidEmailFormat
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrInvalidEmailFormat
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return ErrPasswordRequired
	}
	if len(password) > maxPasswordBytes {
		return ErrPasswordTooLong
	}
	return nil
}
