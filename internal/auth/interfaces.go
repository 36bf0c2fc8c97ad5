package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/fitness-api/internal/user"
)

// TokenService defines the interface for token creation and validation.
// Implementations include JWTService (HS256) and PasetoService (PASETO v4.local).
type TokenService interface {
	CreateToken(userID uuid.UUID, email string, duration time.Duration) (string, error)
	VerifyToken(tokenStr string) (*TokenClaims, error)
}

// UserStore is the credential storage the auth service works against
type UserStore interface {
	Create(ctx context.Context, name, email, passwordHash string) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
}

// OTPManager issues and checks signup codes
type OTPManager interface {
	Issue(ctx context.Context, email string) error
	Verify(ctx context.Context, email, code string) error
	Consume(ctx context.Context, email string)
}

// EmailService sends password reset links
type EmailService interface {
	SendPasswordResetEmail(ctx context.Context, toEmail, token string) error
}

// ResetTokenStore tracks reset tokens that have not been used yet
type ResetTokenStore interface {
	StorePasswordResetToken(ctx context.Context, userID uuid.UUID, token string, ttl time.Duration) error
	GetPasswordResetToken(ctx context.Context, token string) (uuid.UUID, error)
	DeletePasswordResetToken(ctx context.Context, token string) (bool, error)
}
