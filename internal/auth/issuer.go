package auth

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/fitness-api/internal/config"
)

// Issuer mints and verifies session tokens with a fixed lifetime
type Issuer struct {
	tokens   TokenService
	lifetime time.Duration
}

func NewIssuer(tokens TokenService, lifetime time.Duration) *Issuer {
	return &Issuer{tokens: tokens, lifetime: lifetime}
}

// NewTokenService builds the implementation selected by AUTH_TOKEN_TYPE
func NewTokenService(cfg config.AuthConfig) (TokenService, error) {
	switch cfg.TokenType {
	case config.TokenTypeJWT:
		return NewJWTService(cfg.JWTSecret)
	case config.TokenTypePaseto:
		return NewPasetoService(cfg.PasetoKey)
	default:
		return nil, fmt.Errorf("unsupported token type %q", cfg.TokenType)
	}
}

func (i *Issuer) Mint(userID uuid.UUID, email string) (string, error) {
	return i.tokens.CreateToken(userID, email, i.lifetime)
}

func (i *Issuer) Verify(token string) (*TokenClaims, error) {
	return i.tokens.VerifyToken(token)
}

func (i *Issuer) Lifetime() time.Duration {
	return i.lifetime
}
