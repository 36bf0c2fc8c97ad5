package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrPasswordResetTokenNotFound = errors.New("password reset token not found")

// PasswordResetRepository keeps one marker per outstanding reset token in Redis
type PasswordResetRepository struct {
	client *redis.Client
}

func NewPasswordResetRepository(client *redis.Client) *PasswordResetRepository {
	return &PasswordResetRepository{client: client}
}

func (r *PasswordResetRepository) StorePasswordResetToken(ctx context.Context, userID uuid.UUID, token string, ttl time.Duration) error {
	if err := r.client.Set(ctx, passwordResetKey(token), userID.String(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to store password reset token: %w", err)
	}
	return nil
}

// GetPasswordResetToken retrieves the user ID associated with a password reset token
func (r *PasswordResetRepository) GetPasswordResetToken(ctx context.Context, token string) (uuid.UUID, error) {
	userIDStr, err := r.client.Get(ctx, passwordResetKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, ErrPasswordResetTokenNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to get password reset token: %w", err)
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to parse user ID: %w", err)
	}

	return userID, nil
}

// DeletePasswordResetToken removes the marker. It reports false when the marker
// was already gone, so two concurrent resets cannot both succeed.
func (r *PasswordResetRepository) DeletePasswordResetToken(ctx context.Context, token string) (bool, error) {
	n, err := r.client.Del(ctx, passwordResetKey(token)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to delete password reset token: %w", err)
	}
	return n > 0, nil
}

func passwordResetKey(token string) string {
	return fmt.Sprintf("password_reset:%s", hashToken(token))
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
