package otp

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/redmonkez12/fitness-api/internal/database"
)

var errChallengeNotFound = errors.New("otp challenge not found")

// Repository persists OTP challenges
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Replace removes outstanding challenges for the email and stores the new one
func (r *Repository) Replace(ctx context.Context, c *Challenge) error {
	row := &database.OTPChallenge{
		Email:     c.Email,
		Code:      c.Code,
		CreatedAt: c.CreatedAt,
		ExpiresAt: c.ExpiresAt,
	}

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*database.OTPChallenge)(nil)).
			Where("email = ?", c.Email).
			Exec(ctx); err != nil {
			return err
		}

		_, err := tx.NewInsert().
			Model(row).
			Returning("id").
			Exec(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to store otp challenge: %w", err)
	}

	c.ID = row.ID
	return nil
}

// FindValid returns the newest unexpired challenge matching email and code
func (r *Repository) FindValid(ctx context.Context, email, code string, now time.Time) (*Challenge, error) {
	row := new(database.OTPChallenge)
	err := r.db.NewSelect().
		Model(row).
		Where("email = ?", email).
		Where("code = ?", code).
		Where("expires_at > ?", now).
		OrderExpr("created_at DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errChallengeNotFound
		}
		return nil, fmt.Errorf("failed to find otp challenge: %w", err)
	}

	return mapDBChallenge(row), nil
}

func (r *Repository) MarkVerified(ctx context.Context, id int64, at time.Time) error {
	_, err := r.db.NewUpdate().
		Model((*database.OTPChallenge)(nil)).
		Set("verified_at = ?", at).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark otp verified: %w", err)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.NewDelete().
		Model((*database.OTPChallenge)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete otp challenge: %w", err)
	}
	return nil
}

func (r *Repository) DeleteByEmail(ctx context.Context, email string) error {
	_, err := r.db.NewDelete().
		Model((*database.OTPChallenge)(nil)).
		Where("email = ?", email).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete otp challenges: %w", err)
	}
	return nil
}

// DeleteExpired removes challenges whose expiry is at or before now
func (r *Repository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.NewDelete().
		Model((*database.OTPChallenge)(nil)).
		Where("expires_at <= ?", now).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired otp challenges: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

func mapDBChallenge(row *database.OTPChallenge) *Challenge {
	return &Challenge{
		ID:         row.ID,
		Email:      row.Email,
		Code:       row.Code,
		CreatedAt:  row.CreatedAt,
		ExpiresAt:  row.ExpiresAt,
		VerifiedAt: row.VerifiedAt,
	}
}
