package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/redmonkez12/fitness-api/internal/logging"
)

var (
	ErrInvalidCode    = errors.New("invalid or expired OTP")
	ErrDeliveryFailed = errors.New("failed to deliver OTP")
)

const (
	codeMin = 100000
	codeMax = 999999
)

// Store is the persistence the manager needs
type Store interface {
	Replace(ctx context.Context, c *Challenge) error
	FindValid(ctx context.Context, email, code string, now time.Time) (*Challenge, error)
	MarkVerified(ctx context.Context, id int64, at time.Time) error
	Delete(ctx context.Context, id int64) error
	DeleteByEmail(ctx context.Context, email string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Sender delivers a code to the user
type Sender interface {
	SendOTPEmail(ctx context.Context, to, code string, ttl time.Duration) error
}

type Manager struct {
	store  Store
	sender Sender
	logger *logging.Logger
	ttl    time.Duration

	now      func() time.Time
	generate func() (string, error)
}

func NewManager(store Store, sender Sender, logger *logging.Logger, ttl time.Duration) *Manager {
	return &Manager{
		store:    store,
		sender:   sender,
		logger:   logger,
		ttl:      ttl,
		now:      time.Now,
		generate: GenerateCode,
	}
}

// Issue creates a fresh code for email, replacing outstanding ones, and sends it.
// If delivery fails the stored challenge is removed again.
func (m *Manager) Issue(ctx context.Context, email string) error {
	code, err := m.generate()
	if err != nil {
		return fmt.Errorf("failed to generate otp: %w", err)
	}

	now := m.now()
	c := &Challenge{
		Email:     email,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}

	if err := m.store.Replace(ctx, c); err != nil {
		return err
	}

	if err := m.sender.SendOTPEmail(ctx, email, code, m.ttl); err != nil {
		if delErr := m.store.Delete(ctx, c.ID); delErr != nil {
			m.logger.Error("failed to roll back otp challenge", "email", email, "error", delErr)
		}
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	return nil
}

// Verify checks the code without consuming it
func (m *Manager) Verify(ctx context.Context, email, code string) error {
	now := m.now()

	c, err := m.store.FindValid(ctx, email, code, now)
	if err != nil {
		if errors.Is(err, errChallengeNotFound) {
			return ErrInvalidCode
		}
		return err
	}

	if c.Expired(now) {
		return ErrInvalidCode
	}

	if c.VerifiedAt == nil {
		if err := m.store.MarkVerified(ctx, c.ID, now); err != nil {
			m.logger.Warn("failed to mark otp verified", "email", email, "error", err)
		}
	}

	return nil
}

// Consume removes every challenge for email. Failures are logged only.
func (m *Manager) Consume(ctx context.Context, email string) {
	if err := m.store.DeleteByEmail(ctx, email); err != nil {
		m.logger.Error("failed to consume otp challenges", "email", email, "error", err)
	}
}

// Sweep deletes expired challenges
func (m *Manager) Sweep(ctx context.Context) (int64, error) {
	return m.store.DeleteExpired(ctx, m.now())
}

// RunSweeper calls Sweep every interval until ctx is done
func (m *Manager) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := m.Sweep(ctx)
			if err != nil {
				m.logger.Error("otp sweep failed", "error", err)
				continue
			}
			if n > 0 {
				m.logger.Debug("expired otp challenges removed", "count", n)
			}
		}
	}
}

// GenerateCode returns a uniformly random 6 digit code
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", n.Int64()+codeMin), nil
}
