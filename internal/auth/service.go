package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/redmonkez12/fitness-api/internal/logging"
	"github.com/redmonkez12/fitness-api/internal/user"
)

var (
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrInvalidResetToken    = errors.New("invalid or expired reset token")
	ErrResetDeliveryFailed  = errors.New("failed to send reset link")
	ErrPasswordResetNoMatch = errors.New("reset token does not belong to user")
)

// SignupResult is returned after a successful registration
type SignupResult struct {
	Token  string
	UserID uuid.UUID
}

// LoginResult carries the session token and the identity fields the client shows
type LoginResult struct {
	Token string
	User  *user.User
}

// Service handles authentication business logic
type Service struct {
	users     UserStore
	otp       OTPManager
	issuer    *Issuer
	hasher    *PasswordHasher
	resets    ResetTokenStore
	email     EmailService
	logger    *logging.Logger
	dummyHash string
}

func NewService(
	users UserStore,
	otp OTPManager,
	issuer *Issuer,
	hasher *PasswordHasher,
	resets ResetTokenStore,
	email EmailService,
	logger *logging.Logger,
) *Service {
	s := &Service{
		users:  users,
		otp:    otp,
		issuer: issuer,
		hasher: hasher,
		resets: resets,
		email:  email,
		logger: logger,
	}

	// Compared against on unknown emails so both login failures cost the same
	if h, err := hasher.Hash("not-a-real-password"); err == nil {
		s.dummyHash = h
	}

	return s
}

func (s *Service) SendOTP(ctx context.Context, email string) error {
	return s.otp.Issue(ctx, email)
}

func (s *Service) VerifyOTP(ctx context.Context, email, code string) error {
	return s.otp.Verify(ctx, email, code)
}

// Signup checks the OTP, registers the user and returns a session token.
// The OTP is consumed only after the user row exists.
func (s *Service) Signup(ctx context.Context, name, email, password, code string) (*SignupResult, error) {
	if err := s.otp.Verify(ctx, email, code); err != nil {
		return nil, err
	}

	newUser, err := s.register(ctx, name, email, password)
	if err != nil {
		return nil, err
	}

	token, err := s.issuer.Mint(newUser.ID, newUser.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to mint token: %w", err)
	}

	s.otp.Consume(ctx, email)

	return &SignupResult{Token: token, UserID: newUser.ID}, nil
}

func (s *Service) register(ctx context.Context, name, email, password string) (*user.User, error) {
	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, user.ErrDuplicateEmail
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	// The unique index still guards against a concurrent signup for the same email
	newUser, err := s.users.Create(ctx, name, email, passwordHash)
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return nil, user.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return newUser, nil
}

// Login authenticates a user and returns a session token
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	existingUser, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			s.hasher.Compare(s.dummyHash, password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !s.hasher.Compare(existingUser.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.issuer.Mint(existingUser.ID, existingUser.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to mint token: %w", err)
	}

	return &LoginResult{Token: token, User: existingUser}, nil
}

// RequestPasswordReset mails a reset link carrying a fresh session token.
// Unknown emails return user.ErrNotFound.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	existingUser, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	token, err := s.issuer.Mint(existingUser.ID, existingUser.Email)
	if err != nil {
		return fmt.Errorf("failed to mint reset token: %w", err)
	}

	if err := s.resets.StorePasswordResetToken(ctx, existingUser.ID, token, s.issuer.Lifetime()); err != nil {
		return err
	}

	if err := s.email.SendPasswordResetEmail(ctx, email, token); err != nil {
		if _, delErr := s.resets.DeletePasswordResetToken(ctx, token); delErr != nil {
			s.logger.Warn("failed to delete unsent password reset token", "error", delErr)
		}
		return fmt.Errorf("%w: %v", ErrResetDeliveryFailed, err)
	}

	return nil
}

// ResetPassword sets a new password using a reset token. Each token works once.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	claims, err := s.issuer.Verify(token)
	if err != nil {
		return ErrInvalidResetToken
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return ErrInvalidResetToken
	}

	markedID, err := s.resets.GetPasswordResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrPasswordResetTokenNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}
	if markedID != userID {
		return fmt.Errorf("%w: %w", ErrInvalidResetToken, ErrPasswordResetNoMatch)
	}

	// Claim the token before writing so a concurrent reset with it fails
	claimed, err := s.resets.DeletePasswordResetToken(ctx, token)
	if err != nil {
		return err
	}
	if !claimed {
		return ErrInvalidResetToken
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePassword(ctx, userID, passwordHash); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.ErrNotFound
		}
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}
