package otp

import "time"

// Challenge is a one-time code issued to an email address
type Challenge struct {
	ID         int64
	Email      string
	Code       string
	CreatedAt  time.Time
	ExpiresAt  time.Time
	VerifiedAt *time.Time
}

func (c *Challenge) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}
