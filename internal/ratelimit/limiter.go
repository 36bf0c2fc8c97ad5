package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter keeps fixed-window request counters in Redis
type Limiter struct {
	client         *redis.Client
	trustedProxies []netip.Prefix
}

// NewLimiter builds a limiter. Forwarding headers are only read when the
// direct peer falls inside one of trustedProxies.
func NewLimiter(client *redis.Client, trustedProxies ...netip.Prefix) *Limiter {
	return &Limiter{client: client, trustedProxies: trustedProxies}
}

// Allow records one request for (purpose, ip) and reports whether it is within limit.
// The window starts with the first request and is not extended by later ones.
// retryAfter is the time left in the current window.
func (l *Limiter) Allow(ctx context.Context, purpose, ip string, limit int, window time.Duration) (allowed bool, retryAfter time.Duration, err error) {
	key := ipKey(purpose, ip)

	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err = l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, window)
		ttl = pipe.TTL(ctx, key)
		return nil
	})
	if err != nil {
		return false, 0, fmt.Errorf("failed to update rate limit counter: %w", err)
	}

	retryAfter = ttl.Val()
	if retryAfter <= 0 {
		retryAfter = window
	}
	return incr.Val() <= int64(limit), retryAfter, nil
}

// Remaining returns how many requests are left in the current window
func (l *Limiter) Remaining(ctx context.Context, purpose, ip string, limit int) (int, error) {
	count, err := l.client.Get(ctx, ipKey(purpose, ip)).Int()
	if err == redis.Nil {
		return limit, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read rate limit counter: %w", err)
	}

	if count >= limit {
		return 0, nil
	}
	return limit - count, nil
}

// AcquireEmailCooldown starts a cooldown for email. It returns false if one is already active.
func (l *Limiter) AcquireEmailCooldown(ctx context.Context, purpose, email string, cooldown time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, cooldownKey(purpose, email), 1, cooldown).Result()
	if err != nil {
		return false, fmt.Errorf("failed to set email cooldown: %w", err)
	}
	return ok, nil
}

// ClearEmailCooldown drops an active cooldown, used when the guarded action failed
func (l *Limiter) ClearEmailCooldown(ctx context.Context, purpose, email string) error {
	if err := l.client.Del(ctx, cooldownKey(purpose, email)).Err(); err != nil {
		return fmt.Errorf("failed to clear email cooldown: %w", err)
	}
	return nil
}

func ipKey(purpose, ip string) string {
	return fmt.Sprintf("rate_limit:%s:%s", purpose, ip)
}

// Emails are hashed so addresses do not show up in Redis keys
func cooldownKey(purpose, email string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("cooldown:%s:%s", purpose, hex.EncodeToString(sum[:]))
}

// ClientIP returns the address requests are counted under. It is the
// direct peer unless that peer is a trusted proxy, in which case it is the
// right-most X-Forwarded-For hop that is not itself trusted.
func (l *Limiter) ClientIP(r *http.Request) string {
	peer := remoteIP(r.RemoteAddr)
	addr, err := netip.ParseAddr(peer)
	if err != nil || !l.trusted(addr) {
		return peer
	}

	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
		if err != nil {
			// garbage in the chain was written by the client
			break
		}
		if !l.trusted(hop) {
			return hop.Unmap().String()
		}
	}
	return peer
}

func (l *Limiter) trusted(addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, p := range l.trustedProxies {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

func remoteIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
