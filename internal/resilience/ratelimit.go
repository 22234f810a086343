package resilience

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter wraps a global token-bucket rate limiter.
type Limiter struct {
	global *rate.Limiter
}

// LimiterConfig holds rate limiter configuration.
type LimiterConfig struct {
	RPS   float64 // Requests per second; 0 or negative disables limiting
	Burst int
}

// DefaultLimiterConfig returns defaults matching Telegram's global
// ~30 messages/second guidance.
func DefaultLimiterConfig() LimiterConfig {
	return LimiterConfig{
		RPS:   30,
		Burst: 10,
	}
}

// NewLimiter creates a new rate limiter. A non-positive RPS yields an
// unlimited limiter.
func NewLimiter(cfg LimiterConfig) *Limiter {
	limit := rate.Limit(cfg.RPS)
	burst := cfg.Burst
	if cfg.RPS <= 0 {
		limit = rate.Inf
		burst = 0
	}
	return &Limiter{global: rate.NewLimiter(limit, burst)}
}

// Wait blocks until the limiter allows one event or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.global.Wait(ctx)
}

// Allow reports whether one event may proceed without blocking.
func (l *Limiter) Allow() bool {
	return l.global.Allow()
}

// SetLimit updates the rate and burst.
func (l *Limiter) SetLimit(rps float64, burst int) {
	l.global.SetLimit(rate.Limit(rps))
	l.global.SetBurst(burst)
}
