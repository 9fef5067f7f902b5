package fetcher

import (
	"math"
	"time"
)

const (
	maxAttemptsCeiling = 10
	defaultMaxBackoff  = 10 * time.Second
)

// Policy bounds how hard a single source is tried.
type Policy struct {
	MaxAttempts    int           // total attempts, including the first
	Backoff        time.Duration // wait after the first failure
	MaxBackoff     time.Duration // cap for exponential growth; 0 means max(Backoff, 10s)
	Multiplier     float64       // <= 1 keeps the backoff fixed
	AttemptTimeout time.Duration // per-attempt deadline; 0 inherits the caller's
}

// DefaultPolicy returns three attempts with 300ms doubling backoff capped at 2s.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:    3,
		Backoff:        300 * time.Millisecond,
		MaxBackoff:     2 * time.Second,
		Multiplier:     2,
		AttemptTimeout: 5 * time.Second,
	}
}

func (p Policy) normalized() Policy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.MaxAttempts > maxAttemptsCeiling {
		p.MaxAttempts = maxAttemptsCeiling
	}
	if p.Backoff < 0 {
		p.Backoff = 0
	}
	if p.MaxBackoff <= 0 {
		p.MaxBackoff = max(p.Backoff, defaultMaxBackoff)
	}
	if p.AttemptTimeout < 0 {
		p.AttemptTimeout = 0
	}
	return p
}

// Delay returns the wait after the given failed attempt (1-based).
func (p Policy) Delay(attempt int) time.Duration {
	p = p.normalized()
	if attempt < 1 {
		attempt = 1
	}
	if p.Multiplier <= 1 {
		return min(p.Backoff, p.MaxBackoff)
	}
	d := float64(p.Backoff) * math.Pow(p.Multiplier, float64(attempt-1))
	if d >= float64(p.MaxBackoff) {
		return p.MaxBackoff
	}
	return time.Duration(d)
}
