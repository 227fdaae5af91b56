// Package limiter throttles repeated failed logins per (login, client) pair.
package limiter

import (
	"context"
	"time"
)

// Limiter controls login attempts and temporary lockouts.
type Limiter interface {
	// Allow reports whether a login attempt is currently permitted and,
	// when it is not, how long until the lock expires.
	Allow(ctx context.Context, login string, clientHash []byte) (bool, time.Duration, error)
	// Success resets counters after a successful login.
	Success(ctx context.Context, login string, clientHash []byte) error
	// Failure records a failed attempt; may place a temporary block.
	Failure(ctx context.Context, login string, clientHash []byte) (bool, time.Duration, error)
}
