package limiter

import (
	"context"
	"crypto/sha256"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PG is a PostgreSQL-backed limiter with a sliding failure window and lockout.
type PG struct {
	pool     pgxQuerier
	window   time.Duration
	maxFails int
	blockFor time.Duration
}

type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewPG constructs a PostgreSQL-backed limiter.
func NewPG(pool *pgxpool.Pool, window time.Duration, maxFails int, blockFor time.Duration) *PG {
	return &PG{pool: pool, window: window, maxFails: maxFails, blockFor: blockFor}
}

// NewPGWithQuerier constructs a limiter over any querier, for tests.
func NewPGWithQuerier(q pgxQuerier, window time.Duration, maxFails int, blockFor time.Duration) *PG {
	return &PG{pool: q, window: window, maxFails: maxFails, blockFor: blockFor}
}

// HashClient returns a stable hash for a client address so raw addresses
// are never stored.
func HashClient(addr string) []byte {
	h := sha256.Sum256([]byte(addr))
	return h[:]
}

// Allow reports whether a login attempt is currently permitted.
func (l *PG) Allow(ctx context.Context, login string, clientHash []byte) (bool, time.Duration, error) {
	const q = `SELECT blocked_until FROM login_attempts WHERE login=$1 AND client_hash=$2`
	var blockedUntil time.Time
	err := l.pool.QueryRow(ctx, q, login, clientHash).Scan(&blockedUntil)
	switch err {
	case nil:
		if until := time.Until(blockedUntil); until > 0 {
			return false, until, nil
		}
		return true, 0, nil
	case pgx.ErrNoRows:
		return true, 0, nil
	default:
		return false, 0, err
	}
}

// Success resets counters for (login, client).
func (l *PG) Success(ctx context.Context, login string, clientHash []byte) error {
	const q = `
INSERT INTO login_attempts (login, client_hash, fail_count, blocked_until, updated_at)
VALUES ($1,$2,0,'epoch',now())
ON CONFLICT (login, client_hash)
DO UPDATE SET fail_count=0, blocked_until='epoch', updated_at=now()`
	_, err := l.pool.Exec(ctx, q, login, clientHash)
	return err
}

// Failure records a failed attempt. The counter restarts when the previous
// failure is older than the window; reaching maxFails sets a block.
func (l *PG) Failure(ctx context.Context, login string, clientHash []byte) (bool, time.Duration, error) {
	const q = `
INSERT INTO login_attempts (login, client_hash, fail_count, blocked_until, updated_at)
VALUES ($1,$2,1,'epoch',now())
ON CONFLICT (login, client_hash) DO UPDATE
SET
  fail_count = CASE WHEN EXCLUDED.updated_at - login_attempts.updated_at > $3::interval THEN 1 ELSE login_attempts.fail_count + 1 END,
  updated_at = now()
RETURNING fail_count`
	var fails int
	if err := l.pool.QueryRow(ctx, q, login, clientHash, l.window).Scan(&fails); err != nil {
		return false, 0, err
	}
	if fails >= l.maxFails {
		const upd = `UPDATE login_attempts SET blocked_until=$3 WHERE login=$1 AND client_hash=$2`
		if _, err := l.pool.Exec(ctx, upd, login, clientHash, time.Now().Add(l.blockFor)); err != nil {
			return false, 0, err
		}
		return true, l.blockFor, nil
	}
	return false, 0, nil
}
