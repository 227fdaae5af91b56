// Package postgres implements the repository interfaces over PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tinytales/tinytales-server/internal/errs"
)

// PgxPool is the subset of pgxpool.Pool the repositories need. Both
// *pgxpool.Pool and pgxmock.PgxPoolIface satisfy it, which is what lets the
// repository tests run SQL expectations without a live database.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Close()
}

// DB carries the pool into repository constructors.
type DB struct{ Pool PgxPool }

// New opens a connection pool for the given DSN.
func New(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &DB{Pool: pool}, nil
}

// Close shuts down the pool.
func (db *DB) Close() { db.Pool.Close() }

// isUniqueViolation reports whether the error is a unique constraint violation.
func isUniqueViolation(err error) bool {
	var pg *pgconn.PgError
	return errors.As(err, &pg) && pg.Code == "23505"
}

// storeErr classifies a pool-level failure. Connection-class errors (refused
// dials, dropped sockets) are wrapped as ErrUnavailable so callers can tell
// an unreachable store from a statement failure; everything else passes
// through unchanged.
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	var connErr *pgconn.ConnectError
	var opErr *net.OpError
	if errors.As(err, &connErr) || errors.As(err, &opErr) {
		return fmt.Errorf("%w: %v", errs.ErrUnavailable, err)
	}
	return err
}
