// Package pg implements the repository interfaces on PostgreSQL via pgxpool.
package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgUniqueViolation   = "23505"
	pgUndefinedFunction = "42883"
)

// Store bundles the repository implementations over one pool.
type Store struct {
	pool *pgxpool.Pool

	Profiles    *ProfileRepo
	Credentials *CredentialRepo
	Connections *ConnectionRepo
	Referrals   *ReferralRepo
}

// Options tune the connection pool.
type Options struct {
	MaxConns        int
	ConnMaxLifetime time.Duration
}

// New connects to dsn and pings the database.
func New(ctx context.Context, dsn string, opts Options) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pg: parse dsn: %w", err)
	}
	if opts.MaxConns > 0 {
		cfg.MaxConns = int32(opts.MaxConns)
	}
	if opts.ConnMaxLifetime > 0 {
		cfg.MaxConnLifetime = opts.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pg: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg: ping: %w", err)
	}

	return &Store{
		pool:        pool,
		Profiles:    &ProfileRepo{pool: pool},
		Credentials: &CredentialRepo{pool: pool},
		Connections: &ConnectionRepo{pool: pool},
		Referrals:   &ReferralRepo{pool: pool},
	}, nil
}

// Ping verifies connectivity. Used by the readiness probe.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}

func isPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
