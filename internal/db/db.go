// Package db provides PostgreSQL storage for users, job requirements and
// screened candidates.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool    *pgxpool.Pool
	backoff func() retry.Backoff
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool, backoff: defaultBackoff}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Ping checks that the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.pool.Ping(ctx); err != nil {
		return &PersistenceError{Op: "ping", Cause: err}
	}
	return nil
}

// Pool exposes the underlying pool for migrations and tests.
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}
