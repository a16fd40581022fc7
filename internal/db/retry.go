package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sethvargo/go-retry"
)

const (
	retryBase       = 50 * time.Millisecond
	retryMaxRetries = 3
)

// Postgres error codes that identify a transaction the server rolled back on its own.
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeUniqueViolation      = "23505"
)

func defaultBackoff() retry.Backoff {
	b := retry.NewExponential(retryBase)
	b = retry.WithJitterPercent(20, b)
	return retry.WithMaxRetries(retryMaxRetries, b)
}

// isTransient reports whether err can be retried without risking a duplicate write.
func isTransient(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeSerializationFailure || pgErr.Code == codeDeadlockDetected
	}
	return pgconn.SafeToRetry(err)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}

// withRetry runs fn, retrying transient failures with exponential backoff.
// The final error is wrapped in a PersistenceError named after op, except
// for ErrNotFound and ErrDuplicate which are returned as-is.
func (db *DB) withRetry(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	newBackoff := db.backoff
	if newBackoff == nil {
		newBackoff = defaultBackoff
	}

	err := retry.Do(ctx, newBackoff(), func(ctx context.Context) error {
		err := fn(ctx)
		if err != nil && isTransient(err) {
			return retry.RetryableError(err)
		}
		return err
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, pgx.ErrNoRows):
		return ErrNotFound
	case isUniqueViolation(err):
		return ErrDuplicate
	}
	return &PersistenceError{Op: op, Cause: err}
}
