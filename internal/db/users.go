package db

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// User Methods
// -----------------------------------------------------------------------------

// User is an account row, including the password hash.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateUser inserts a user. Emails are stored lowercased; a taken email yields ErrDuplicate.
func (db *DB) CreateUser(ctx context.Context, name, email, passwordHash string) (*User, error) {
	u := &User{
		Name:         strings.TrimSpace(name),
		Email:        normalizeEmail(email),
		PasswordHash: passwordHash,
	}
	err := db.withRetry(ctx, "create user", func(ctx context.Context) error {
		return db.pool.QueryRow(ctx,
			`INSERT INTO users (name, email, password_hash)
			 VALUES ($1, $2, $3)
			 RETURNING id, created_at, updated_at`,
			u.Name, u.Email, u.PasswordHash,
		).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetUserByEmail looks a user up by email, case-insensitively.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, ErrNotFound
	}
	return db.getUser(ctx, "get user by email",
		`SELECT id, name, email, password_hash, created_at, updated_at
		 FROM users WHERE email = $1`, email)
}

// GetUser looks a user up by id.
func (db *DB) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return db.getUser(ctx, "get user",
		`SELECT id, name, email, password_hash, created_at, updated_at
		 FROM users WHERE id = $1`, id)
}

// DeleteUser removes a user and, through cascading keys, their jobs and candidates.
func (db *DB) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return db.withRetry(ctx, "delete user", func(ctx context.Context) error {
		tag, err := db.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (db *DB) getUser(ctx context.Context, op, query string, arg any) (*User, error) {
	var u User
	err := db.withRetry(ctx, op, func(ctx context.Context) error {
		return db.pool.QueryRow(ctx, query, arg).
			Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
