package config

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordConfig holds configuration for password hashing and verification.
type PasswordConfig struct {
	BcryptCost int
	Pepper     string // optional global secret appended before hashing
}

// NewPasswordConfig validates and returns a password configuration.
func NewPasswordConfig(cost int, pepper string) (*PasswordConfig, error) {
	config := &PasswordConfig{
		BcryptCost: cost,
		Pepper:     pepper,
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}

	return config, nil
}

// normalize validates the configuration.
func (c *PasswordConfig) normalize() error {
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > 14 {
		return fmt.Errorf("bcrypt cost out of range: %d (must be %d-14)", c.BcryptCost, bcrypt.MinCost)
	}
	return nil
}

// HashPassword hashes a password using bcrypt (with optional pepper).
func (c *PasswordConfig) HashPassword(pw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pw+c.Pepper), c.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(hash), nil
}

// VerifyPassword verifies a password against a stored hash (with optional pepper).
func (c *PasswordConfig) VerifyPassword(pw, storedHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(pw+c.Pepper))
	return err == nil
}
