package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestNewPasswordConfig(t *testing.T) {
	cfg, err := NewPasswordConfig(12, "")
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.BcryptCost)

	_, err = NewPasswordConfig(bcrypt.MinCost-1, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bcrypt cost out of range")

	_, err = NewPasswordConfig(15, "")
	assert.Error(t, err)
}

func TestPasswordConfig_HashAndVerify(t *testing.T) {
	cfg, err := NewPasswordConfig(bcrypt.MinCost, "")
	require.NoError(t, err)

	hash, err := cfg.HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)

	assert.True(t, cfg.VerifyPassword("correct horse", hash))
	assert.False(t, cfg.VerifyPassword("wrong horse", hash))
	assert.False(t, cfg.VerifyPassword("correct horse", "not-a-hash"))
}

func TestPasswordConfig_Pepper(t *testing.T) {
	peppered, err := NewPasswordConfig(bcrypt.MinCost, "pepper-1")
	require.NoError(t, err)
	plain, err := NewPasswordConfig(bcrypt.MinCost, "")
	require.NoError(t, err)
	rotated, err := NewPasswordConfig(bcrypt.MinCost, "pepper-2")
	require.NoError(t, err)

	hash, err := peppered.HashPassword("secret123")
	require.NoError(t, err)

	assert.True(t, peppered.VerifyPassword("secret123", hash))
	assert.False(t, plain.VerifyPassword("secret123", hash))
	assert.False(t, rotated.VerifyPassword("secret123", hash))
}

func TestPasswordConfig_SaltUniqueness(t *testing.T) {
	cfg, err := NewPasswordConfig(bcrypt.MinCost, "")
	require.NoError(t, err)

	h1, err := cfg.HashPassword("same")
	require.NoError(t, err)
	h2, err := cfg.HashPassword("same")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}
