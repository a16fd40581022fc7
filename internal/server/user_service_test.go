package server

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jonathan/candidate-screener/internal/config"
	"github.com/jonathan/candidate-screener/internal/db"
	"github.com/jonathan/candidate-screener/internal/types"
)

func testPasswordConfig(t *testing.T) *config.PasswordConfig {
	t.Helper()
	pw, err := config.NewPasswordConfig(bcrypt.MinCost, "")
	require.NoError(t, err)
	return pw
}

func TestConvertDBUserToTypesUser(t *testing.T) {
	now := time.Now()
	dbUser := &db.User{
		ID:           uuid.New(),
		Name:         "Rita Recruiter",
		Email:        "rita@example.com",
		PasswordHash: "hashed-password",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	user := convertDBUserToTypesUser(dbUser)
	require.NotNil(t, user)
	assert.Equal(t, dbUser.ID, user.ID)
	assert.Equal(t, dbUser.Name, user.Name)
	assert.Equal(t, dbUser.Email, user.Email)
	assert.Equal(t, dbUser.CreatedAt, user.CreatedAt)

	assert.Nil(t, convertDBUserToTypesUser(nil))
}

func TestUserService_RegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewUserService(store, testPasswordConfig(t))

	user, err := svc.Register(ctx, &types.CreateUserRequest{Name: "Rita", Email: "Rita@Example.com", Password: "password123"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, "rita@example.com", user.Email)

	stored, err := store.GetUserByEmail(ctx, "rita@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", stored.PasswordHash)

	loggedIn, err := svc.Login(ctx, &types.LoginRequest{Email: "rita@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
}

func TestUserService_RegisterDuplicate(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(newFakeStore(), testPasswordConfig(t))

	_, err := svc.Register(ctx, &types.CreateUserRequest{Name: "Rita", Email: "rita@example.com", Password: "password123"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, &types.CreateUserRequest{Name: "Rita", Email: "rita@example.com", Password: "password456"})
	var exists *ErrEmailAlreadyExists
	require.ErrorAs(t, err, &exists)
	assert.Equal(t, "rita@example.com", exists.Email)
}

func TestUserService_LoginFailures(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(newFakeStore(), testPasswordConfig(t))
	_, err := svc.Register(ctx, &types.CreateUserRequest{Name: "Rita", Email: "rita@example.com", Password: "password123"})
	require.NoError(t, err)

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, &types.LoginRequest{Email: "nobody@example.com", Password: "password123"})
		var invalid *ErrInvalidCredentials
		assert.ErrorAs(t, err, &invalid)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, &types.LoginRequest{Email: "rita@example.com", Password: "wrong-password"})
		var invalid *ErrInvalidCredentials
		assert.ErrorAs(t, err, &invalid)
	})
}
