package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonathan/candidate-screener/internal/config"
	"github.com/jonathan/candidate-screener/internal/db"
	"github.com/jonathan/candidate-screener/internal/types"
)

// UserService provides business logic for recruiter accounts.
type UserService struct {
	store          Store
	passwordConfig *config.PasswordConfig
}

// NewUserService creates a new UserService with the given dependencies
func NewUserService(store Store, passwordConfig *config.PasswordConfig) *UserService {
	return &UserService{
		store:          store,
		passwordConfig: passwordConfig,
	}
}

// convertDBUserToTypesUser converts db.User to types.User, excluding password hash
func convertDBUserToTypesUser(dbUser *db.User) *types.User {
	if dbUser == nil {
		return nil
	}
	return &types.User{
		ID:        dbUser.ID,
		Name:      dbUser.Name,
		Email:     dbUser.Email,
		CreatedAt: dbUser.CreatedAt,
	}
}

// Register creates a new user with password authentication
func (s *UserService) Register(ctx context.Context, req *types.CreateUserRequest) (*types.User, error) {
	passwordHash, err := s.passwordConfig.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	dbUser, err := s.store.CreateUser(ctx, req.Name, req.Email, passwordHash)
	if err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, &ErrEmailAlreadyExists{Email: req.Email}
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return convertDBUserToTypesUser(dbUser), nil
}

// Login authenticates a user and returns user data
func (s *UserService) Login(ctx context.Context, req *types.LoginRequest) (*types.User, error) {
	dbUser, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		// Unknown emails and wrong passwords are indistinguishable to the caller
		if errors.Is(err, db.ErrNotFound) {
			return nil, &ErrInvalidCredentials{}
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	if !s.passwordConfig.VerifyPassword(req.Password, dbUser.PasswordHash) {
		return nil, &ErrInvalidCredentials{}
	}

	return convertDBUserToTypesUser(dbUser), nil
}
