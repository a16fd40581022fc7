package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jonathan/candidate-screener/internal/config"
	"github.com/jonathan/candidate-screener/internal/server/middleware"
)

const tokenIssuer = "candidate-screener"

// ErrInvalidToken is wrapped by every ValidateToken failure.
var ErrInvalidToken = errors.New("invalid access token")

// Claims identify the recruiter a token was issued to. Every job and
// candidate lookup is scoped to UserID.
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	jwt.RegisteredClaims
}

// GetUserID satisfies middleware.UserIDGetter.
func (c *Claims) GetUserID() uuid.UUID {
	return c.UserID
}

// JWTService signs and checks the HS256 access tokens handed out at login.
type JWTService struct {
	config *config.JWTConfig
}

func NewJWTService(cfg *config.JWTConfig) *JWTService {
	return &JWTService{config: cfg}
}

func (s *JWTService) lifetime() time.Duration {
	return time.Duration(s.config.ExpirationHours) * time.Hour
}

func (s *JWTService) key(*jwt.Token) (any, error) {
	return []byte(s.config.Secret), nil
}

// GenerateToken issues a token for userID, valid from now for the configured lifetime.
func (s *JWTService) GenerateToken(userID uuid.UUID) (string, error) {
	issued := time.Now()
	claims := &Claims{UserID: userID}
	claims.Issuer = tokenIssuer
	claims.Subject = userID.String()
	claims.IssuedAt = jwt.NewNumericDate(issued)
	claims.NotBefore = claims.IssuedAt
	claims.ExpiresAt = jwt.NewNumericDate(issued.Add(s.lifetime()))

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses raw and returns its claims. The token must be HS256,
// issued by this service, carry an expiry that has not passed and name a user.
func (s *JWTService) ValidateToken(raw string) (*Claims, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: token string is empty", ErrInvalidToken)
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, s.key,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidToken, describeTokenError(err))
	}
	if claims.UserID == uuid.Nil {
		return nil, fmt.Errorf("%w: token is not valid for any user", ErrInvalidToken)
	}
	return claims, nil
}

func describeTokenError(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "malformed token"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "bad token signature"
	case errors.Is(err, jwt.ErrTokenExpired):
		return "token expired"
	default:
		return "failed to parse token: " + err.Error()
	}
}

// tokenValidatorFunc lets a function stand in for middleware.TokenValidator.
type tokenValidatorFunc func(raw string) (middleware.UserIDGetter, error)

func (f tokenValidatorFunc) ValidateToken(raw string) (middleware.UserIDGetter, error) {
	return f(raw)
}

// AsTokenValidator exposes s to the auth middleware, which cannot import this package.
func (s *JWTService) AsTokenValidator() middleware.TokenValidator {
	return tokenValidatorFunc(func(raw string) (middleware.UserIDGetter, error) {
		claims, err := s.ValidateToken(raw)
		if err != nil {
			return nil, err
		}
		return claims, nil
	})
}
