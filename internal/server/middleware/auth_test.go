package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staticValidator accepts a fixed set of tokens.
type staticValidator map[string]uuid.UUID

type staticClaims uuid.UUID

func (c staticClaims) GetUserID() uuid.UUID { return uuid.UUID(c) }

func (v staticValidator) ValidateToken(token string) (UserIDGetter, error) {
	id, ok := v[token]
	if !ok {
		return nil, errors.New("invalid token")
	}
	return staticClaims(id), nil
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	userID := uuid.New()
	validator := staticValidator{"good-token": userID}

	var seen uuid.UUID
	handler := AuthMiddleware(validator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := GetUserID(r)
		require.NoError(t, err)
		seen = id
		w.WriteHeader(http.StatusNoContent)
	}))

	for _, header := range []string{"Bearer good-token", "bearer good-token", "BeArEr   good-token"} {
		t.Run(header, func(t *testing.T) {
			seen = uuid.Nil
			req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
			req.Header.Set("Authorization", header)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, http.StatusNoContent, w.Code)
			assert.Equal(t, userID, seen)
		})
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	validator := staticValidator{"good-token": uuid.New()}

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"no scheme", "good-token"},
		{"scheme only", "Bearer"},
		{"empty token", "Bearer "},
		{"wrong scheme", "Basic good-token"},
		{"extra parts", "Bearer good-token extra"},
		{"unknown token", "Bearer other-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := AuthMiddleware(validator)(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
				called = true
			}))

			req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.False(t, called)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())
		})
	}
}

func TestGetUserID(t *testing.T) {
	userID := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	_, err := GetUserID(req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user ID not found")

	got, err := GetUserID(req.WithContext(WithUserID(req.Context(), userID)))
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	_, err = GetUserID(req.WithContext(context.WithValue(req.Context(), userIDKey, "not-a-uuid")))
	assert.Error(t, err)

	_, err = GetUserID(req.WithContext(WithUserID(req.Context(), uuid.Nil)))
	assert.Error(t, err)
}
