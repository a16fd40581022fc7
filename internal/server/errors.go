// Package server provides the HTTP REST API for the candidate screener.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/candidate-screener/internal/db"
	"github.com/jonathan/candidate-screener/internal/ingestion"
	"github.com/jonathan/candidate-screener/internal/invitation"
	"github.com/jonathan/candidate-screener/internal/pipeline"
	"github.com/jonathan/candidate-screener/internal/types"
)

// ErrEmailAlreadyExists indicates email is already registered
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	switch err.(type) {
	case *ErrEmailAlreadyExists:
		return http.StatusConflict
	case *ErrInvalidCredentials:
		return http.StatusUnauthorized
	case *ErrValidation:
		return http.StatusBadRequest
	}

	var invalidStatus *types.InvalidStatusError
	switch {
	case errors.As(err, &invalidStatus):
		return http.StatusBadRequest
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, db.ErrDuplicate), errors.Is(err, pipeline.ErrVocabularyMismatch):
		return http.StatusConflict
	case errors.Is(err, invitation.ErrNoCandidates), errors.Is(err, invitation.ErrNotShortlisted):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ingestion.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ingestion.ErrUnsupportedFileType):
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusInternalServerError
	}
}
