package server

import (
	"context"

	"github.com/google/uuid"

	"github.com/jonathan/candidate-screener/internal/db"
	"github.com/jonathan/candidate-screener/internal/types"
)

// Store is the persistence the API needs. *db.DB satisfies it.
type Store interface {
	Ping(ctx context.Context) error

	CreateUser(ctx context.Context, name, email, passwordHash string) (*db.User, error)
	GetUserByEmail(ctx context.Context, email string) (*db.User, error)

	CreateJobRequirement(ctx context.Context, job *types.JobRequirement) error
	GetJobRequirement(ctx context.Context, userID, id uuid.UUID) (*types.JobRequirement, error)
	ListJobRequirements(ctx context.Context, userID uuid.UUID) ([]types.JobRequirement, error)

	InsertCandidates(ctx context.Context, records []types.CandidateRecord) ([]types.CandidateRecord, error)
	ListCandidates(ctx context.Context, userID, jobID uuid.UUID, status types.Status) ([]types.CandidateRecord, error)
	UpdateCandidateStatus(ctx context.Context, userID, id uuid.UUID, status types.Status) (*types.CandidateRecord, error)
	TransitionCandidates(ctx context.Context, userID, jobID uuid.UUID, ids []uuid.UUID, from, to types.Status) ([]types.CandidateRecord, error)
}

var _ Store = (*db.DB)(nil)
