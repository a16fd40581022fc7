package server

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/candidate-screener/internal/db"
	"github.com/jonathan/candidate-screener/internal/types"
)

// fakeStore is an in-memory Store for handler tests.
type fakeStore struct {
	mu         sync.Mutex
	pingErr    error
	users      map[string]*db.User
	jobs       map[uuid.UUID]*types.JobRequirement
	candidates map[uuid.UUID]*types.CandidateRecord
}

var _ Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:      make(map[string]*db.User),
		jobs:       make(map[uuid.UUID]*types.JobRequirement),
		candidates: make(map[uuid.UUID]*types.CandidateRecord),
	}
}

func (f *fakeStore) Ping(context.Context) error {
	return f.pingErr
}

func (f *fakeStore) CreateUser(_ context.Context, name, email, passwordHash string) (*db.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := strings.ToLower(strings.TrimSpace(email))
	if _, ok := f.users[key]; ok {
		return nil, db.ErrDuplicate
	}
	now := time.Now()
	u := &db.User{ID: uuid.New(), Name: name, Email: key, PasswordHash: passwordHash, CreatedAt: now, UpdatedAt: now}
	f.users[key] = u
	return u, nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*db.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, db.ErrNotFound
	}
	return u, nil
}

func (f *fakeStore) CreateJobRequirement(_ context.Context, job *types.JobRequirement) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	job.ID = uuid.New()
	job.CreatedAt = time.Now()
	job.UpdatedAt = job.CreatedAt
	cp := *job
	f.jobs[job.ID] = &cp
	return nil
}

func (f *fakeStore) GetJobRequirement(_ context.Context, userID, id uuid.UUID) (*types.JobRequirement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	job, ok := f.jobs[id]
	if !ok || job.UserID != userID {
		return nil, db.ErrNotFound
	}
	cp := *job
	return &cp, nil
}

func (f *fakeStore) ListJobRequirements(_ context.Context, userID uuid.UUID) ([]types.JobRequirement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []types.JobRequirement
	for _, job := range f.jobs {
		if job.UserID == userID {
			out = append(out, *job)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) InsertCandidates(_ context.Context, records []types.CandidateRecord) ([]types.CandidateRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]types.CandidateRecord, 0, len(records))
	for _, rec := range records {
		if rec.ExtractionFailed {
			continue
		}
		rec.ID = uuid.New()
		rec.CreatedAt = time.Now()
		rec.UpdatedAt = rec.CreatedAt
		cp := rec
		f.candidates[rec.ID] = &cp
		out = append(out, rec)
	}
	return out, nil
}

func (f *fakeStore) ListCandidates(_ context.Context, userID, jobID uuid.UUID, status types.Status) ([]types.CandidateRecord, error) {
	if status != "" && !status.Valid() {
		return nil, &types.InvalidStatusError{Value: string(status)}
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []types.CandidateRecord{}
	for _, c := range f.candidates {
		if c.UserID != userID || c.JobRequirementID != jobID {
			continue
		}
		if status != "" && c.Status != status {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeStore) UpdateCandidateStatus(_ context.Context, userID, id uuid.UUID, status types.Status) (*types.CandidateRecord, error) {
	if !status.Valid() {
		return nil, &types.InvalidStatusError{Value: string(status)}
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	c, ok := f.candidates[id]
	if !ok || c.UserID != userID {
		return nil, db.ErrNotFound
	}
	c.Status = status
	c.UpdatedAt = time.Now()
	cp := *c
	return &cp, nil
}

func (f *fakeStore) TransitionCandidates(_ context.Context, userID, jobID uuid.UUID, ids []uuid.UUID, from, to types.Status) ([]types.CandidateRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []types.CandidateRecord{}
	for _, id := range ids {
		c, ok := f.candidates[id]
		if !ok || c.UserID != userID || c.JobRequirementID != jobID || c.Status != from {
			continue
		}
		c.Status = to
		c.UpdatedAt = time.Now()
		out = append(out, *c)
	}
	return out, nil
}

var errStoreDown = errors.New("connection refused")
