package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/candidate-screener/internal/ranking"
	"github.com/jonathan/candidate-screener/internal/server/middleware"
	"github.com/jonathan/candidate-screener/internal/types"
)

// JobListResponse is the body of GET /jobs.
type JobListResponse struct {
	Jobs  []types.JobRequirement `json:"jobs"`
	Count int                    `json:"count"`
}

// JobSummaryResponse is the body of GET /jobs/{id}/summary.
type JobSummaryResponse struct {
	JobID   uuid.UUID       `json:"job_id"`
	Title   string          `json:"title"`
	Summary ranking.Summary `json:"summary"`
}

// handleCreateJob registers a job description and derives its required skills.
func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	var req types.CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	job := types.NewJobRequirement(userID, &req, s.extractor)
	if err := s.store.CreateJobRequirement(r.Context(), job); err != nil {
		s.failure(w, err)
		return
	}

	s.logger.Info("job requirement created",
		zap.String("job_id", job.ID.String()),
		zap.Strings("required_skills", job.RequiredSkills))
	jsonResponse(w, http.StatusCreated, job)
}

// handleListJobs lists the caller's jobs, newest first.
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	jobs, err := s.store.ListJobRequirements(r.Context(), userID)
	if err != nil {
		s.failure(w, err)
		return
	}
	if jobs == nil {
		jobs = []types.JobRequirement{}
	}
	jsonResponse(w, http.StatusOK, JobListResponse{Jobs: jobs, Count: len(jobs)})
}

// handleGetJob returns one of the caller's jobs.
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, ok := s.loadJob(w, r)
	if !ok {
		return
	}
	jsonResponse(w, http.StatusOK, job)
}

// handleJobSummary returns band and status counts for a job's candidates.
func (s *Server) handleJobSummary(w http.ResponseWriter, r *http.Request) {
	job, ok := s.loadJob(w, r)
	if !ok {
		return
	}

	records, err := s.store.ListCandidates(r.Context(), job.UserID, job.ID, "")
	if err != nil {
		s.failure(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, JobSummaryResponse{
		JobID:   job.ID,
		Title:   job.Title,
		Summary: ranking.Summarize(records),
	})
}

// userID returns the authenticated caller, writing 401 when absent.
func (s *Server) userID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return uuid.Nil, false
	}
	return userID, true
}

// pathID parses the {id} path value, writing 400 when malformed.
func pathID(w http.ResponseWriter, r *http.Request, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid "+what+" ID")
		return uuid.Nil, false
	}
	return id, true
}

// loadJob fetches the {id} job scoped to the caller.
func (s *Server) loadJob(w http.ResponseWriter, r *http.Request) (*types.JobRequirement, bool) {
	userID, ok := s.userID(w, r)
	if !ok {
		return nil, false
	}
	jobID, ok := pathID(w, r, "job")
	if !ok {
		return nil, false
	}

	job, err := s.store.GetJobRequirement(r.Context(), userID, jobID)
	if err != nil {
		s.failure(w, err)
		return nil, false
	}
	return job, true
}
