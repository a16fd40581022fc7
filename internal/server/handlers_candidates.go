package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/candidate-screener/internal/db"
	"github.com/jonathan/candidate-screener/internal/ingestion"
	"github.com/jonathan/candidate-screener/internal/invitation"
	"github.com/jonathan/candidate-screener/internal/metrics"
	"github.com/jonathan/candidate-screener/internal/pipeline"
	"github.com/jonathan/candidate-screener/internal/ranking"
	"github.com/jonathan/candidate-screener/internal/types"
)

const (
	// uploadField is the multipart field carrying résumé files.
	uploadField      = "files"
	maxFilesPerBatch = 50
	multipartMemory  = 32 << 20
)

// FailedDocument reports a résumé whose text could not be extracted.
type FailedDocument struct {
	FileName string `json:"file_name"`
	Reason   string `json:"reason"`
}

// BatchResponse is the result of screening one upload batch.
type BatchResponse struct {
	JobID      uuid.UUID               `json:"job_id"`
	Candidates []types.CandidateRecord `json:"candidates"`
	Failed     []FailedDocument        `json:"failed"`
	Succeeded  int                     `json:"succeeded"`
	// FailedCount equals len(Failed).
	FailedCount int `json:"failed_count"`
}

// CandidateListResponse is the body of GET /jobs/{id}/candidates.
type CandidateListResponse struct {
	Candidates []types.CandidateRecord `json:"candidates"`
	Count      int                     `json:"count"`
}

// InviteRequest selects shortlisted candidates to invite. An empty
// CandidateIDs invites every shortlisted candidate of the job.
type InviteRequest struct {
	CandidateIDs []uuid.UUID `json:"candidate_ids,omitempty"`
	invitation.Details
}

// InviteResponse carries the rendered invitations and the updated candidates.
type InviteResponse struct {
	Invitations []invitation.Draft      `json:"invitations"`
	Invited     []types.CandidateRecord `json:"invited"`
}

// handleUploadCandidates screens uploaded résumés against a job and stores the results.
func (s *Server) handleUploadCandidates(w http.ResponseWriter, r *http.Request) {
	job, ok := s.loadJob(w, r)
	if !ok {
		return
	}
	docs, ok := s.readUploads(w, r)
	if !ok {
		return
	}

	resp, err := s.screenAndStore(r.Context(), job, docs, nil)
	if err != nil {
		s.failure(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, resp)
}

// handleUploadCandidatesStream is handleUploadCandidates with per-document
// progress sent as server-sent events.
func (s *Server) handleUploadCandidatesStream(w http.ResponseWriter, r *http.Request) {
	job, ok := s.loadJob(w, r)
	if !ok {
		return
	}
	docs, ok := s.readUploads(w, r)
	if !ok {
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp, err := s.screenAndStore(r.Context(), job, docs, func(event pipeline.ProgressEvent) {
		if err := sse.WriteEvent(eventProgress, event); err != nil {
			s.logger.Debug("failed to write progress event", zap.Error(err))
		}
	})
	if err != nil {
		if HTTPStatus(err) == http.StatusInternalServerError {
			s.logger.Error("streaming batch failed", zap.Error(err))
			sse.WriteError("internal server error")
			return
		}
		sse.WriteError(err.Error())
		return
	}
	sse.WriteComplete(resp)
}

// screenAndStore runs the pipeline over docs, persists the scored records and
// reports the failed ones.
func (s *Server) screenAndStore(ctx context.Context, job *types.JobRequirement, docs []types.CandidateDocument, onProgress pipeline.ProgressCallback) (*BatchResponse, error) {
	result, err := s.pipeline.Run(ctx, job, docs, onProgress)
	if err != nil {
		return nil, err
	}

	stored, err := s.store.InsertCandidates(ctx, result.Records)
	if err != nil {
		return nil, err
	}

	resp := &BatchResponse{
		JobID:       job.ID,
		Candidates:  ranking.Rank(stored),
		Failed:      []FailedDocument{},
		Succeeded:   result.Succeeded,
		FailedCount: result.Failed,
	}
	for _, rec := range result.Records {
		if rec.ExtractionFailed {
			resp.Failed = append(resp.Failed, FailedDocument{FileName: rec.FileName, Reason: rec.FailureReason})
		}
	}
	return resp, nil
}

// readUploads parses the multipart body and extracts text from every file.
// Per-file failures are kept on the documents; only a malformed request fails.
func (s *Server) readUploads(w http.ResponseWriter, r *http.Request) ([]types.CandidateDocument, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload*maxFilesPerBatch+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			errorResponse(w, http.StatusRequestEntityTooLarge, "request body too large")
			return nil, false
		}
		errorResponse(w, http.StatusBadRequest, "Invalid multipart form: "+err.Error())
		return nil, false
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	headers := r.MultipartForm.File[uploadField]
	switch {
	case len(headers) == 0:
		errorResponse(w, http.StatusBadRequest, fmt.Sprintf("at least one file is required in field %q", uploadField))
		return nil, false
	case len(headers) > maxFilesPerBatch:
		errorResponse(w, http.StatusBadRequest, fmt.Sprintf("at most %d files per batch", maxFilesPerBatch))
		return nil, false
	}

	docs := make([]types.CandidateDocument, len(headers))
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, fh := range headers {
		g.Go(func() error {
			docs[i] = s.extractUpload(r.Context(), fh)
			return nil
		})
	}
	_ = g.Wait()
	return docs, true
}

func (s *Server) extractUpload(ctx context.Context, fh *multipart.FileHeader) types.CandidateDocument {
	f, err := fh.Open()
	if err != nil {
		return types.CandidateDocument{
			SourceFileName:      fh.Filename,
			SourceFileSizeBytes: fh.Size,
			ExtractionErr:       &ingestion.ExtractionError{FileName: fh.Filename, Message: "failed to open upload", Cause: err},
			Contact:             types.Contact{Name: ingestion.NameFromFileName(fh.Filename)},
		}
	}
	defer f.Close()

	return ingestion.BuildDocument(ctx, s.files, ingestion.Upload{
		FileName: fh.Filename,
		Size:     fh.Size,
		Body:     f,
	})
}

// handleListCandidates returns a job's candidates ranked by score or sorted by name.
func (s *Server) handleListCandidates(w http.ResponseWriter, r *http.Request) {
	job, ok := s.loadJob(w, r)
	if !ok {
		return
	}

	var status types.Status
	if q := r.URL.Query().Get("status"); q != "" {
		parsed, err := types.ParseStatus(q)
		if err != nil {
			s.failure(w, err)
			return
		}
		status = parsed
	}

	order := ranking.Rank
	switch sortBy := r.URL.Query().Get("sort"); sortBy {
	case "", "score":
	case "name":
		order = ranking.SortByName
	default:
		s.failure(w, &ErrValidation{Field: "sort", Message: "must be score or name"})
		return
	}

	records, err := s.store.ListCandidates(r.Context(), job.UserID, job.ID, status)
	if err != nil {
		s.failure(w, err)
		return
	}
	records = order(records)
	jsonResponse(w, http.StatusOK, CandidateListResponse{Candidates: records, Count: len(records)})
}

// handleUpdateCandidateStatus moves a candidate to a new status.
func (s *Server) handleUpdateCandidateStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	candidateID, ok := pathID(w, r, "candidate")
	if !ok {
		return
	}

	var req types.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	status, err := types.ParseStatus(req.Status)
	if err != nil {
		s.failure(w, err)
		return
	}

	rec, err := s.store.UpdateCandidateStatus(r.Context(), userID, candidateID, status)
	if err != nil {
		s.failure(w, err)
		return
	}
	metrics.IncreaseStatusTransitionsMetric(string(status))
	jsonResponse(w, http.StatusOK, rec)
}

// handleInviteCandidates renders invitations for shortlisted candidates and
// marks them invited. Delivery is left to the caller.
func (s *Server) handleInviteCandidates(w http.ResponseWriter, r *http.Request) {
	job, ok := s.loadJob(w, r)
	if !ok {
		return
	}

	var req InviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	selected, err := s.selectForInvitation(r.Context(), job, req.CandidateIDs)
	if err != nil {
		s.failure(w, err)
		return
	}
	drafts, err := invitation.Drafts(job, selected, req.Details)
	if err != nil {
		s.failure(w, err)
		return
	}

	ids := make([]uuid.UUID, len(selected))
	for i := range selected {
		ids[i] = selected[i].ID
	}
	invited, err := s.store.TransitionCandidates(r.Context(), job.UserID, job.ID, ids, types.StatusShortlisted, types.StatusInvited)
	if err != nil {
		s.failure(w, err)
		return
	}
	for range invited {
		metrics.IncreaseStatusTransitionsMetric(string(types.StatusInvited))
	}

	jsonResponse(w, http.StatusOK, InviteResponse{Invitations: drafts, Invited: invited})
}

// selectForInvitation resolves the requested candidates of job. With no ids
// it returns every shortlisted candidate.
func (s *Server) selectForInvitation(ctx context.Context, job *types.JobRequirement, ids []uuid.UUID) ([]types.CandidateRecord, error) {
	if len(ids) == 0 {
		return s.store.ListCandidates(ctx, job.UserID, job.ID, types.StatusShortlisted)
	}

	all, err := s.store.ListCandidates(ctx, job.UserID, job.ID, "")
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]types.CandidateRecord, len(all))
	for _, c := range all {
		byID[c.ID] = c
	}

	selected := make([]types.CandidateRecord, 0, len(ids))
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		c, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("candidate %s: %w", id, db.ErrNotFound)
		}
		selected = append(selected, c)
	}
	return selected, nil
}
