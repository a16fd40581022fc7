package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/candidate-screener/internal/types"
)

// -----------------------------------------------------------------------------
// Candidate Methods
// -----------------------------------------------------------------------------

const candidateColumns = `id, job_description_id, user_id, name, email, phone, file_name, file_size,
	match_score, matched_skills, missing_skills, experience, summary, status, created_at, updated_at`

// InsertCandidates stores a screened batch in one transaction and returns the
// stored rows with their ids and timestamps. Records whose extraction failed
// are skipped; they carry no score to persist.
func (db *DB) InsertCandidates(ctx context.Context, records []types.CandidateRecord) ([]types.CandidateRecord, error) {
	if err := checkCandidates(records); err != nil {
		return nil, err
	}

	var stored []types.CandidateRecord
	err := db.withRetry(ctx, "insert candidates", func(ctx context.Context) error {
		return pgx.BeginFunc(ctx, db.pool, func(tx pgx.Tx) error {
			var err error
			stored, err = insertCandidates(ctx, tx, records)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// CreateJobWithCandidates inserts job and its screened candidates in one
// transaction, so a job is never stored without the batch it was created for.
// The records are re-pointed at the job's new id before they are inserted.
func (db *DB) CreateJobWithCandidates(ctx context.Context, job *types.JobRequirement, records []types.CandidateRecord) ([]types.CandidateRecord, error) {
	if job.UserID == uuid.Nil {
		return nil, fmt.Errorf("job %q: user id is required", job.Title)
	}
	pending := make([]types.CandidateRecord, len(records))
	copy(pending, records)
	for i := range pending {
		pending[i].UserID = job.UserID
		if !pending[i].ExtractionFailed && !pending[i].Status.Valid() {
			return nil, &types.InvalidStatusError{Value: string(pending[i].Status)}
		}
	}

	var stored []types.CandidateRecord
	err := db.withRetry(ctx, "create job with candidates", func(ctx context.Context) error {
		return pgx.BeginFunc(ctx, db.pool, func(tx pgx.Tx) error {
			if err := insertJobRequirement(ctx, tx, job); err != nil {
				return err
			}
			for i := range pending {
				pending[i].JobRequirementID = job.ID
			}
			var err error
			stored, err = insertCandidates(ctx, tx, pending)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

func checkCandidates(records []types.CandidateRecord) error {
	for i := range records {
		if records[i].ExtractionFailed {
			continue
		}
		if records[i].JobRequirementID == uuid.Nil || records[i].UserID == uuid.Nil {
			return fmt.Errorf("candidate %q: job and user ids are required", records[i].FileName)
		}
		if !records[i].Status.Valid() {
			return &types.InvalidStatusError{Value: string(records[i].Status)}
		}
	}
	return nil
}

func insertCandidates(ctx context.Context, tx pgx.Tx, records []types.CandidateRecord) ([]types.CandidateRecord, error) {
	stored := make([]types.CandidateRecord, 0, len(records))
	for _, rec := range records {
		if rec.ExtractionFailed {
			continue
		}
		row := tx.QueryRow(ctx,
			`INSERT INTO candidates (job_description_id, user_id, name, email, phone, file_name, file_size,
			                         match_score, matched_skills, missing_skills, experience, summary, status)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			 RETURNING `+candidateColumns,
			rec.JobRequirementID, rec.UserID, rec.Name, rec.Email, rec.Phone, rec.FileName, rec.FileSize,
			rec.MatchScore, nonNil(rec.MatchedSkills), nonNil(rec.MissingSkills), rec.Experience, rec.Summary,
			string(rec.Status),
		)
		out, err := scanCandidate(row)
		if err != nil {
			return nil, err
		}
		stored = append(stored, *out)
	}
	return stored, nil
}

// ListCandidates returns the candidates of a job owned by userID, best score
// first. An empty status returns every candidate.
func (db *DB) ListCandidates(ctx context.Context, userID, jobID uuid.UUID, status types.Status) ([]types.CandidateRecord, error) {
	if status != "" && !status.Valid() {
		return nil, &types.InvalidStatusError{Value: string(status)}
	}

	var out []types.CandidateRecord
	err := db.withRetry(ctx, "list candidates", func(ctx context.Context) error {
		rows, err := db.pool.Query(ctx,
			`SELECT `+candidateColumns+`
			 FROM candidates
			 WHERE user_id = $1 AND job_description_id = $2 AND ($3 = '' OR status = $3)
			 ORDER BY match_score DESC NULLS LAST, lower(name), id`,
			userID, jobID, string(status))
		if err != nil {
			return err
		}
		defer rows.Close()

		out = out[:0]
		for rows.Next() {
			rec, err := scanCandidate(rows)
			if err != nil {
				return err
			}
			out = append(out, *rec)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetCandidate returns one candidate owned by userID.
func (db *DB) GetCandidate(ctx context.Context, userID, id uuid.UUID) (*types.CandidateRecord, error) {
	var rec *types.CandidateRecord
	err := db.withRetry(ctx, "get candidate", func(ctx context.Context) error {
		var err error
		rec, err = scanCandidate(db.pool.QueryRow(ctx,
			`SELECT `+candidateColumns+` FROM candidates WHERE id = $1 AND user_id = $2`,
			id, userID))
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// UpdateCandidateStatus sets the status of one candidate. Only status and
// updated_at change; an unknown status is rejected without touching the store.
func (db *DB) UpdateCandidateStatus(ctx context.Context, userID, id uuid.UUID, status types.Status) (*types.CandidateRecord, error) {
	if !status.Valid() {
		return nil, &types.InvalidStatusError{Value: string(status)}
	}

	var rec *types.CandidateRecord
	err := db.withRetry(ctx, "update candidate status", func(ctx context.Context) error {
		var err error
		rec, err = scanCandidate(db.pool.QueryRow(ctx,
			`UPDATE candidates SET status = $1, updated_at = NOW()
			 WHERE id = $2 AND user_id = $3
			 RETURNING `+candidateColumns,
			string(status), id, userID))
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// TransitionCandidates moves the given candidates of a job from one status to
// another and returns the rows that changed. Candidates not in from are left alone.
func (db *DB) TransitionCandidates(ctx context.Context, userID, jobID uuid.UUID, ids []uuid.UUID, from, to types.Status) ([]types.CandidateRecord, error) {
	for _, s := range []types.Status{from, to} {
		if !s.Valid() {
			return nil, &types.InvalidStatusError{Value: string(s)}
		}
	}
	if len(ids) == 0 {
		return []types.CandidateRecord{}, nil
	}

	var out []types.CandidateRecord
	err := db.withRetry(ctx, "transition candidates", func(ctx context.Context) error {
		rows, err := db.pool.Query(ctx,
			`UPDATE candidates SET status = $1, updated_at = NOW()
			 WHERE user_id = $2 AND job_description_id = $3 AND id = ANY($4) AND status = $5
			 RETURNING `+candidateColumns,
			string(to), userID, jobID, ids, string(from))
		if err != nil {
			return err
		}
		defer rows.Close()

		out = out[:0]
		for rows.Next() {
			rec, err := scanCandidate(rows)
			if err != nil {
				return err
			}
			out = append(out, *rec)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func scanCandidate(row pgx.Row) (*types.CandidateRecord, error) {
	var c types.CandidateRecord
	var status string
	err := row.Scan(&c.ID, &c.JobRequirementID, &c.UserID, &c.Name, &c.Email, &c.Phone, &c.FileName, &c.FileSize,
		&c.MatchScore, &c.MatchedSkills, &c.MissingSkills, &c.Experience, &c.Summary, &status,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.Status = types.Status(status)
	c.MatchedSkills = nonNil(c.MatchedSkills)
	c.MissingSkills = nonNil(c.MissingSkills)
	return &c, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
