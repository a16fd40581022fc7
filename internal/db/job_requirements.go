package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/candidate-screener/internal/types"
)

// -----------------------------------------------------------------------------
// Job Requirement Methods
// -----------------------------------------------------------------------------

const jobRequirementColumns = `id, user_id, title, company, location, experience,
	content, required_skills, created_at, updated_at`

// CreateJobRequirement inserts job and fills in its ID and timestamps.
func (db *DB) CreateJobRequirement(ctx context.Context, job *types.JobRequirement) error {
	return db.withRetry(ctx, "create job requirement", func(ctx context.Context) error {
		return insertJobRequirement(ctx, db.pool, job)
	})
}

// rowQuerier is satisfied by both the pool and a transaction.
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func insertJobRequirement(ctx context.Context, q rowQuerier, job *types.JobRequirement) error {
	skills := job.RequiredSkills
	if skills == nil {
		skills = []string{}
	}
	return q.QueryRow(ctx,
		`INSERT INTO job_requirements (user_id, title, company, location, experience, content, required_skills)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		job.UserID, job.Title, job.Company, job.Location, job.ExperienceLevel, job.RawContent, skills,
	).Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt)
}

// GetJobRequirement returns the job with the given id owned by userID.
func (db *DB) GetJobRequirement(ctx context.Context, userID, id uuid.UUID) (*types.JobRequirement, error) {
	var job *types.JobRequirement
	err := db.withRetry(ctx, "get job requirement", func(ctx context.Context) error {
		row := db.pool.QueryRow(ctx,
			`SELECT `+jobRequirementColumns+`
			 FROM job_requirements WHERE id = $1 AND user_id = $2`,
			id, userID)
		var err error
		job, err = scanJobRequirement(row)
		return err
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

// ListJobRequirements returns the user's jobs, newest first.
func (db *DB) ListJobRequirements(ctx context.Context, userID uuid.UUID) ([]types.JobRequirement, error) {
	var jobs []types.JobRequirement
	err := db.withRetry(ctx, "list job requirements", func(ctx context.Context) error {
		rows, err := db.pool.Query(ctx,
			`SELECT `+jobRequirementColumns+`
			 FROM job_requirements WHERE user_id = $1
			 ORDER BY created_at DESC, id`,
			userID)
		if err != nil {
			return err
		}
		defer rows.Close()

		jobs = jobs[:0]
		for rows.Next() {
			job, err := scanJobRequirement(rows)
			if err != nil {
				return err
			}
			jobs = append(jobs, *job)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

func scanJobRequirement(row pgx.Row) (*types.JobRequirement, error) {
	var j types.JobRequirement
	err := row.Scan(&j.ID, &j.UserID, &j.Title, &j.Company, &j.Location, &j.ExperienceLevel,
		&j.RawContent, &j.RequiredSkills, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if j.RequiredSkills == nil {
		j.RequiredSkills = []string{}
	}
	return &j, nil
}
