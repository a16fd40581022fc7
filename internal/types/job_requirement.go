// Package types provides type definitions for the structured data shared by the screener's packages.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/candidate-screener/internal/skills"
)

// JobRequirement is a job description together with the skills derived from it.
// RawContent and RequiredSkills are fixed at creation.
type JobRequirement struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	Title           string    `json:"title"`
	Company         string    `json:"company"`
	Location        string    `json:"location,omitempty"`
	ExperienceLevel string    `json:"experience,omitempty"`
	RawContent      string    `json:"content"`
	RequiredSkills  []string  `json:"required_skills"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// RequiredSet returns RequiredSkills as a set.
func (j *JobRequirement) RequiredSet() skills.Set {
	return skills.NewSet(j.RequiredSkills...)
}

// NewJobRequirement builds a JobRequirement from user input, deriving its
// required skills once with the given extractor.
func NewJobRequirement(userID uuid.UUID, req *CreateJobRequest, extractor *skills.Extractor) *JobRequirement {
	return &JobRequirement{
		UserID:          userID,
		Title:           req.Title,
		Company:         req.Company,
		Location:        req.Location,
		ExperienceLevel: req.Experience,
		RawContent:      req.Content,
		RequiredSkills:  extractor.Extract(req.Content).Sorted(),
	}
}

// CreateJobRequest is the user input for registering a job description.
type CreateJobRequest struct {
	Title      string `json:"title" validate:"required,max=200"`
	Company    string `json:"company" validate:"required,max=200"`
	Content    string `json:"content" validate:"required"`
	Location   string `json:"location,omitempty" validate:"max=200"`
	Experience string `json:"experience,omitempty" validate:"max=100"`
}

// Validate validates the CreateJobRequest using the validator.
func (r *CreateJobRequest) Validate() error {
	return validate.Struct(r)
}
