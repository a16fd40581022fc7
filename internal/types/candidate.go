package types

import (
	"time"

	"github.com/google/uuid"
)

// Contact holds the best-effort contact details found in (or supplied for) a résumé.
type Contact struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
	Experience string `json:"experience,omitempty"`
}

// CandidateDocument is one résumé as handed to the screening pipeline.
// It lives only for the duration of a batch.
type CandidateDocument struct {
	SourceFileName      string
	SourceFileSizeBytes int64
	ExtractedText       string
	// ExtractionErr is set when the text could not be obtained; ExtractedText is then ignored.
	ExtractionErr error
	Contact       Contact
}

// CandidateRecord is the persisted screening result for one document against one job.
type CandidateRecord struct {
	ID               uuid.UUID `json:"id"`
	JobRequirementID uuid.UUID `json:"job_description_id"`
	UserID           uuid.UUID `json:"user_id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone,omitempty"`
	FileName         string    `json:"file_name"`
	FileSize         int64     `json:"file_size"`
	// MatchScore is nil when ExtractionFailed.
	MatchScore    *int     `json:"match_score"`
	MatchedSkills []string `json:"matched_skills"`
	MissingSkills []string `json:"missing_skills"`
	Experience    string   `json:"experience,omitempty"`
	Summary       string   `json:"summary,omitempty"`
	Status        Status   `json:"status"`

	ExtractionFailed bool   `json:"extraction_failed,omitempty"`
	FailureReason    string `json:"failure_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Score returns the match score and whether one was computed.
func (c *CandidateRecord) Score() (int, bool) {
	if c.MatchScore == nil {
		return 0, false
	}
	return *c.MatchScore, true
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}
