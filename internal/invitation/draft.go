// Package invitation renders interview invitation drafts for shortlisted
// candidates. Sending them is left to the caller.
package invitation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/candidate-screener/internal/types"
)

// DefaultLocation is used when no interview location is given.
const DefaultLocation = "Video Call"

// Template placeholders.
const (
	PlaceholderName     = "[Candidate Name]"
	PlaceholderDate     = "[Interview Date]"
	PlaceholderTime     = "[Interview Time]"
	PlaceholderLocation = "[Interview Location]"
)

var (
	// ErrNoCandidates is returned when a draft is requested for nobody.
	ErrNoCandidates = errors.New("no candidates selected")
	// ErrNotShortlisted is returned for a candidate that has not been shortlisted.
	ErrNotShortlisted = errors.New("candidate is not shortlisted")
)

// Details are the interview specifics filled into the template.
// Subject and Message replace the default template when set; they may use
// the same placeholders.
type Details struct {
	Date     string `json:"date,omitempty"`
	Time     string `json:"time,omitempty"`
	Location string `json:"location,omitempty"`
	Subject  string `json:"subject,omitempty"`
	Message  string `json:"message,omitempty"`
}

// Draft is one rendered invitation.
type Draft struct {
	CandidateID uuid.UUID `json:"candidate_id"`
	Name        string    `json:"name"`
	To          string    `json:"to"`
	Subject     string    `json:"subject"`
	Body        string    `json:"body"`
}

// Subject returns the default subject line for job.
func Subject(job *types.JobRequirement) string {
	return fmt.Sprintf("Interview Invitation - %s at %s", job.Title, job.Company)
}

// Message returns the default message template for job, placeholders intact.
func Message(job *types.JobRequirement) string {
	return fmt.Sprintf(`Dear %s,

We are pleased to invite you for an interview for the %s position at %s.

Based on your impressive background and qualifications, we believe you would be an excellent fit for our team.

Interview Details:
- Position: %s
- Date: %s
- Time: %s
- Location: %s

Please confirm your availability by replying to this email.

We look forward to meeting you!

Best regards,
Hiring Team
%s`, PlaceholderName, job.Title, job.Company, job.Title, PlaceholderDate, PlaceholderTime, PlaceholderLocation, job.Company)
}

// Render fills the template for one candidate. Empty date or time leave their
// placeholders in place.
func Render(job *types.JobRequirement, candidate *types.CandidateRecord, d Details) Draft {
	subject := d.Subject
	if strings.TrimSpace(subject) == "" {
		subject = Subject(job)
	}
	message := d.Message
	if strings.TrimSpace(message) == "" {
		message = Message(job)
	}

	location := strings.TrimSpace(d.Location)
	if location == "" {
		location = DefaultLocation
	}
	pairs := []string{PlaceholderLocation, location}
	if name := strings.TrimSpace(candidate.Name); name != "" {
		pairs = append(pairs, PlaceholderName, name)
	}
	if date := strings.TrimSpace(d.Date); date != "" {
		pairs = append(pairs, PlaceholderDate, date)
	}
	if tm := strings.TrimSpace(d.Time); tm != "" {
		pairs = append(pairs, PlaceholderTime, tm)
	}
	r := strings.NewReplacer(pairs...)

	return Draft{
		CandidateID: candidate.ID,
		Name:        candidate.Name,
		To:          candidate.Email,
		Subject:     r.Replace(subject),
		Body:        r.Replace(message),
	}
}

// Drafts renders one invitation per candidate. Every candidate must belong to
// job and be shortlisted.
func Drafts(job *types.JobRequirement, candidates []types.CandidateRecord, d Details) ([]Draft, error) {
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	drafts := make([]Draft, 0, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		if c.JobRequirementID != job.ID {
			return nil, fmt.Errorf("candidate %s does not belong to job %s", c.ID, job.ID)
		}
		if c.Status != types.StatusShortlisted {
			return nil, fmt.Errorf("%w: %s (%s)", ErrNotShortlisted, c.ID, c.Status)
		}
		drafts = append(drafts, Render(job, c, d))
	}
	return drafts, nil
}
