package invitation

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/candidate-screener/internal/types"
)

func testJob() *types.JobRequirement {
	return &types.JobRequirement{ID: uuid.New(), Title: "Backend Engineer", Company: "Acme"}
}

func shortlisted(job *types.JobRequirement, name, email string) types.CandidateRecord {
	return types.CandidateRecord{
		ID:               uuid.New(),
		JobRequirementID: job.ID,
		Name:             name,
		Email:            email,
		Status:           types.StatusShortlisted,
	}
}

func TestRender_DefaultTemplate(t *testing.T) {
	job := testJob()
	c := shortlisted(job, "Ada Lovelace", "ada@example.com")

	d := Render(job, &c, Details{Date: "2026-11-02", Time: "10:00"})
	assert.Equal(t, "Interview Invitation - Backend Engineer at Acme", d.Subject)
	assert.Equal(t, "ada@example.com", d.To)
	assert.Equal(t, c.ID, d.CandidateID)
	assert.Contains(t, d.Body, "Dear Ada Lovelace,")
	assert.Contains(t, d.Body, "interview for the Backend Engineer position at Acme.")
	assert.Contains(t, d.Body, "- Date: 2026-11-02")
	assert.Contains(t, d.Body, "- Time: 10:00")
	assert.Contains(t, d.Body, "- Location: Video Call")
	assert.True(t, strings.HasSuffix(d.Body, "Hiring Team\nAcme"))
}

func TestRender_MissingDetailsKeepPlaceholders(t *testing.T) {
	job := testJob()
	c := shortlisted(job, "", "x@example.com")

	d := Render(job, &c, Details{Location: "HQ, Floor 3"})
	assert.Contains(t, d.Body, PlaceholderName)
	assert.Contains(t, d.Body, PlaceholderDate)
	assert.Contains(t, d.Body, PlaceholderTime)
	assert.Contains(t, d.Body, "- Location: HQ, Floor 3")
}

func TestRender_CustomMessage(t *testing.T) {
	job := testJob()
	c := shortlisted(job, "Grace", "g@example.com")

	d := Render(job, &c, Details{Subject: "Hi [Candidate Name]", Message: "See you on [Interview Date] at [Interview Location]", Date: "Monday"})
	assert.Equal(t, "Hi Grace", d.Subject)
	assert.Equal(t, "See you on Monday at Video Call", d.Body)
}

func TestDrafts(t *testing.T) {
	job := testJob()

	t.Run("no candidates", func(t *testing.T) {
		_, err := Drafts(job, nil, Details{})
		assert.ErrorIs(t, err, ErrNoCandidates)
	})

	t.Run("not shortlisted", func(t *testing.T) {
		c := shortlisted(job, "A", "a@example.com")
		c.Status = types.StatusPending
		_, err := Drafts(job, []types.CandidateRecord{c}, Details{})
		assert.ErrorIs(t, err, ErrNotShortlisted)
	})

	t.Run("other job", func(t *testing.T) {
		c := shortlisted(testJob(), "A", "a@example.com")
		_, err := Drafts(job, []types.CandidateRecord{c}, Details{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not belong")
	})

	t.Run("one per candidate", func(t *testing.T) {
		drafts, err := Drafts(job, []types.CandidateRecord{
			shortlisted(job, "A", "a@example.com"),
			shortlisted(job, "B", "b@example.com"),
		}, Details{})
		require.NoError(t, err)
		require.Len(t, drafts, 2)
		assert.Equal(t, "a@example.com", drafts[0].To)
		assert.Equal(t, "b@example.com", drafts[1].To)
	})
}
