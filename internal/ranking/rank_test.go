package ranking

import (
	"testing"

	"github.com/jonathan/candidate-screener/internal/skills"
	"github.com/jonathan/candidate-screener/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name        string
		required    skills.Set
		candidate   skills.Set
		wantScore   int
		wantMatched []string
		wantMissing []string
	}{
		{
			name:        "half matched",
			required:    skills.NewSet("Python", "SQL"),
			candidate:   skills.NewSet("Python"),
			wantScore:   50,
			wantMatched: []string{"Python"},
			wantMissing: []string{"SQL"},
		},
		{
			name:        "rounds two thirds up",
			required:    skills.NewSet("React", "Node.js", "SQL"),
			candidate:   skills.NewSet("React", "SQL"),
			wantScore:   67,
			wantMatched: []string{"React", "SQL"},
			wantMissing: []string{"Node.js"},
		},
		{
			name:        "rounds one third down",
			required:    skills.NewSet("React", "Node.js", "SQL"),
			candidate:   skills.NewSet("SQL"),
			wantScore:   33,
			wantMatched: []string{"SQL"},
			wantMissing: []string{"Node.js", "React"},
		},
		{
			name:        "extra candidate skills ignored",
			required:    skills.NewSet("Go"),
			candidate:   skills.NewSet("Go", "Rust", "AWS"),
			wantScore:   100,
			wantMatched: []string{"Go"},
			wantMissing: []string{},
		},
		{
			name:        "no overlap",
			required:    skills.NewSet("Go", "SQL"),
			candidate:   skills.NewSet(),
			wantScore:   0,
			wantMatched: []string{},
			wantMissing: []string{"Go", "SQL"},
		},
		{
			name:        "empty requirements is a full match",
			required:    skills.NewSet(),
			candidate:   skills.NewSet("Python"),
			wantScore:   100,
			wantMatched: []string{},
			wantMissing: []string{},
		},
		{
			name:        "nil sets",
			required:    nil,
			candidate:   nil,
			wantScore:   100,
			wantMatched: []string{},
			wantMissing: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.required, tt.candidate)
			assert.Equal(t, tt.wantScore, got.Score)
			assert.Equal(t, tt.wantMatched, got.Matched.Sorted())
			assert.Equal(t, tt.wantMissing, got.Missing.Sorted())
		})
	}
}

func TestScore_PartitionInvariant(t *testing.T) {
	pool := []string{"Go", "SQL", "AWS", "Docker", "React", "Python"}

	// every pair of subsets of pool
	for req := 0; req < 1<<len(pool); req++ {
		for cand := 0; cand < 1<<len(pool); cand += 7 {
			required, candidate := subset(pool, req), subset(pool, cand)
			got := Score(required, candidate)

			assert.Empty(t, got.Matched.Intersect(got.Missing).Sorted())

			union := skills.NewSet(got.Matched.Sorted()...)
			for name := range got.Missing {
				union.Add(name)
			}
			require.True(t, union.Equal(required), "required=%v candidate=%v", required.Sorted(), candidate.Sorted())
			assert.GreaterOrEqual(t, got.Score, 0)
			assert.LessOrEqual(t, got.Score, MaxScore)
		}
	}
}

func subset(pool []string, mask int) skills.Set {
	s := skills.NewSet()
	for i, name := range pool {
		if mask&(1<<i) != 0 {
			s.Add(name)
		}
	}
	return s
}

func record(name string, score *int) types.CandidateRecord {
	return types.CandidateRecord{Name: name, MatchScore: score, Status: types.StatusPending, ExtractionFailed: score == nil}
}

func names(records []types.CandidateRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Name
	}
	return out
}

func TestRank(t *testing.T) {
	input := []types.CandidateRecord{
		record("carol", types.IntPtr(50)),
		record("Broken", nil),
		record("bob", types.IntPtr(90)),
		record("Alice", types.IntPtr(50)),
		record("dave", types.IntPtr(90)),
		record("Aaron", nil),
	}

	got := Rank(input)
	assert.Equal(t, []string{"bob", "dave", "Alice", "carol", "Aaron", "Broken"}, names(got))
	assert.Equal(t, "carol", input[0].Name, "input is not reordered")
}

func TestRank_CaseInsensitiveTieBreak(t *testing.T) {
	got := Rank([]types.CandidateRecord{
		record("zoe", types.IntPtr(70)),
		record("Yusuf", types.IntPtr(70)),
		record("adam", types.IntPtr(70)),
		record("Adam", types.IntPtr(70)),
	})
	assert.Equal(t, []string{"Adam", "adam", "Yusuf", "zoe"}, names(got))
}

func TestRank_Empty(t *testing.T) {
	assert.Empty(t, Rank(nil))
}

func TestSortByName(t *testing.T) {
	got := SortByName([]types.CandidateRecord{
		record("bob", types.IntPtr(10)),
		record("Alice", types.IntPtr(20)),
		record("alice", types.IntPtr(90)),
	})
	assert.Equal(t, []string{"alice", "Alice", "bob"}, names(got))
}

func TestBandFor(t *testing.T) {
	assert.Equal(t, BandExcellent, BandFor(100))
	assert.Equal(t, BandExcellent, BandFor(80))
	assert.Equal(t, BandGood, BandFor(79))
	assert.Equal(t, BandGood, BandFor(60))
	assert.Equal(t, BandPoor, BandFor(59))
	assert.Equal(t, BandPoor, BandFor(0))
}

func TestSummarize(t *testing.T) {
	shortlisted := func(name string, score int) types.CandidateRecord {
		r := record(name, types.IntPtr(score))
		r.Status = types.StatusShortlisted
		return r
	}
	invited := record("inv", types.IntPtr(85))
	invited.Status = types.StatusInvited
	rejected := record("rej", types.IntPtr(10))
	rejected.Status = types.StatusRejected

	s := Summarize([]types.CandidateRecord{
		shortlisted("a", 90),
		shortlisted("b", 65),
		invited,
		rejected,
		record("p", types.IntPtr(40)),
		record("failed", nil),
	})

	assert.Equal(t, 6, s.Total)
	assert.Equal(t, 2, s.Excellent)
	assert.Equal(t, 1, s.Good)
	assert.Equal(t, 2, s.Poor)
	assert.Equal(t, 1, s.Unscored)
	assert.Equal(t, 2, s.Shortlisted)
	assert.Equal(t, 1, s.Invited)
	assert.Equal(t, 1, s.Rejected)
	assert.Equal(t, 2, s.Pending)
	assert.Equal(t, 78, s.AverageShortlistedScore)
}

func TestSummarize_NoShortlist(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, Summary{}, s)
}
