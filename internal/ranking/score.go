// Package ranking scores candidates against a job's required skills and
// orders the results for presentation.
package ranking

import (
	"math"

	"github.com/jonathan/candidate-screener/internal/skills"
)

// MaxScore is the score of a candidate that covers every required skill.
const MaxScore = 100

// Result is the outcome of scoring one candidate.
type Result struct {
	Score   int
	Matched skills.Set
	Missing skills.Set
}

// Score compares the candidate's skills to the required ones.
//
// Matched is required ∩ candidate and Missing is required \ candidate, so the
// two are disjoint and together equal required. Skills the candidate has
// beyond the requirements are ignored. The score is the rounded percentage of
// required skills matched; a job with no requirements scores MaxScore with
// both partitions empty.
func Score(required, candidate skills.Set) Result {
	matched := required.Intersect(candidate)
	missing := required.Difference(candidate)

	if required.Len() == 0 {
		return Result{Score: MaxScore, Matched: matched, Missing: missing}
	}

	score := int(math.Round(float64(MaxScore) * float64(matched.Len()) / float64(required.Len())))
	return Result{Score: score, Matched: matched, Missing: missing}
}
