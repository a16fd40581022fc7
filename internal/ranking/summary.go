package ranking

import (
	"math"

	"github.com/jonathan/candidate-screener/internal/types"
)

// Band is a coarse label for a match score.
type Band string

const (
	BandExcellent Band = "excellent"
	BandGood      Band = "good"
	BandPoor      Band = "poor"
)

// Band thresholds (inclusive lower bounds).
const (
	excellentThreshold = 80
	goodThreshold      = 60
)

// BandFor classifies a score.
func BandFor(score int) Band {
	switch {
	case score >= excellentThreshold:
		return BandExcellent
	case score >= goodThreshold:
		return BandGood
	default:
		return BandPoor
	}
}

// Summary aggregates the candidates of one job.
type Summary struct {
	Total     int `json:"total"`
	Excellent int `json:"excellent"`
	Good      int `json:"good"`
	Poor      int `json:"poor"`
	// Unscored counts records whose text could not be extracted.
	Unscored int `json:"unscored"`

	Pending     int `json:"pending"`
	Shortlisted int `json:"shortlisted"`
	Rejected    int `json:"rejected"`
	Invited     int `json:"invited"`

	// AverageShortlistedScore is the rounded mean score of shortlisted
	// candidates, 0 when none are shortlisted.
	AverageShortlistedScore int `json:"average_shortlisted_score"`
}

// Summarize counts records per band and per status.
func Summarize(records []types.CandidateRecord) Summary {
	s := Summary{Total: len(records)}
	shortlistedTotal, shortlistedScored := 0, 0

	for i := range records {
		rec := &records[i]
		score, ok := rec.Score()
		if !ok {
			s.Unscored++
		} else {
			switch BandFor(score) {
			case BandExcellent:
				s.Excellent++
			case BandGood:
				s.Good++
			default:
				s.Poor++
			}
		}

		switch rec.Status {
		case types.StatusShortlisted:
			s.Shortlisted++
			if ok {
				shortlistedTotal += score
				shortlistedScored++
			}
		case types.StatusRejected:
			s.Rejected++
		case types.StatusInvited:
			s.Invited++
		default:
			s.Pending++
		}
	}

	if shortlistedScored > 0 {
		s.AverageShortlistedScore = int(math.Round(float64(shortlistedTotal) / float64(shortlistedScored)))
	}
	return s
}
