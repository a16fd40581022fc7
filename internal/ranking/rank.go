package ranking

import (
	"sort"
	"strings"

	"github.com/jonathan/candidate-screener/internal/types"
)

// Rank returns a copy of records ordered for presentation:
//
//  1. scored records before records whose extraction failed
//  2. match score, highest first
//  3. name ascending, compared case-insensitively
//  4. name ascending, byte-wise (so "ada" and "Ada" still order the same way every run)
//  5. file name ascending
//
// The input slice is not modified.
func Rank(records []types.CandidateRecord) []types.CandidateRecord {
	out := make([]types.CandidateRecord, len(records))
	copy(out, records)

	sort.SliceStable(out, func(i, j int) bool {
		a, b := &out[i], &out[j]
		aScore, aOK := a.Score()
		bScore, bOK := b.Score()
		if aOK != bOK {
			return aOK
		}
		if aScore != bScore {
			return aScore > bScore
		}
		return lessByName(a, b)
	})
	return out
}

// SortByName returns a copy of records ordered by name (case-insensitive),
// then by score descending.
func SortByName(records []types.CandidateRecord) []types.CandidateRecord {
	out := make([]types.CandidateRecord, len(records))
	copy(out, records)

	sort.SliceStable(out, func(i, j int) bool {
		a, b := &out[i], &out[j]
		an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name)
		if an != bn {
			return an < bn
		}
		aScore, aOK := a.Score()
		bScore, bOK := b.Score()
		if aOK != bOK {
			return aOK
		}
		if aScore != bScore {
			return aScore > bScore
		}
		return lessByName(a, b)
	})
	return out
}

func lessByName(a, b *types.CandidateRecord) bool {
	an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name)
	if an != bn {
		return an < bn
	}
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.FileName < b.FileName
}
