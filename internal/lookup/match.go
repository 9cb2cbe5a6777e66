package lookup

import (
	"github.com/jb-miles/castscout/internal/domain"
	"github.com/jb-miles/castscout/internal/util"
)

// Decision is the outcome of matching a query against a candidate list.
// For multiple_matches, Chosen is the provisional first candidate and
// Candidates retains the full list for operator review.
type Decision struct {
	Status     domain.Status
	Chosen     *domain.Candidate
	Candidates []domain.Candidate
}

// SelectMatch decides a match status for name over cands. Pure, no I/O.
//
// The ordering is a documented contract:
//  1. exact normalized-label match wins (first such candidate on ties)
//  2. a single candidate is accepted as-is, the search backend already
//     filtered
//  3. several candidates with no exact match is ambiguous
//  4. no candidates is not found
func SelectMatch(name string, cands []domain.Candidate) Decision {
	normalized := util.NormalizeName(name)

	for i := range cands {
		if util.NormalizeName(cands[i].Label) == normalized {
			return Decision{Status: domain.StatusFound, Chosen: &cands[i]}
		}
	}

	switch len(cands) {
	case 0:
		return Decision{Status: domain.StatusNotFound}
	case 1:
		return Decision{Status: domain.StatusFound, Chosen: &cands[0]}
	default:
		return Decision{
			Status:     domain.StatusMultipleMatches,
			Chosen:     &cands[0],
			Candidates: cands,
		}
	}
}
