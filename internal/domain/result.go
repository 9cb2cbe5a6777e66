package domain

import "time"

// Status is the outcome of one performer lookup.
type Status string

const (
	StatusFound           Status = "found"
	StatusNotFound        Status = "not_found"
	StatusMultipleMatches Status = "multiple_matches"
	StatusError           Status = "error"
)

// LookupResult is created exactly once per processed performer and appended
// to the ledger immediately. It is never mutated afterward.
type LookupResult struct {
	Performer   string
	Status      Status
	MatchedURL  string
	MatchedName string
	SearchedAt  time.Time

	// Candidates carries the full candidate set for multiple_matches
	// outcomes. Logging context only, never persisted.
	Candidates []Candidate
}

// Candidate is one (label, link) pair extracted from a results page.
type Candidate struct {
	Label string
	Href  string
}
