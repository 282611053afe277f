package models

import (
	"time"

	"github.com/cockroachdb/errors"

	"github.com/desertthunder/wicket/internal/shared"
)

// OutcomeKind tags the variant carried by an [Outcome].
type OutcomeKind int

const (
	// OutcomeFresh carries a snapshot that was just fetched.
	OutcomeFresh OutcomeKind = iota
	// OutcomeStale carries the cached snapshot after a failed fetch.
	OutcomeStale
	// OutcomeHardFailure carries only the failure.
	OutcomeHardFailure
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeFresh:
		return "fresh"
	case OutcomeStale:
		return "stale"
	case OutcomeHardFailure:
		return "hard_failure"
	default:
		return "unknown"
	}
}

// Outcome is the result of one fetch as seen by the consumer.
//
// Fresh and Stale always carry a Snapshot; Stale and HardFailure always carry Err.
type Outcome struct {
	Kind     OutcomeKind
	MatchID  string
	Snapshot *Snapshot
	Err      error
	// Failures is the consecutive failure count after this fetch.
	Failures int
	Manual   bool
	At       time.Time
}

// Fresh wraps a freshly fetched snapshot.
func Fresh(matchID string, s *Snapshot) Outcome {
	return Outcome{Kind: OutcomeFresh, MatchID: matchID, Snapshot: s}
}

// StaleFallback wraps the cached snapshot served after err.
func StaleFallback(matchID string, cached *Snapshot, err error, failures int) Outcome {
	return Outcome{Kind: OutcomeStale, MatchID: matchID, Snapshot: cached, Err: err, Failures: failures}
}

// HardFailure reports err with nothing to show.
func HardFailure(matchID string, err error, failures int) Outcome {
	return Outcome{Kind: OutcomeHardFailure, MatchID: matchID, Err: err, Failures: failures}
}

// RateLimited reports whether the failure was the provider's 429.
func (o Outcome) RateLimited() bool {
	return o.Err != nil && errors.Is(o.Err, shared.ErrRateLimited)
}

// Reason is the failure message, empty for fresh outcomes.
func (o Outcome) Reason() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}
