package models

import (
	"time"

	"github.com/cockroachdb/errors"

	"github.com/desertthunder/wicket/internal/shared"
)

// FetchAttempt is a journal row describing one fetch. It never holds snapshot data.
type FetchAttempt struct {
	ID          string    `db:"id" json:"id"`
	Sequence    int       `db:"sequence" json:"sequence"`
	MatchID     string    `db:"match_id" json:"matchId"`
	Trigger     string    `db:"trigger_kind" json:"trigger"`
	Outcome     string    `db:"outcome" json:"outcome"`
	Failures    int       `db:"failures" json:"failures"`
	Reason      string    `db:"reason" json:"reason,omitempty"`
	RateLimited bool      `db:"rate_limited" json:"rateLimited"`
	DurationMS  int64     `db:"duration_ms" json:"durationMs"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// NewFetchAttempt builds a journal row from an outcome.
func NewFetchAttempt(o Outcome, trigger string, took time.Duration) *FetchAttempt {
	at := o.At
	if at.IsZero() {
		at = time.Now()
	}
	return &FetchAttempt{
		MatchID:     o.MatchID,
		Trigger:     trigger,
		Outcome:     o.Kind.String(),
		Failures:    o.Failures,
		Reason:      o.Reason(),
		RateLimited: o.RateLimited(),
		DurationMS:  took.Milliseconds(),
		CreatedAt:   at.UTC(),
	}
}

// Validate checks the fields the journal requires.
func (a *FetchAttempt) Validate() error {
	switch {
	case a.MatchID == "":
		return errors.Wrap(shared.ErrInvalidInput, "fetch attempt requires a match id")
	case a.Trigger == "":
		return errors.Wrap(shared.ErrInvalidInput, "fetch attempt requires a trigger")
	case a.Outcome == "":
		return errors.Wrap(shared.ErrInvalidInput, "fetch attempt requires an outcome")
	}
	return nil
}
