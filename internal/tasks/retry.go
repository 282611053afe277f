package tasks

import (
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/cockroachdb/errors"

	"github.com/desertthunder/wicket/internal/models"
	"github.com/desertthunder/wicket/internal/shared"
)

const (
	DefaultInterval         = 60 * time.Second
	DefaultBackoffCap       = 300 * time.Second
	DefaultMaxRetryAttempts = 3
)

// RetryPolicy classifies fetch results against the cache and computes the
// delay before the next automatic fetch.
type RetryPolicy struct {
	Interval    time.Duration // delay after a success, and the backoff base
	Cap         time.Duration // upper bound on the delay
	MaxAttempts int           // failures tolerated before the cache stops being served
}

// DefaultRetryPolicy returns 60s interval, 300s cap and 3 attempts.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Interval: DefaultInterval, Cap: DefaultBackoffCap, MaxAttempts: DefaultMaxRetryAttempts}
}

// Decide turns one fetch result into an outcome and updates cache accordingly.
//
//   - success: cache the snapshot, reset failures, Fresh
//   - failure with a cached snapshot and failures <= MaxAttempts: StaleFallback
//   - otherwise: HardFailure
func (p RetryPolicy) Decide(matchID string, snap *models.Snapshot, err error, cache *CacheState) models.Outcome {
	cache.ensure(matchID)

	if err == nil && snap == nil {
		err = errors.Mark(errors.New("empty response"), shared.ErrDecode)
	}
	if err == nil {
		cache.RecordSuccess(snap)
		return models.Fresh(matchID, snap)
	}

	failures := cache.RecordFailure()
	if !cache.Empty() && failures <= p.MaxAttempts {
		return models.StaleFallback(matchID, cache.Snapshot(), err, failures)
	}
	return models.HardFailure(matchID, err, failures)
}

// Delay returns min(Interval * 2^failures, Cap).
func (p RetryPolicy) Delay(failures int) time.Duration {
	b := &backoff.ExponentialBackOff{
		InitialInterval:     p.Interval,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         p.Cap,
	}
	b.Reset()

	d := b.NextBackOff()
	for i := 0; i < failures && d < p.Cap; i++ {
		d = b.NextBackOff()
	}
	return min(d, p.Cap)
}
