package tasks

import "github.com/desertthunder/wicket/internal/models"

// CacheState is the last good snapshot for one match plus the consecutive
// failure count since it was stored.
//
// It is only touched by the fetch worker, so it carries no lock.
type CacheState struct {
	matchID  string
	snapshot *models.Snapshot
	failures int
}

// Snapshot returns the cached snapshot, nil when empty.
func (c *CacheState) Snapshot() *models.Snapshot { return c.snapshot }

// Failures returns the consecutive failure count.
func (c *CacheState) Failures() int { return c.failures }

// Empty reports whether no snapshot has been cached.
func (c *CacheState) Empty() bool { return c.snapshot == nil }

// RecordSuccess stores s and resets the failure count.
func (c *CacheState) RecordSuccess(s *models.Snapshot) {
	c.snapshot = s
	c.failures = 0
}

// RecordFailure increments and returns the failure count.
func (c *CacheState) RecordFailure() int {
	c.failures++
	return c.failures
}

// ensure drops state that belongs to a different match.
func (c *CacheState) ensure(matchID string) {
	if c.matchID == matchID {
		return
	}
	c.matchID = matchID
	c.snapshot = nil
	c.failures = 0
}
