package repositories

import (
	"context"
	"sync/atomic"

	"github.com/desertthunder/wicket/internal/models"
)

// DefaultJournalSize is how many attempts the journal keeps.
const DefaultJournalSize = 1000

// JournalAdapter implements tasks.Journal using [FetchAttemptRepository].
//
// Every pruneEvery writes it trims the table back to keep rows.
type JournalAdapter struct {
	repo       *FetchAttemptRepository
	keep       int
	pruneEvery int64
	writes     atomic.Int64
}

// NewJournalAdapter creates a journal keeping the newest keep attempts (0 keeps everything).
func NewJournalAdapter(repo *FetchAttemptRepository, keep int) *JournalAdapter {
	return &JournalAdapter{repo: repo, keep: keep, pruneEvery: 100}
}

// Record stores one attempt.
func (a *JournalAdapter) Record(ctx context.Context, attempt *models.FetchAttempt) error {
	if err := a.repo.Create(ctx, attempt); err != nil {
		return err
	}

	if a.keep > 0 && a.writes.Add(1)%a.pruneEvery == 0 {
		if _, err := a.repo.Prune(ctx, a.keep); err != nil {
			return err
		}
	}
	return nil
}
