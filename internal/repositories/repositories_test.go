package repositories

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desertthunder/wicket/internal/models"
	"github.com/desertthunder/wicket/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(shared.MemoryDatabase)
	require.NoError(t, err, "failed to create test database")
	t.Cleanup(func() { db.Close() })

	require.NoError(t, shared.RunMigrations(db), "failed to run migrations")
	return db
}

func attempt(matchID, outcome string) *models.FetchAttempt {
	return &models.FetchAttempt{
		MatchID:    matchID,
		Trigger:    "auto",
		Outcome:    outcome,
		DurationMS: 42,
		CreatedAt:  time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC),
	}
}

func TestNextSequence(t *testing.T) {
	db := NewDB(setupTestDB(t))
	ctx := context.Background()

	first, err := NextSequence(ctx, db, "fetch_attempts")
	require.NoError(t, err)
	second, err := NextSequence(ctx, db, "fetch_attempts")
	require.NoError(t, err)

	assert.Equal(t, 1, first)
	assert.Equal(t, 2, second)

	_, err = NextSequence(ctx, db, "missing")
	assert.Error(t, err)
}

func TestFetchAttemptRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Create and Get", func(t *testing.T) {
		repo := NewFetchAttemptRepository(setupTestDB(t))
		a := attempt("41881", "stale")
		a.Failures = 2
		a.Reason = "API rate limit exceeded (429)"
		a.RateLimited = true

		require.NoError(t, repo.Create(ctx, a))
		assert.NotEmpty(t, a.ID)
		assert.Equal(t, 1, a.Sequence)

		got, err := repo.Get(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, "41881", got.MatchID)
		assert.Equal(t, "auto", got.Trigger)
		assert.Equal(t, "stale", got.Outcome)
		assert.Equal(t, 2, got.Failures)
		assert.True(t, got.RateLimited)
		assert.Equal(t, int64(42), got.DurationMS)
		assert.True(t, a.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("Create rejects invalid attempts", func(t *testing.T) {
		repo := NewFetchAttemptRepository(setupTestDB(t))
		err := repo.Create(ctx, &models.FetchAttempt{Outcome: "fresh"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})

	t.Run("Get unknown id", func(t *testing.T) {
		repo := NewFetchAttemptRepository(setupTestDB(t))
		_, err := repo.Get(ctx, "nope")
		assert.True(t, errors.Is(err, ErrAttemptNotFound))
	})

	t.Run("List newest first with filters", func(t *testing.T) {
		repo := NewFetchAttemptRepository(setupTestDB(t))
		for _, a := range []*models.FetchAttempt{attempt("1", "fresh"), attempt("2", "fresh"), attempt("1", "hard_failure")} {
			require.NoError(t, repo.Create(ctx, a))
		}

		all, err := repo.List(ctx, AttemptFilter{})
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, 3, all[0].Sequence)

		one, err := repo.List(ctx, AttemptFilter{MatchID: "1", Limit: 1})
		require.NoError(t, err)
		require.Len(t, one, 1)
		assert.Equal(t, "hard_failure", one[0].Outcome)

		n, err := repo.Count(ctx, "1")
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		n, err = repo.Count(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, 3, n)
	})

	t.Run("Summarize", func(t *testing.T) {
		repo := NewFetchAttemptRepository(setupTestDB(t))
		for _, kind := range []string{"fresh", "stale", "fresh"} {
			require.NoError(t, repo.Create(ctx, attempt("1", kind)))
		}

		counts, err := repo.Summarize(ctx, "1")
		require.NoError(t, err)
		assert.Equal(t, []OutcomeCount{{Outcome: "fresh", Count: 2}, {Outcome: "stale", Count: 1}}, counts)
	})

	t.Run("Prune keeps the newest rows", func(t *testing.T) {
		repo := NewFetchAttemptRepository(setupTestDB(t))
		for i := 0; i < 5; i++ {
			require.NoError(t, repo.Create(ctx, attempt("1", "fresh")))
		}

		removed, err := repo.Prune(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(3), removed)

		left, err := repo.List(ctx, AttemptFilter{})
		require.NoError(t, err)
		require.Len(t, left, 2)
		assert.Equal(t, 5, left[0].Sequence)
		assert.Equal(t, 4, left[1].Sequence)

		removed, err = repo.Prune(ctx, 10)
		require.NoError(t, err)
		assert.Zero(t, removed)
	})
}

func TestJournalAdapter(t *testing.T) {
	ctx := context.Background()
	repo := NewFetchAttemptRepository(setupTestDB(t))
	journal := NewJournalAdapter(repo, 3)
	journal.pruneEvery = 4

	for i := 0; i < 4; i++ {
		require.NoError(t, journal.Record(ctx, attempt("1", "fresh")))
	}

	n, err := repo.Count(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 3, n, "fourth write prunes back to keep")

	assert.Error(t, journal.Record(ctx, &models.FetchAttempt{}))
}
