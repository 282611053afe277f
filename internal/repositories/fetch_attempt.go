package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/desertthunder/wicket/internal/models"
	"github.com/desertthunder/wicket/internal/shared"
)

// ErrAttemptNotFound is returned by [FetchAttemptRepository.Get] for unknown ids.
var ErrAttemptNotFound = errors.New("fetch attempt not found")

// AttemptFilter narrows [FetchAttemptRepository.List].
type AttemptFilter struct {
	MatchID string // empty for all matches
	Limit   int    // 0 for no limit
}

// FetchAttemptRepository persists [models.FetchAttempt] rows.
type FetchAttemptRepository struct {
	db *sqlx.DB
}

// NewFetchAttemptRepository creates a new [FetchAttemptRepository] with the given database connection
func NewFetchAttemptRepository(db *sql.DB) *FetchAttemptRepository {
	return &FetchAttemptRepository{db: NewDB(db)}
}

// Create inserts attempt with a generated ID and sequence.
func (r *FetchAttemptRepository) Create(ctx context.Context, attempt *models.FetchAttempt) error {
	if err := attempt.Validate(); err != nil {
		return errors.Wrap(err, "validation failed")
	}

	sequence, err := NextSequence(ctx, r.db, "fetch_attempts")
	if err != nil {
		return errors.Wrap(err, "failed to generate sequence")
	}

	attempt.ID = shared.GenerateID()
	attempt.Sequence = sequence
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO fetch_attempts (id, sequence, match_id, trigger_kind, outcome, failures, reason, rate_limited, duration_ms, created_at)
		VALUES (:id, :sequence, :match_id, :trigger_kind, :outcome, :failures, :reason, :rate_limited, :duration_ms, :created_at)
	`
	if _, err := r.db.NamedExecContext(ctx, query, attempt); err != nil {
		return errors.Wrap(err, "failed to insert fetch attempt")
	}
	return nil
}

// Get retrieves an attempt by ID.
func (r *FetchAttemptRepository) Get(ctx context.Context, id string) (*models.FetchAttempt, error) {
	var attempt models.FetchAttempt
	err := r.db.GetContext(ctx, &attempt, `SELECT * FROM fetch_attempts WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(ErrAttemptNotFound, "%s", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to query fetch attempt")
	}
	return &attempt, nil
}

// List returns attempts newest first.
func (r *FetchAttemptRepository) List(ctx context.Context, filter AttemptFilter) ([]models.FetchAttempt, error) {
	query := `SELECT * FROM fetch_attempts`
	var args []any
	if filter.MatchID != "" {
		query += ` WHERE match_id = ?`
		args = append(args, filter.MatchID)
	}
	query += ` ORDER BY sequence DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	attempts := []models.FetchAttempt{}
	if err := r.db.SelectContext(ctx, &attempts, query, args...); err != nil {
		return nil, errors.Wrap(err, "failed to list fetch attempts")
	}
	return attempts, nil
}

// Count returns the number of attempts, optionally for one match.
func (r *FetchAttemptRepository) Count(ctx context.Context, matchID string) (int, error) {
	var n int
	var err error
	if matchID == "" {
		err = r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM fetch_attempts`)
	} else {
		err = r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM fetch_attempts WHERE match_id = ?`, matchID)
	}
	if err != nil {
		return 0, errors.Wrap(err, "failed to count fetch attempts")
	}
	return n, nil
}

// OutcomeCount is one row of [FetchAttemptRepository.Summarize].
type OutcomeCount struct {
	Outcome string `db:"outcome"`
	Count   int    `db:"n"`
}

// Summarize counts attempts per outcome kind.
func (r *FetchAttemptRepository) Summarize(ctx context.Context, matchID string) ([]OutcomeCount, error) {
	query := `SELECT outcome, COUNT(*) AS n FROM fetch_attempts`
	var args []any
	if matchID != "" {
		query += ` WHERE match_id = ?`
		args = append(args, matchID)
	}
	query += ` GROUP BY outcome ORDER BY outcome`

	counts := []OutcomeCount{}
	if err := r.db.SelectContext(ctx, &counts, query, args...); err != nil {
		return nil, errors.Wrap(err, "failed to summarize fetch attempts")
	}
	return counts, nil
}

// Prune deletes all but the newest keep attempts and returns how many were removed.
func (r *FetchAttemptRepository) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM fetch_attempts
		WHERE sequence <= COALESCE((SELECT sequence FROM fetch_attempts ORDER BY sequence DESC LIMIT 1 OFFSET ?), -1)
	`, keep)
	if err != nil {
		return 0, errors.Wrap(err, "failed to prune fetch attempts")
	}
	return res.RowsAffected()
}
