// package repositories provides persistence for the fetch journal.
package repositories

import (
	"context"
	"database/sql"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
)

// NewDB wraps a database opened by shared.NewDatabase for sqlx queries.
func NewDB(db *sql.DB) *sqlx.DB {
	return sqlx.NewDb(db, "sqlite3")
}

// NextSequence atomically increments and returns the next sequence number for the given table.
//
// Sequence numbers give journal rows a stable order independent of UUIDs and
// clock resolution.
func NextSequence(ctx context.Context, db *sqlx.DB, table string) (int, error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	sequenceTable := table + "_sequence"

	if _, err := tx.ExecContext(ctx, "UPDATE "+sequenceTable+" SET value = value + 1 WHERE id = 1"); err != nil {
		return 0, errors.Wrap(err, "failed to increment sequence")
	}

	var sequence int
	if err := tx.GetContext(ctx, &sequence, "SELECT value FROM "+sequenceTable+" WHERE id = 1"); err != nil {
		return 0, errors.Wrap(err, "failed to get sequence value")
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "failed to commit sequence transaction")
	}

	return sequence, nil
}
