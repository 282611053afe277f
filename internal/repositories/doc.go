// Package repositories implements SQLite persistence for the fetch journal.
//
// The journal holds one [models.FetchAttempt] per fetch the engine makes:
// trigger, outcome kind, failure count, reason, whether the provider rate
// limited us, and how long the call took. It never stores snapshots.
//
// Key Implementations:
//   - [FetchAttemptRepository] : inserts, listing newest first, per-outcome summaries and pruning
//   - [JournalAdapter] : the engine's Journal, pruning the table as it grows
//
// Queries go through sqlx. Sequence numbers give rows a stable order; the
// [NextSequence] function atomically increments per-table counters in
// dedicated sequence tables.
package repositories
