// Package models defines the canonical match model and the outcome values exchanged by the sync engine.
//
// The package contains three categories of types:
//
// 1. Snapshot: the display-ready view of one match, built by the normalizer
//   - [Snapshot] : header, innings and derived progress at one point in time
//   - [MatchHeader] : series, description, format, status, venue, toss and teams
//   - [Innings] : one batting side's totals with per-player figures ([Batsman], [Bowler])
//   - [MatchProgress] : interpolated over-by-over checkpoints, flagged as such
//   - [Overs] : cricket overs notation, where 14.3 means 14 overs and 3 balls
//
// 2. Outcome: the tagged result of a single fetch
//   - [Outcome] with [OutcomeKind] Fresh, StaleFallback or HardFailure
//
// 3. Persistent Entities
//   - [FetchAttempt] : one row of the fetch journal
//
// A Snapshot is immutable by convention once built. Consumers share the
// pointer; nothing writes through it after the normalizer returns.
package models
