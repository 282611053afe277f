// Package tasks keeps one cricket match in sync with the provider and delivers the results to a single consumer.
//
// # Components
//
//   - [Scheduler] : when fetches run. One timer for the next automatic fetch,
//     at most one fetch in flight, duplicate triggers dropped rather than queued.
//   - [RetryPolicy] : what a fetch result means. Success refreshes the cache;
//     a failure serves the cached snapshot for up to MaxAttempts consecutive
//     failures and is a hard failure after that. The next automatic fetch waits
//     min(interval * 2^failures, cap).
//   - [CacheState] : the last good snapshot and the failure count, owned by the fetch worker.
//   - [Dispatcher] : a bounded queue from the worker to the consumer. Delivery
//     never blocks; when full the oldest outcome is dropped.
//   - [Engine] : the consumer-facing API tying these together.
//
// # Threads of Control
//
// Fetches run on a one-worker ants pool. The consumer (the dashboard's event
// loop, or a CLI goroutine) receives [models.Outcome] values with
// [Engine.Next] or [Engine.Drain] and is the only place visible state changes.
// The in-flight flag is cleared only after the outcome has been handed to the
// dispatcher, so a trigger that observes Idle never races a pending delivery.
//
// # Match Changes
//
// [Engine.TriggerManualFetch] with a new match id switches matches at once.
// An outcome that completes for the previous id is discarded, and if the
// switch was refused because a fetch was in flight, a follow-up fetch for the
// new id runs as soon as the worker is free.
//
// # Journal
//
// The optional [Journal] records one [models.FetchAttempt] per fetch
// (repositories.FetchAttemptRepository). Journal errors are logged and ignored.
package tasks
