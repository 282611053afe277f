// Package server exposes the sync engine over local HTTP for scripts and scrapers.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first).
// [Logging] and [Recover] are the two the dashboard installs.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Endpoints
//
// [New] registers the engine routes on a [BasicRouter]:
//
//	GET  /api/snapshot   current snapshot (?format=json|csv|md|txt), 404 before the first success
//	GET  /api/status     engine [tasks.Stats]
//	POST /api/refresh    manual fetch, 202 when accepted and 409 while a fetch is in flight
//	GET  /metrics        prometheus exposition of the same counters
//	GET  /healthz        liveness
//
// Handlers never fetch on their own; they read what the engine last delivered.
//
// # Lifecycle
//
// [Serve] runs an [http.Server] until its context is cancelled, then shuts down gracefully.
package server
