package tasks

import (
	"context"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"

	"github.com/desertthunder/wicket/internal/models"
	"github.com/desertthunder/wicket/internal/services"
	"github.com/desertthunder/wicket/internal/shared"
)

// Journal records fetch attempts. Errors are logged and otherwise ignored.
type Journal interface {
	Record(ctx context.Context, attempt *models.FetchAttempt) error
}

// EngineOpts holds the dependencies of an [Engine]. Zero values take the defaults.
type EngineOpts struct {
	Fetcher     services.MatchFetcher
	Policy      RetryPolicy
	MatchID     string
	AutoRefresh bool
	QueueSize   int
	Journal     Journal     // optional
	Logger      *log.Logger // defaults to a discarding logger
	Now         func() time.Time
}

// Stats is a point-in-time view of the engine for status endpoints and metrics.
type Stats struct {
	MatchID             string    `json:"matchId"`
	State               string    `json:"state"`
	AutoRefresh         bool      `json:"autoRefresh"`
	NextRun             time.Time `json:"nextRun,omitzero"`
	LastSuccess         time.Time `json:"lastSuccess,omitzero"`
	ConsecutiveFailures int       `json:"consecutiveFailures"`
	MaxAttempts         int       `json:"maxAttempts"`
	Attempts            int64     `json:"attempts"`
	Successes           int64     `json:"successes"`
	StaleServed         int64     `json:"staleServed"`
	HardFailures        int64     `json:"hardFailures"`
	RateLimited         int64     `json:"rateLimited"`
	Superseded          int64     `json:"superseded"`
	Dropped             int64     `json:"dropped"`
	Discarded           int64     `json:"discarded"`
}

// Engine keeps one match in sync. It is the API the consumer talks to.
//
// Fetches run on the scheduler's worker; outcomes reach the consumer through
// the dispatcher. The cache is owned by the worker.
type Engine struct {
	fetcher    services.MatchFetcher
	policy     RetryPolicy
	cache      CacheState
	dispatcher *Dispatcher
	scheduler  *Scheduler
	journal    Journal
	logger     *log.Logger
	now        func() time.Time

	mu          sync.RWMutex
	ctx         context.Context
	matchID     string
	lastSuccess time.Time

	started  atomic.Bool
	current  atomic.Pointer[models.Snapshot]
	failures atomic.Int64

	attempts    atomic.Int64
	successes   atomic.Int64
	stale       atomic.Int64
	hard        atomic.Int64
	rateLimited atomic.Int64
	superseded  atomic.Int64
}

// NewEngine wires a scheduler, dispatcher and retry policy around opts.Fetcher.
func NewEngine(opts EngineOpts) (*Engine, error) {
	if opts.Fetcher == nil {
		return nil, errors.Wrap(shared.ErrMissingArgument, "engine requires a fetcher")
	}

	policy, defaults := opts.Policy, DefaultRetryPolicy()
	if policy == (RetryPolicy{}) {
		policy = defaults
	}
	if policy.Interval <= 0 {
		policy.Interval = defaults.Interval
	}
	if policy.Cap < policy.Interval {
		policy.Cap = max(defaults.Cap, policy.Interval)
	}

	e := &Engine{
		fetcher:    opts.Fetcher,
		policy:     policy,
		dispatcher: NewDispatcher(opts.QueueSize),
		journal:    opts.Journal,
		logger:     opts.Logger,
		now:        opts.Now,
		ctx:        context.Background(),
		matchID:    strings.TrimSpace(opts.MatchID),
	}
	if e.logger == nil {
		e.logger = shared.NewLogger(io.Discard)
	}
	if e.now == nil {
		e.now = time.Now
	}

	scheduler, err := NewScheduler(e.fetchOnce, policy, opts.AutoRefresh, e.logger)
	if err != nil {
		return nil, err
	}
	e.scheduler = scheduler
	return e, nil
}

// Start arms automatic refresh and kicks off the first fetch when a match is set.
// Fetches use ctx; Start is a no-op after the first call.
func (e *Engine) Start(ctx context.Context) {
	if !e.started.CompareAndSwap(false, true) {
		return
	}

	e.mu.Lock()
	e.ctx = ctx
	matchID := e.matchID
	e.mu.Unlock()

	e.scheduler.Start()
	if matchID != "" {
		e.scheduler.Trigger(TriggerAuto)
	}
}

// TriggerManualFetch fetches matchID now, bypassing any backoff. An empty
// matchID refreshes the current match; a different one switches to it first.
//
// It reports false when a fetch is already in flight (the trigger is dropped)
// or there is no match to fetch.
func (e *Engine) TriggerManualFetch(matchID string) bool {
	matchID = strings.TrimSpace(matchID)
	trigger := TriggerManual

	e.mu.Lock()
	switch {
	case matchID == "":
		matchID = e.matchID
	case matchID != e.matchID:
		e.logger.Info("switching match", "from", e.matchID, "to", matchID)
		e.matchID = matchID
		e.current.Store(nil)
		e.failures.Store(0)
		trigger = TriggerMatchChange
	}
	e.mu.Unlock()

	if matchID == "" {
		return false
	}
	return e.scheduler.Trigger(trigger)
}

// Refresh is TriggerManualFetch for the current match.
func (e *Engine) Refresh() bool { return e.TriggerManualFetch("") }

// OnOutcome registers fn to run on the consumer goroutine for every delivered outcome.
func (e *Engine) OnOutcome(fn func(models.Outcome)) { e.dispatcher.OnOutcome(fn) }

// Next blocks for the next outcome. It returns false once the engine is closed or ctx is done.
func (e *Engine) Next(ctx context.Context) (models.Outcome, bool) { return e.dispatcher.Next(ctx) }

// Drain consumes outcomes, running OnOutcome handlers, until ctx is done or the engine closes.
func (e *Engine) Drain(ctx context.Context) { e.dispatcher.Drain(ctx) }

// SetAutoRefresh enables or disables the refresh timer.
func (e *Engine) SetAutoRefresh(enabled bool) { e.scheduler.SetAuto(enabled) }

// AutoRefresh reports whether the refresh timer is enabled.
func (e *Engine) AutoRefresh() bool { return e.scheduler.Auto() }

// MaxAttempts is the number of failures tolerated before the cache stops being served.
func (e *Engine) MaxAttempts() int { return e.policy.MaxAttempts }

// MatchID returns the match being synced.
func (e *Engine) MatchID() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.matchID
}

// Current returns the snapshot last shown to the consumer for the current
// match, nil when there is none.
func (e *Engine) Current() *models.Snapshot { return e.current.Load() }

// Stats returns counters and scheduler state.
func (e *Engine) Stats() Stats {
	e.mu.RLock()
	matchID, lastSuccess := e.matchID, e.lastSuccess
	e.mu.RUnlock()

	return Stats{
		MatchID:             matchID,
		State:               e.scheduler.State().String(),
		AutoRefresh:         e.scheduler.Auto(),
		NextRun:             e.scheduler.NextRun(),
		LastSuccess:         lastSuccess,
		ConsecutiveFailures: int(e.failures.Load()),
		MaxAttempts:         e.policy.MaxAttempts,
		Attempts:            e.attempts.Load(),
		Successes:           e.successes.Load(),
		StaleServed:         e.stale.Load(),
		HardFailures:        e.hard.Load(),
		RateLimited:         e.rateLimited.Load(),
		Superseded:          e.superseded.Load(),
		Dropped:             e.dispatcher.Dropped(),
		Discarded:           e.dispatcher.Discarded(),
	}
}

// Close stops the timer and the worker. Any in-flight fetch finishes on its
// own and its outcome is discarded.
func (e *Engine) Close() {
	e.scheduler.Close()
	e.dispatcher.Close()
}

// fetchOnce is the scheduler's job. It runs on the worker.
func (e *Engine) fetchOnce(t Trigger) (models.Outcome, bool) {
	e.mu.RLock()
	ctx, matchID := e.ctx, e.matchID
	e.mu.RUnlock()

	if matchID == "" {
		return models.Outcome{}, false
	}

	logger := shared.WithLogger(e.logger, "match", matchID, "trigger", t)
	start := e.now()
	snap, err := e.fetcher.FetchMatch(ctx, matchID)
	took := e.now().Sub(start)

	outcome := e.policy.Decide(matchID, snap, err, &e.cache)
	outcome.Manual = t.Manual()
	outcome.At = e.now()

	e.observe(outcome)
	e.record(ctx, logger, outcome, t, took)

	switch outcome.Kind {
	case models.OutcomeFresh:
		logger.Info("fetched", "took", took)
	case models.OutcomeStale:
		logger.Warn("serving cached snapshot", "failures", outcome.Failures, "kind", shared.FetchErrorKind(err), "err", err)
	default:
		logger.Error("fetch failed", "failures", outcome.Failures, "kind", shared.FetchErrorKind(err), "err", err)
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.matchID != matchID {
		e.superseded.Add(1)
		logger.Info("match changed during fetch, outcome discarded", "current", e.matchID)
		return outcome, true
	}

	e.failures.Store(int64(outcome.Failures))
	if outcome.Snapshot != nil {
		e.current.Store(outcome.Snapshot)
	}
	if !e.dispatcher.Deliver(outcome) {
		logger.Debug("engine closed, outcome discarded")
	}
	return outcome, false
}

func (e *Engine) observe(o models.Outcome) {
	e.attempts.Add(1)

	switch o.Kind {
	case models.OutcomeFresh:
		e.successes.Add(1)
		e.mu.Lock()
		e.lastSuccess = o.At
		e.mu.Unlock()
	case models.OutcomeStale:
		e.stale.Add(1)
	case models.OutcomeHardFailure:
		e.hard.Add(1)
	}
	if o.RateLimited() {
		e.rateLimited.Add(1)
	}
}

func (e *Engine) record(ctx context.Context, logger *log.Logger, o models.Outcome, t Trigger, took time.Duration) {
	if e.journal == nil {
		return
	}
	if err := e.journal.Record(ctx, models.NewFetchAttempt(o, t.String(), took)); err != nil {
		logger.Warn("failed to record fetch attempt", "err", err)
	}
}
