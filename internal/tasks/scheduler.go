package tasks

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"

	"github.com/desertthunder/wicket/internal/models"
)

// Trigger says why a fetch was started.
type Trigger int

const (
	TriggerAuto        Trigger = iota // the refresh timer fired
	TriggerManual                     // the user asked for a refresh
	TriggerMatchChange                // the user switched matches
	TriggerFollowUp                   // a late outcome was discarded and the new match still needs data
)

func (t Trigger) String() string {
	switch t {
	case TriggerAuto:
		return "auto"
	case TriggerManual:
		return "manual"
	case TriggerMatchChange:
		return "match_change"
	case TriggerFollowUp:
		return "follow_up"
	default:
		return "unknown"
	}
}

// Manual reports whether the user started this fetch.
func (t Trigger) Manual() bool { return t == TriggerManual || t == TriggerMatchChange }

// State is the scheduler's single-flight state.
type State int32

const (
	StateIdle State = iota
	StateFetching
)

func (s State) String() string {
	if s == StateFetching {
		return "fetching"
	}
	return "idle"
}

// Job performs one fetch and hands its outcome to the dispatcher. It reports
// whether the outcome was discarded because the match changed mid-flight.
type Job func(Trigger) (outcome models.Outcome, superseded bool)

// stopper is the part of [time.Timer] the scheduler needs.
type stopper interface {
	Stop() bool
}

// Scheduler decides when fetches run. It owns one timer for the next
// automatic fetch and guarantees at most one fetch in flight.
type Scheduler struct {
	job    Job
	policy RetryPolicy
	pool   *ants.Pool
	logger *log.Logger

	inFlight atomic.Bool

	mu        sync.Mutex
	timer     stopper
	timerGen  uint64
	timerKind Trigger
	nextRun   time.Time
	lastDelay time.Duration
	auto      bool
	closed    bool

	afterFunc func(time.Duration, func()) stopper
	now       func() time.Time
}

// NewScheduler creates a scheduler running job on a single background worker.
func NewScheduler(job Job, policy RetryPolicy, auto bool, logger *log.Logger) (*Scheduler, error) {
	// inFlight is the single-flight guard. The one blocking slot holds a submit
	// that lands while the previous task is still returning its worker.
	pool, err := ants.NewPool(1, ants.WithMaxBlockingTasks(1))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fetch worker")
	}

	return &Scheduler{
		job:       job,
		policy:    policy,
		pool:      pool,
		logger:    logger,
		auto:      auto,
		lastDelay: policy.Interval,
		afterFunc: func(d time.Duration, f func()) stopper { return time.AfterFunc(d, f) },
		now:       time.Now,
	}, nil
}

// State reports whether a fetch is in flight.
func (s *Scheduler) State() State {
	if s.inFlight.Load() {
		return StateFetching
	}
	return StateIdle
}

// Start arms the refresh timer when auto-refresh is enabled.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.auto && s.timer == nil {
		s.arm(s.policy.Interval, TriggerAuto)
	}
}

// Trigger starts a fetch unless one is already in flight. Duplicate triggers are dropped, not queued.
func (s *Scheduler) Trigger(t Trigger) bool {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return false
	}

	if !s.inFlight.CompareAndSwap(false, true) {
		s.logger.Debug("fetch already in flight, trigger dropped", "trigger", t)
		return false
	}

	if err := s.pool.Submit(func() { s.execute(t) }); err != nil {
		s.inFlight.Store(false)
		s.logger.Warn("failed to submit fetch", "trigger", t, "err", err)
		return false
	}
	return true
}

// execute runs on the worker. The in-flight flag is cleared only after the
// job has handed its outcome to the dispatcher.
func (s *Scheduler) execute(t Trigger) {
	var (
		outcome    models.Outcome
		superseded bool
	)
	func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("fetch panicked", "trigger", t, "panic", r)
				outcome = models.Outcome{Kind: models.OutcomeHardFailure, Failures: 1}
			}
		}()
		outcome, superseded = s.job(t)
	}()

	s.inFlight.Store(false)

	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case superseded:
		s.arm(0, TriggerFollowUp)
	case t == TriggerAuto || t == TriggerFollowUp:
		s.lastDelay = s.policy.Delay(outcome.Failures)
		if s.auto {
			s.arm(s.lastDelay, TriggerAuto)
		}
	}
}

// fire is the timer callback. Callbacks from replaced or stopped timers are ignored.
func (s *Scheduler) fire(gen uint64) {
	s.mu.Lock()
	if gen != s.timerGen || s.timer == nil {
		s.mu.Unlock()
		return
	}
	kind := s.timerKind
	s.timer = nil
	s.nextRun = time.Time{}
	run := !s.closed && (s.auto || kind == TriggerFollowUp)
	s.mu.Unlock()

	if !run {
		return
	}

	if !s.Trigger(kind) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.auto && s.timer == nil {
			s.arm(s.policy.Interval, TriggerAuto)
		}
	}
}

// SetAuto enables or disables automatic refresh. Disabling stops the timer;
// enabling re-arms it with the most recent delay.
func (s *Scheduler) SetAuto(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.auto = enabled
	if !enabled {
		if s.timer != nil && s.timerKind == TriggerAuto {
			s.timer.Stop()
			s.timer = nil
			s.nextRun = time.Time{}
		}
		return
	}
	if s.timer == nil {
		s.arm(s.lastDelay, TriggerAuto)
	}
}

// Auto reports whether automatic refresh is enabled.
func (s *Scheduler) Auto() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.auto
}

// NextRun returns when the timer fires next, zero when unarmed.
func (s *Scheduler) NextRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextRun
}

// Close stops the timer and releases the worker without waiting for an
// in-flight fetch.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.nextRun = time.Time{}
	s.mu.Unlock()

	s.pool.Release()
}

// arm replaces the timer. Callers hold s.mu.
func (s *Scheduler) arm(d time.Duration, kind Trigger) {
	if s.closed {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timerGen++
	gen := s.timerGen
	s.timerKind = kind
	s.nextRun = s.now().Add(d)
	s.timer = s.afterFunc(d, func() { s.fire(gen) })
}
