package tasks

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desertthunder/wicket/internal/models"
	"github.com/desertthunder/wicket/internal/shared"
	th "github.com/desertthunder/wicket/internal/testing"
)

var errRateLimited = errors.WithHint(errors.Mark(errors.New("API rate limit exceeded (429)"), shared.ErrRateLimited), shared.RateLimitHint)

// fakeTimer records a scheduled callback instead of running it.
type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped atomic.Bool
}

func (t *fakeTimer) Stop() bool { return !t.stopped.Swap(true) }

type timerLog struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (l *timerLog) afterFunc(d time.Duration, f func()) stopper {
	l.mu.Lock()
	defer l.mu.Unlock()
	ft := &fakeTimer{d: d, f: f}
	l.timers = append(l.timers, ft)
	return ft
}

func (l *timerLog) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.timers)
}

func (l *timerLog) last() *fakeTimer {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.timers) == 0 {
		return nil
	}
	return l.timers[len(l.timers)-1]
}

type memJournal struct {
	mu       sync.Mutex
	attempts []*models.FetchAttempt
}

func (j *memJournal) Record(_ context.Context, a *models.FetchAttempt) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.attempts = append(j.attempts, a)
	return nil
}

func (j *memJournal) len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.attempts)
}

func newTestEngine(t *testing.T, fetcher *th.FakeFetcher, opts EngineOpts) (*Engine, *timerLog) {
	t.Helper()
	opts.Fetcher = fetcher
	if opts.MatchID == "" {
		opts.MatchID = "1"
	}
	e, err := NewEngine(opts)
	require.NoError(t, err)

	timers := &timerLog{}
	e.scheduler.afterFunc = timers.afterFunc
	t.Cleanup(e.Close)
	return e, timers
}

func nextOutcome(t *testing.T, e *Engine) models.Outcome {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	o, ok := e.Next(ctx)
	require.True(t, ok, "no outcome delivered")
	return o
}

func waitIdle(t *testing.T, e *Engine) {
	t.Helper()
	require.Eventually(t, func() bool { return e.scheduler.State() == StateIdle }, 2*time.Second, time.Millisecond)
}

func refresh(t *testing.T, e *Engine) models.Outcome {
	t.Helper()
	waitIdle(t, e)
	require.True(t, e.Refresh())
	return nextOutcome(t, e)
}

func TestEngine(t *testing.T) {
	t.Run("fresh, stale, stale, fresh", func(t *testing.T) {
		s1, s2 := th.SnapshotFor(1, 100), th.SnapshotFor(1, 150)
		fetcher := th.NewFakeFetcher(
			th.FetchResult{Snapshot: s1},
			th.FetchResult{Err: errTimeout},
			th.FetchResult{Err: errRateLimited},
			th.FetchResult{Snapshot: s2},
		)
		e, _ := newTestEngine(t, fetcher, EngineOpts{})

		o := refresh(t, e)
		assert.Equal(t, models.OutcomeFresh, o.Kind)
		assert.Same(t, s1, o.Snapshot)
		assert.True(t, o.Manual)

		o = refresh(t, e)
		assert.Equal(t, models.OutcomeStale, o.Kind)
		assert.Same(t, s1, o.Snapshot)
		assert.Equal(t, 1, o.Failures)

		o = refresh(t, e)
		assert.Equal(t, models.OutcomeStale, o.Kind)
		assert.Same(t, s1, o.Snapshot)
		assert.Equal(t, 2, o.Failures)
		assert.True(t, o.RateLimited())

		o = refresh(t, e)
		assert.Equal(t, models.OutcomeFresh, o.Kind)
		assert.Same(t, s2, o.Snapshot)
		assert.Zero(t, o.Failures)
		assert.Same(t, s2, e.Current())

		waitIdle(t, e)
		stats := e.Stats()
		assert.Equal(t, int64(4), stats.Attempts)
		assert.Equal(t, int64(2), stats.Successes)
		assert.Equal(t, int64(2), stats.StaleServed)
		assert.Equal(t, int64(1), stats.RateLimited)
		assert.Zero(t, stats.ConsecutiveFailures)
	})

	t.Run("hard failure leaves current untouched", func(t *testing.T) {
		s1 := th.SnapshotFor(1, 100)
		fetcher := th.NewFakeFetcher(th.FetchResult{Snapshot: s1}, th.FetchResult{Err: errTimeout})
		e, _ := newTestEngine(t, fetcher, EngineOpts{Policy: RetryPolicy{Interval: time.Minute, Cap: time.Minute, MaxAttempts: 0}})

		refresh(t, e)
		o := refresh(t, e)
		assert.Equal(t, models.OutcomeHardFailure, o.Kind)
		assert.Same(t, s1, e.Current())
	})

	t.Run("single flight drops duplicate triggers", func(t *testing.T) {
		fetcher := th.NewFakeFetcher(th.FetchResult{Snapshot: th.SnapshotFor(1, 1)})
		fetcher.Gate = make(chan struct{})
		e, _ := newTestEngine(t, fetcher, EngineOpts{})

		require.True(t, e.Refresh())
		<-fetcher.Started
		assert.Equal(t, StateFetching, e.scheduler.State())

		assert.False(t, e.Refresh())
		assert.False(t, e.scheduler.Trigger(TriggerAuto))

		fetcher.Gate <- struct{}{}
		nextOutcome(t, e)
		assert.Len(t, fetcher.Calls(), 1)
	})

	t.Run("no match means no fetch", func(t *testing.T) {
		fetcher := th.NewFakeFetcher()
		e, err := NewEngine(EngineOpts{Fetcher: fetcher})
		require.NoError(t, err)
		defer e.Close()

		assert.False(t, e.Refresh())
		assert.Empty(t, fetcher.Calls())
	})

	t.Run("journal records every attempt", func(t *testing.T) {
		journal := &memJournal{}
		fetcher := th.NewFakeFetcher(th.FetchResult{Snapshot: th.SnapshotFor(1, 1)}, th.FetchResult{Err: errRateLimited})
		e, _ := newTestEngine(t, fetcher, EngineOpts{Journal: journal})

		refresh(t, e)
		refresh(t, e)
		require.Eventually(t, func() bool { return journal.len() == 2 }, time.Second, time.Millisecond)

		journal.mu.Lock()
		defer journal.mu.Unlock()
		assert.Equal(t, "fresh", journal.attempts[0].Outcome)
		assert.Equal(t, "manual", journal.attempts[0].Trigger)
		assert.Equal(t, "stale", journal.attempts[1].Outcome)
		assert.True(t, journal.attempts[1].RateLimited)
	})

	t.Run("OnOutcome handlers run while draining", func(t *testing.T) {
		fetcher := th.NewFakeFetcher(th.FetchResult{Snapshot: th.SnapshotFor(1, 1)})
		e, _ := newTestEngine(t, fetcher, EngineOpts{})

		got := make(chan models.Outcome, 1)
		e.OnOutcome(func(o models.Outcome) { got <- o })

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go e.Drain(ctx)

		require.True(t, e.Refresh())
		select {
		case o := <-got:
			assert.Equal(t, models.OutcomeFresh, o.Kind)
		case <-time.After(2 * time.Second):
			t.Fatal("handler not called")
		}
	})
}

func TestEngineMatchChange(t *testing.T) {
	t.Run("late outcome for the old match is discarded", func(t *testing.T) {
		fetcher := th.NewFakeFetcher(
			th.FetchResult{Snapshot: th.SnapshotFor(1, 1)},
			th.FetchResult{Snapshot: th.SnapshotFor(2, 2)},
		)
		fetcher.Gate = make(chan struct{})
		e, timers := newTestEngine(t, fetcher, EngineOpts{})

		require.True(t, e.Refresh())
		assert.Equal(t, "1", <-fetcher.Started)

		assert.False(t, e.TriggerManualFetch("2"), "worker is busy")
		assert.Equal(t, "2", e.MatchID())
		assert.Nil(t, e.Current())

		fetcher.Gate <- struct{}{}
		require.Eventually(t, func() bool { return timers.count() == 1 }, 2*time.Second, time.Millisecond)
		follow := timers.last()
		assert.Zero(t, follow.d, "follow-up runs immediately")
		waitIdle(t, e)

		follow.f()
		assert.Equal(t, "2", <-fetcher.Started)
		fetcher.Gate <- struct{}{}

		o := nextOutcome(t, e)
		assert.Equal(t, "2", o.MatchID)
		assert.Equal(t, int64(2), o.Snapshot.Header.MatchID)
		assert.Equal(t, int64(1), e.Stats().Superseded)
	})

	t.Run("idle switch fetches at once", func(t *testing.T) {
		fetcher := th.NewFakeFetcher(th.FetchResult{Snapshot: th.SnapshotFor(9, 1)})
		e, _ := newTestEngine(t, fetcher, EngineOpts{})

		require.True(t, e.TriggerManualFetch(" 9 "))
		o := nextOutcome(t, e)
		assert.Equal(t, "9", o.MatchID)
		assert.True(t, o.Manual)
		assert.Equal(t, []string{"9"}, fetcher.Calls())
	})
}

func TestEngineClose(t *testing.T) {
	t.Run("outcomes after close are discarded", func(t *testing.T) {
		fetcher := th.NewFakeFetcher(th.FetchResult{Snapshot: th.SnapshotFor(1, 1)})
		fetcher.Gate = make(chan struct{})
		e, _ := newTestEngine(t, fetcher, EngineOpts{})

		require.True(t, e.Refresh())
		<-fetcher.Started
		e.Close()

		fetcher.Gate <- struct{}{}
		require.Eventually(t, func() bool { return e.Stats().Discarded == 1 }, 2*time.Second, time.Millisecond)

		_, ok := e.Next(context.Background())
		assert.False(t, ok)
		assert.False(t, e.Refresh())
	})
}
