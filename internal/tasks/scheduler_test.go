package tasks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	th "github.com/desertthunder/wicket/internal/testing"
)

func TestScheduler(t *testing.T) {
	t.Run("Start arms the interval and fetches once", func(t *testing.T) {
		fetcher := th.NewFakeFetcher(th.FetchResult{Snapshot: th.SnapshotFor(1, 1)})
		e, timers := newTestEngine(t, fetcher, EngineOpts{AutoRefresh: true})

		e.Start(context.Background())
		nextOutcome(t, e)

		require.Eventually(t, func() bool { return timers.count() == 2 }, 2*time.Second, time.Millisecond)
		assert.Equal(t, 60*time.Second, timers.timers[0].d)
		assert.True(t, timers.timers[0].stopped.Load(), "replaced after the first fetch")
		assert.Equal(t, 60*time.Second, timers.last().d)
		assert.False(t, e.Stats().NextRun.IsZero())
	})

	t.Run("automatic fetches back off on failure", func(t *testing.T) {
		fetcher := th.NewFakeFetcher(th.FetchResult{Err: errTimeout})
		e, timers := newTestEngine(t, fetcher, EngineOpts{AutoRefresh: true})

		e.Start(context.Background())
		nextOutcome(t, e)
		require.Eventually(t, func() bool { return timers.count() == 2 }, 2*time.Second, time.Millisecond)
		assert.Equal(t, 120*time.Second, timers.last().d)

		for _, want := range []time.Duration{240 * time.Second, 300 * time.Second, 300 * time.Second} {
			n := timers.count()
			waitIdle(t, e)
			timers.last().f()
			nextOutcome(t, e)
			require.Eventually(t, func() bool { return timers.count() == n+1 }, 2*time.Second, time.Millisecond)
			assert.Equal(t, want, timers.last().d)
		}
	})

	t.Run("manual refresh leaves the timer alone", func(t *testing.T) {
		fetcher := th.NewFakeFetcher(th.FetchResult{Snapshot: th.SnapshotFor(1, 1)})
		e, timers := newTestEngine(t, fetcher, EngineOpts{AutoRefresh: true, MatchID: "1"})

		e.scheduler.Start()
		require.Equal(t, 1, timers.count())

		refresh(t, e)
		waitIdle(t, e)
		assert.Equal(t, 1, timers.count())
		assert.False(t, timers.last().stopped.Load())
	})

	t.Run("timer firing while busy reschedules", func(t *testing.T) {
		fetcher := th.NewFakeFetcher(th.FetchResult{Snapshot: th.SnapshotFor(1, 1)})
		fetcher.Gate = make(chan struct{})
		e, timers := newTestEngine(t, fetcher, EngineOpts{AutoRefresh: true})

		e.scheduler.Start()
		require.True(t, e.Refresh())
		<-fetcher.Started

		timers.last().f()
		assert.Equal(t, 2, timers.count())
		assert.Equal(t, 60*time.Second, timers.last().d)

		fetcher.Gate <- struct{}{}
		nextOutcome(t, e)
		assert.Len(t, fetcher.Calls(), 1)
	})

	t.Run("disabling auto refresh leaves no timer armed", func(t *testing.T) {
		fetcher := th.NewFakeFetcher(th.FetchResult{Err: errTimeout})
		e, timers := newTestEngine(t, fetcher, EngineOpts{AutoRefresh: true})

		e.Start(context.Background())
		nextOutcome(t, e)
		require.Eventually(t, func() bool { return timers.count() == 2 }, 2*time.Second, time.Millisecond)

		e.SetAutoRefresh(false)
		assert.False(t, e.AutoRefresh())
		assert.True(t, timers.last().stopped.Load())
		assert.True(t, e.Stats().NextRun.IsZero())

		e.SetAutoRefresh(true)
		assert.Equal(t, 3, timers.count())
		assert.Equal(t, 120*time.Second, timers.last().d, "re-armed with the current backoff")
	})

	t.Run("stale timer callback after disable does nothing", func(t *testing.T) {
		fetcher := th.NewFakeFetcher()
		e, timers := newTestEngine(t, fetcher, EngineOpts{AutoRefresh: true})

		e.scheduler.Start()
		fired := timers.last()
		e.SetAutoRefresh(false)

		fired.f()
		assert.Empty(t, fetcher.Calls())
	})

	t.Run("Close stops the timer", func(t *testing.T) {
		e, timers := newTestEngine(t, th.NewFakeFetcher(), EngineOpts{AutoRefresh: true})
		e.scheduler.Start()
		e.Close()

		assert.True(t, timers.last().stopped.Load())
		assert.False(t, e.scheduler.Trigger(TriggerManual))
		assert.Equal(t, StateIdle, e.scheduler.State())
	})
}

func TestTrigger(t *testing.T) {
	assert.True(t, TriggerManual.Manual())
	assert.True(t, TriggerMatchChange.Manual())
	assert.False(t, TriggerAuto.Manual())
	assert.False(t, TriggerFollowUp.Manual())
	assert.Equal(t, "match_change", TriggerMatchChange.String())
}
