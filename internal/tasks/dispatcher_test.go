package tasks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desertthunder/wicket/internal/models"
)

func TestDispatcher(t *testing.T) {
	t.Run("delivers in order", func(t *testing.T) {
		d := NewDispatcher(4)
		require.True(t, d.Deliver(models.Outcome{MatchID: "a"}))
		require.True(t, d.Deliver(models.Outcome{MatchID: "b"}))

		o, ok := d.Next(context.Background())
		require.True(t, ok)
		assert.Equal(t, "a", o.MatchID)
		o, _ = d.Next(context.Background())
		assert.Equal(t, "b", o.MatchID)
	})

	t.Run("full queue drops the oldest", func(t *testing.T) {
		d := NewDispatcher(2)
		for _, id := range []string{"a", "b", "c"} {
			require.True(t, d.Deliver(models.Outcome{MatchID: id}))
		}

		assert.Equal(t, int64(1), d.Dropped())
		o, _ := d.Next(context.Background())
		assert.Equal(t, "b", o.MatchID)
		o, _ = d.Next(context.Background())
		assert.Equal(t, "c", o.MatchID)
	})

	t.Run("closed discards", func(t *testing.T) {
		d := NewDispatcher(2)
		require.True(t, d.Deliver(models.Outcome{MatchID: "queued"}))
		d.Close()
		d.Close()

		assert.False(t, d.Deliver(models.Outcome{MatchID: "late"}))
		_, ok := d.Next(context.Background())
		assert.False(t, ok)
		assert.Equal(t, int64(2), d.Discarded())
	})

	t.Run("Next honours context", func(t *testing.T) {
		d := NewDispatcher(1)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		_, ok := d.Next(ctx)
		assert.False(t, ok)
	})

	t.Run("handlers run on the draining goroutine", func(t *testing.T) {
		d := NewDispatcher(2)
		got := make(chan string, 2)
		d.OnOutcome(func(o models.Outcome) { got <- o.MatchID })

		done := make(chan struct{})
		go func() {
			d.Drain(context.Background())
			close(done)
		}()

		d.Deliver(models.Outcome{MatchID: "x"})
		assert.Equal(t, "x", <-got)

		d.Close()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("Drain did not return after Close")
		}
	})

	t.Run("zero size uses the default", func(t *testing.T) {
		assert.Equal(t, DefaultQueueSize, cap(NewDispatcher(0).ch))
	})
}
