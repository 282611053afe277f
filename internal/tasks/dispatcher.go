package tasks

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/desertthunder/wicket/internal/models"
)

// DefaultQueueSize is the number of outcomes buffered for the consumer.
const DefaultQueueSize = 4

// Dispatcher hands outcomes from the fetch worker to the consumer.
//
// Deliver never blocks: when the queue is full the oldest queued outcome is
// dropped. Once closed, outcomes are discarded.
type Dispatcher struct {
	ch chan models.Outcome

	mu       sync.Mutex
	closed   bool
	handlers []func(models.Outcome)

	dropped   atomic.Int64
	discarded atomic.Int64
}

// NewDispatcher creates a dispatcher with a queue of size outcomes.
func NewDispatcher(size int) *Dispatcher {
	if size < 1 {
		size = DefaultQueueSize
	}
	return &Dispatcher{ch: make(chan models.Outcome, size)}
}

// Deliver queues o for the consumer and reports whether it was accepted.
func (d *Dispatcher) Deliver(o models.Outcome) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		d.discarded.Add(1)
		return false
	}

	for {
		select {
		case d.ch <- o:
			return true
		default:
		}

		select {
		case <-d.ch:
			d.dropped.Add(1)
		default:
		}
	}
}

// OnOutcome registers fn to run on the consumer goroutine for every outcome it receives.
func (d *Dispatcher) OnOutcome(fn func(models.Outcome)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers = append(d.handlers, fn)
}

// Next blocks until an outcome is available, ctx is done or the dispatcher
// is closed. Registered handlers run before it returns.
func (d *Dispatcher) Next(ctx context.Context) (models.Outcome, bool) {
	select {
	case o, ok := <-d.ch:
		if !ok {
			return models.Outcome{}, false
		}
		d.notify(o)
		return o, true
	case <-ctx.Done():
		return models.Outcome{}, false
	}
}

// Drain runs handlers for each outcome until ctx is done or the dispatcher closes.
func (d *Dispatcher) Drain(ctx context.Context) {
	for {
		if _, ok := d.Next(ctx); !ok {
			return
		}
	}
}

// Close stops delivery. Queued outcomes are discarded.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	close(d.ch)
	for range d.ch {
		d.discarded.Add(1)
	}
}

// Dropped counts outcomes replaced by newer ones while the queue was full.
func (d *Dispatcher) Dropped() int64 { return d.dropped.Load() }

// Discarded counts outcomes that arrived after Close.
func (d *Dispatcher) Discarded() int64 { return d.discarded.Load() }

func (d *Dispatcher) notify(o models.Outcome) {
	d.mu.Lock()
	handlers := append([]func(models.Outcome)(nil), d.handlers...)
	d.mu.Unlock()

	for _, fn := range handlers {
		fn(o)
	}
}
