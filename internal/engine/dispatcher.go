package engine

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/roach88/simkit/internal/entity"
	"github.com/roach88/simkit/internal/telegram"
	"github.com/roach88/simkit/internal/trace"
)

// DefaultMaxDepth bounds how deeply synchronous sends may nest.
const DefaultMaxDepth = 256

// DispatcherConfig holds the optional collaborators of a Dispatcher.
// The zero value is usable: tolerance dedup with telegram.DefaultTolerance,
// DefaultMaxDepth, no trace, slog.Default().
type DispatcherConfig struct {
	Dedup     DedupPolicy
	Tolerance float64
	MaxDepth  int
	Sink      trace.Sink
	Logger    *slog.Logger
}

// Dispatcher routes telegrams between registered entities, either
// immediately or after a delay measured on its TimeSource.
//
// Thread-safety: Send and FlushDue may be called from any goroutine, but a
// simulation normally drives both from its tick loop. No lock is held while
// a receiver handles a telegram, so handlers may call Send again.
type Dispatcher struct {
	registry *entity.Registry
	clock    TimeSource
	queue    *delayQueue
	sink     trace.Sink
	logger   *slog.Logger

	maxDepth int64
	depth    atomic.Int64
}

// NewDispatcher creates a dispatcher that resolves receivers in reg and
// schedules against clock.
func NewDispatcher(reg *entity.Registry, clock TimeSource, cfg DispatcherConfig) *Dispatcher {
	if cfg.Dedup == "" {
		cfg.Dedup = DedupTolerance
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = telegram.DefaultTolerance
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultMaxDepth
	}
	if cfg.Sink == nil {
		cfg.Sink = trace.Discard
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Dispatcher{
		registry: reg,
		clock:    clock,
		queue:    newDelayQueue(cfg.Dedup, cfg.Tolerance),
		sink:     cfg.Sink,
		logger:   cfg.Logger,
		maxDepth: int64(cfg.MaxDepth),
	}
}

// Send delivers a telegram from sender to receiver.
//
// A delay <= 0 delivers synchronously before Send returns; the telegram's
// DispatchAt is telegram.SendImmediately. A positive delay queues it for
// clock.Now()+delay, unless an equivalent telegram is already pending.
//
// An unknown receiver fails with an entity NotFound error and nothing is
// delivered or queued. An error returned by the receiver is propagated.
// A receiver that does not handle the telegram is not an error.
func (d *Dispatcher) Send(delay float64, sender, receiver, msg int, payload any) error {
	r, err := d.registry.Get(receiver)
	if err != nil {
		return fmt.Errorf("send msg %d from %d: %w", msg, sender, err)
	}

	if delay <= 0 {
		t := telegram.New(telegram.SendImmediately, sender, receiver, msg, payload)
		d.record(trace.KindSent, t)
		return d.deliver(r, t)
	}

	t := telegram.New(d.clock.Now()+delay, sender, receiver, msg, payload)
	if !d.queue.Push(t) {
		d.logger.Debug("duplicate telegram suppressed",
			"sender", sender,
			"receiver", receiver,
			"msg", msg,
			"dispatch_at", t.DispatchAt)
		d.record(trace.KindSuppressed, t)
		return nil
	}
	d.record(trace.KindScheduled, t)
	return nil
}

// FlushDue delivers every queued telegram whose dispatch time has been
// reached, in (dispatch time, send order) order, and returns how many it
// delivered.
//
// It stops at the first telegram still in the future. If a delivery fails
// the error is returned at once: telegrams delivered earlier in the pass
// stay delivered, the failed telegram is gone from the queue, and any
// remaining due telegrams wait for the next flush.
func (d *Dispatcher) FlushDue() (int, error) {
	now := d.clock.Now()
	delivered := 0
	for {
		t, ok := d.queue.PopDue(now)
		if !ok {
			return delivered, nil
		}

		r, err := d.registry.Get(t.Receiver)
		if err != nil {
			return delivered, fmt.Errorf("flush %s: %w", t, err)
		}

		d.record(trace.KindDelivered, t)
		if err := d.deliver(r, t); err != nil {
			return delivered, fmt.Errorf("flush: %w", err)
		}
		delivered++
	}
}

// Pending returns the number of queued telegrams.
func (d *Dispatcher) Pending() int {
	return d.queue.Len()
}

// Peek returns the next telegram due, without removing it.
func (d *Dispatcher) Peek() (telegram.Telegram, bool) {
	return d.queue.Peek()
}

func (d *Dispatcher) deliver(r entity.Entity, t telegram.Telegram) error {
	depth := d.depth.Add(1)
	defer d.depth.Add(-1)
	if depth > d.maxDepth {
		return &DepthExceededError{
			Depth:    int(depth),
			Limit:    int(d.maxDepth),
			Sender:   t.Sender,
			Receiver: t.Receiver,
			Msg:      t.Msg,
		}
	}

	handled, err := r.HandleMessage(t)
	if err != nil {
		return fmt.Errorf("deliver %s: %w", t, err)
	}

	if !handled {
		d.logger.Debug("message not handled",
			"sender", t.Sender,
			"receiver", t.Receiver,
			"msg", t.Msg)
		d.record(trace.KindUnhandled, t)
	}
	return nil
}

func (d *Dispatcher) record(kind trace.Kind, t telegram.Telegram) {
	d.sink.Record(trace.Event{
		Kind:       kind,
		Entity:     t.Receiver,
		Sender:     t.Sender,
		Receiver:   t.Receiver,
		Msg:        t.Msg,
		DispatchAt: t.DispatchAt,
	})
}
