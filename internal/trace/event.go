// Package trace records what a simulation run did: transitions, telegrams
// sent, scheduled, suppressed, delivered or left unhandled, and tick
// boundaries.
//
// Events flow from the kernel into a Sink. The engine stamps every event
// with a logical sequence number, the tick it happened in, and the
// simulation clock reading, so a trace can be replayed, diffed and digested
// without looking at wall-clock time.
package trace

import "sync"

// Kind names what happened.
type Kind string

const (
	// KindTick marks the start of a tick.
	KindTick Kind = "tick"

	// KindTransition is a completed state change of an entity.
	KindTransition Kind = "transition"

	// KindSent is a telegram delivered synchronously by Send.
	KindSent Kind = "sent"

	// KindScheduled is a delayed telegram inserted into the queue.
	KindScheduled Kind = "scheduled"

	// KindSuppressed is a delayed telegram dropped as a duplicate of one
	// already pending.
	KindSuppressed Kind = "suppressed"

	// KindDelivered is a delayed telegram delivered by a flush.
	KindDelivered Kind = "delivered"

	// KindUnhandled is a telegram neither state layer handled.
	KindUnhandled Kind = "unhandled"
)

// Kinds lists every kind in a stable order.
var Kinds = []Kind{KindTick, KindTransition, KindSent, KindScheduled, KindSuppressed, KindDelivered, KindUnhandled}

// Event is one entry of a trace.
//
// Entity is the subject: the owner for transitions, the receiver for
// telegram events, zero for ticks.
type Event struct {
	RunID string  `json:"run_id,omitempty"`
	Seq   int64   `json:"seq"`
	Tick  int64   `json:"tick"`
	Clock float64 `json:"clock"`
	Kind  Kind    `json:"kind"`

	Entity int `json:"entity"`

	// Transition fields
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`

	// Telegram fields
	Sender     int     `json:"sender,omitempty"`
	Receiver   int     `json:"receiver,omitempty"`
	Msg        int     `json:"msg,omitempty"`
	DispatchAt float64 `json:"dispatch_at,omitempty"`

	Detail string `json:"detail,omitempty"`
}

// Sink receives trace events.
type Sink interface {
	Record(ev Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ev Event)

// Record implements Sink.
func (f SinkFunc) Record(ev Event) { f(ev) }

// Discard drops every event.
var Discard Sink = SinkFunc(func(Event) {})

// Multi fans events out to every non-nil sink, in order.
func Multi(sinks ...Sink) Sink {
	var live []Sink
	for _, s := range sinks {
		if s != nil {
			live = append(live, s)
		}
	}
	switch len(live) {
	case 0:
		return Discard
	case 1:
		return live[0]
	}
	return SinkFunc(func(ev Event) {
		for _, s := range live {
			s.Record(ev)
		}
	})
}

// Recorder keeps events in memory.
//
// Thread-safety: safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{events: []Event{}}
}

// Record implements Sink.
func (r *Recorder) Record(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Filter returns the recorded events of the given kind.
func (r *Recorder) Filter(kind Kind) []Event {
	return Filter(r.Events(), kind)
}

// Filter returns the events of the given kind, in order.
func Filter(events []Event, kind Kind) []Event {
	out := []Event{}
	for _, ev := range events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}
