// Package engine implements the simulation kernel: the delayed-message
// queue, the message dispatcher, the simulation clocks, and the Simulation
// context that drives entities tick by tick.
//
// ARCHITECTURE:
//
// Single Driver:
// One goroutine performs every tick. Nothing in this package blocks or
// yields while a tick runs:
//   - Every registered entity is updated, in registration order
//   - Due delayed telegrams are flushed (at the configured cadence)
//   - The simulation clock advances by one time step
//
// Message Dispatch:
// Dispatcher.Send collapses "deliver now" and "deliver later" into one
// entry point. A zero or negative delay delivers synchronously, inside the
// caller's own Execute or OnMessage. A positive delay stamps the telegram
// with clock.Now()+delay and queues it. Delayed telegrams are delivered
// only by FlushDue, never by a background timer.
//
// Queue Ordering:
// Pending telegrams are ordered by (dispatch time, insertion sequence), so
// equal dispatch times are delivered in the order they were sent.
// Duplicate suppression is a separate policy (DedupTolerance by default):
// a telegram equivalent to one already pending is dropped and traced.
//
// Logical Clock:
// Every trace event is stamped with a monotonic seq from Clock.Next().
// Simulation time (TimeSource) is used only for scheduling; ordering of
// the trace never depends on it.
//
// Contexts, not globals:
// The id allocator, registry, dispatcher and clocks all hang off a
// Simulation value. Independent simulations never share state.
package engine
