package engine

import (
	"math"
	"sync/atomic"
	"time"
)

// Clock is the monotonic logical clock that orders trace events.
//
// All events are stamped with a strictly increasing seq number from this
// clock, so a trace replays in the same order regardless of wall time.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a new clock starting at a specific sequence number.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}

// TimeSource is the simulation clock the dispatcher schedules against.
// Readings must never decrease.
type TimeSource interface {
	Now() float64
}

// Advancer is a TimeSource the driver moves forward once per tick.
type Advancer interface {
	TimeSource
	Advance(d float64) float64
}

// SimClock is simulation time driven by the tick loop.
//
// Thread-safety: safe for concurrent use; the reading is stored as float
// bits in an atomic word.
type SimClock struct {
	bits atomic.Uint64
}

// NewSimClock creates a clock reading 0.
func NewSimClock() *SimClock {
	return &SimClock{}
}

// NewSimClockAt creates a clock reading start.
func NewSimClockAt(start float64) *SimClock {
	c := &SimClock{}
	c.bits.Store(math.Float64bits(start))
	return c
}

// Now implements TimeSource.
func (c *SimClock) Now() float64 {
	return math.Float64frombits(c.bits.Load())
}

// Advance moves the clock forward by d and returns the new reading.
// Non-positive d leaves the clock unchanged.
func (c *SimClock) Advance(d float64) float64 {
	for {
		old := c.bits.Load()
		cur := math.Float64frombits(old)
		if d <= 0 {
			return cur
		}
		next := cur + d
		if c.bits.CompareAndSwap(old, math.Float64bits(next)) {
			return next
		}
	}
}

// WallClock reads real elapsed seconds since it was created.
// Delays passed to the dispatcher are then interpreted as seconds.
type WallClock struct {
	start time.Time
}

// NewWallClock creates a wall clock starting now.
func NewWallClock() *WallClock {
	return &WallClock{start: time.Now()}
}

// Now implements TimeSource. time.Since uses the monotonic reading, so
// the value never goes backwards.
func (c *WallClock) Now() float64 {
	return time.Since(c.start).Seconds()
}
