package testutil

import "sync"

// ManualClock is a simulation time source that only moves when a test
// moves it.
//
// Unlike engine.SimClock, ManualClock can be set to an arbitrary reading
// and reset for test reuse, so delayed-message tests never depend on real
// elapsed time.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type ManualClock struct {
	mu  sync.Mutex
	now float64
}

// NewManualClock creates a clock reading 0.
func NewManualClock() *ManualClock {
	return &ManualClock{}
}

// Now returns the current reading. Implements engine.TimeSource.
func (c *ManualClock) Now() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d and returns the new reading.
// Negative d is ignored: the clock never runs backwards.
func (c *ManualClock) Advance(d float64) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d > 0 {
		c.now += d
	}
	return c.now
}

// Set moves the clock to t if t is not earlier than the current reading.
func (c *ManualClock) Set(t float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t > c.now {
		c.now = t
	}
}

// Reset puts the clock back to 0.
func (c *ManualClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = 0
}
