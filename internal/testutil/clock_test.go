package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManualClock_StartsAtZero(t *testing.T) {
	clock := NewManualClock()
	assert.Equal(t, 0.0, clock.Now())
}

func TestManualClock_AdvanceAndSet(t *testing.T) {
	clock := NewManualClock()

	assert.Equal(t, 1.5, clock.Advance(1.5))
	clock.Set(4)
	assert.Equal(t, 4.0, clock.Now())

	// Never runs backwards
	clock.Set(2)
	clock.Advance(-1)
	assert.Equal(t, 4.0, clock.Now())
}

func TestManualClock_Reset(t *testing.T) {
	clock := NewManualClock()
	clock.Advance(3)
	clock.Reset()
	assert.Equal(t, 0.0, clock.Now())
}

func TestManualClock_ThreadSafe(t *testing.T) {
	clock := NewManualClock()
	const numGoroutines = 50

	var wg sync.WaitGroup
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			clock.Advance(1)
		}()
	}
	wg.Wait()

	assert.Equal(t, float64(numGoroutines), clock.Now())
}

func TestFixedRunID(t *testing.T) {
	assert.Equal(t, "run-1", NewFixedRunID("run-1").Generate())
	assert.Equal(t, "test-run-default", NewFixedRunID("").Generate())
}

func TestCallLog(t *testing.T) {
	log := NewCallLog()
	s := NewRecordingState[int]("A", log)

	_ = s.Enter(0)
	_ = s.Execute(0)
	_ = s.Exit(0)
	assert.Equal(t, []string{"A.enter", "A.execute", "A.exit"}, log.Calls())

	log.Reset()
	assert.Empty(t, log.Calls())
}
