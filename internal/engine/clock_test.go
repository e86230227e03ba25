package engine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClock_Monotonic(t *testing.T) {
	c := NewClock()
	assert.Equal(t, int64(0), c.Current())
	assert.Equal(t, int64(1), c.Next())
	assert.Equal(t, int64(2), c.Next())
	assert.Equal(t, int64(2), c.Current())
}

func TestClock_StartAt(t *testing.T) {
	c := NewClockAt(41)
	assert.Equal(t, int64(42), c.Next())
}

func TestClock_ConcurrentNextIsUnique(t *testing.T) {
	c := NewClock()
	const workers, per = 8, 100

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[int64]bool)
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < per; i++ {
				v := c.Next()
				mu.Lock()
				seen[v] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*per)
	assert.Equal(t, int64(workers*per), c.Current())
}

func TestSimClock_Advance(t *testing.T) {
	c := NewSimClock()
	assert.Equal(t, 0.0, c.Now())

	assert.Equal(t, 0.5, c.Advance(0.5))
	assert.Equal(t, 1.5, c.Advance(1))
	assert.Equal(t, 1.5, c.Advance(-3), "clock never runs backwards")
	assert.Equal(t, 1.5, c.Advance(0))
}

func TestSimClock_StartAt(t *testing.T) {
	c := NewSimClockAt(10)
	assert.Equal(t, 10.0, c.Now())
}

func TestWallClock_NeverDecreases(t *testing.T) {
	c := NewWallClock()
	a := c.Now()
	b := c.Now()
	assert.GreaterOrEqual(t, a, 0.0)
	assert.GreaterOrEqual(t, b, a)
}
