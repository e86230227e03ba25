package entity

import "sync"

// IDAllocator is the monotonic id counter of one simulation.
//
// An id is valid when it is at least one past the highest id assigned so
// far. Assigning anything lower is a programming error and fails fast.
//
// Thread-safety: all methods are safe for concurrent use.
type IDAllocator struct {
	mu   sync.Mutex
	next int
}

// NewIDAllocator creates an allocator whose first valid id is 0.
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{}
}

// Assign claims id. On success the next valid id becomes id+1.
func (a *IDAllocator) Assign(id int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if id < a.next {
		return NewInvalidIDError(id, a.next)
	}
	a.next = id + 1
	return nil
}

// Next claims and returns the lowest valid id.
func (a *IDAllocator) Next() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := a.next
	a.next++
	return id
}

// Peek returns the lowest valid id without claiming it.
func (a *IDAllocator) Peek() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.next
}
