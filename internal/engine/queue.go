package engine

import (
	"container/heap"
	"fmt"
	"sync"

	"github.com/roach88/simkit/internal/telegram"
)

// DedupPolicy decides whether a delayed telegram duplicates one already
// pending.
type DedupPolicy string

const (
	// DedupTolerance drops a telegram when a pending one has the same
	// sender, receiver and msg and a dispatch time within the tolerance.
	DedupTolerance DedupPolicy = "tolerance"

	// DedupNone keeps every telegram.
	DedupNone DedupPolicy = "none"
)

// ParseDedupPolicy converts a config string to a policy.
// The empty string selects DedupTolerance.
func ParseDedupPolicy(s string) (DedupPolicy, error) {
	switch DedupPolicy(s) {
	case "", DedupTolerance:
		return DedupTolerance, nil
	case DedupNone:
		return DedupNone, nil
	}
	return "", fmt.Errorf("unknown dedup policy %q (want %q or %q)", s, DedupTolerance, DedupNone)
}

// pending is a queued telegram plus its insertion sequence.
type pending struct {
	t   telegram.Telegram
	seq uint64
}

// pendingHeap orders by (DispatchAt, seq), so telegrams due at the same
// instant come out in the order they were pushed.
type pendingHeap []pending

func (h pendingHeap) Len() int { return len(h) }

func (h pendingHeap) Less(i, j int) bool {
	if h[i].t.DispatchAt != h[j].t.DispatchAt {
		return h[i].t.DispatchAt < h[j].t.DispatchAt
	}
	return h[i].seq < h[j].seq
}

func (h pendingHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *pendingHeap) Push(x any) { *h = append(*h, x.(pending)) }

func (h *pendingHeap) Pop() any {
	old := *h
	n := len(old)
	p := old[n-1]
	*h = old[:n-1]
	return p
}

// delayQueue is the time-ordered store of telegrams awaiting dispatch.
//
// Thread-safety: all methods take the queue mutex. Callers must not hold
// it while delivering a popped telegram.
type delayQueue struct {
	mu        sync.Mutex
	items     pendingHeap
	nextSeq   uint64
	policy    DedupPolicy
	tolerance float64
}

func newDelayQueue(policy DedupPolicy, tolerance float64) *delayQueue {
	return &delayQueue{
		items:     make(pendingHeap, 0, 16),
		policy:    policy,
		tolerance: tolerance,
	}
}

// Push inserts t unless the dedup policy finds an equivalent pending
// telegram. It returns false when t was suppressed.
func (q *delayQueue) Push(t telegram.Telegram) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.policy == DedupTolerance {
		for _, p := range q.items {
			if telegram.Equivalent(p.t, t, q.tolerance) {
				return false
			}
		}
	}

	q.nextSeq++
	heap.Push(&q.items, pending{t: t, seq: q.nextSeq})
	return true
}

// PopDue removes and returns the head if 0 < DispatchAt <= now.
// The boolean is false when the queue is empty or the head is in the future.
func (q *delayQueue) PopDue(now float64) (telegram.Telegram, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return telegram.Telegram{}, false
	}
	head := q.items[0].t
	if head.DispatchAt <= 0 || head.DispatchAt > now {
		return telegram.Telegram{}, false
	}
	heap.Pop(&q.items)
	return head, true
}

// Peek returns the head without removing it.
func (q *delayQueue) Peek() (telegram.Telegram, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return telegram.Telegram{}, false
	}
	return q.items[0].t, true
}

// Len returns the number of pending telegrams.
func (q *delayQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
