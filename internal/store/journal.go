package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/roach88/simkit/internal/trace"
)

// Journal is a trace.Sink that appends every event to the store.
//
// Sinks cannot return errors, so the first write failure is kept and every
// later event is dropped. Callers check Err() once the run is over.
//
// Thread-safety: safe for concurrent use.
type Journal struct {
	store  *Store
	ctx    context.Context
	logger *slog.Logger

	mu      sync.Mutex
	err     error
	written int
}

// NewJournal creates a journal writing through s. The run must already be
// recorded with WriteRun.
func NewJournal(ctx context.Context, s *Store, logger *slog.Logger) *Journal {
	if logger == nil {
		logger = slog.Default()
	}
	return &Journal{store: s, ctx: ctx, logger: logger}
}

// Record implements trace.Sink.
func (j *Journal) Record(ev trace.Event) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.err != nil {
		return
	}
	if err := j.store.WriteEvent(j.ctx, ev); err != nil {
		j.err = err
		j.logger.Error("journal write failed, dropping remaining events",
			"run_id", ev.RunID,
			"seq", ev.Seq,
			"error", err)
		return
	}
	j.written++
}

// Err returns the first write failure, if any.
func (j *Journal) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

// Written returns the number of events persisted.
func (j *Journal) Written() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.written
}
