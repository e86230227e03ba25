package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/simkit/internal/trace"
)

// createTestStore creates a new store in a temp dir for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun records a run with an empty config.
func createTestRun(t *testing.T, s *Store, runID string) {
	t.Helper()
	if err := s.WriteRun(context.Background(), runID, 42, map[string]any{}); err != nil {
		t.Fatalf("WriteRun(%q) failed: %v", runID, err)
	}
}

// createTestEvent creates an event with minimal fields.
func createTestEvent(runID string, seq int64, kind trace.Kind) trace.Event {
	return trace.Event{
		RunID:  runID,
		Seq:    seq,
		Tick:   seq,
		Clock:  float64(seq) / 2,
		Kind:   kind,
		Entity: 1,
	}
}
