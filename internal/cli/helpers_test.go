package cli

import (
	"testing"

	"github.com/roach88/simkit/internal/store"
)

// openOrCreate opens dbPath, creating an empty database if needed.
func openOrCreate(t *testing.T, dbPath string) (*store.Store, error) {
	t.Helper()
	return store.Open(dbPath)
}
