package engine

import (
	"fmt"

	"github.com/google/uuid"
)

// RunIDGenerator produces the id a simulation stamps on its trace.
// Implemented by UUIDv7Generator (production) and testutil.FixedRunID (tests).
type RunIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 run ids.
//
// Thread-safety: safe for concurrent use.
type UUIDv7Generator struct{}

// Generate returns a new UUIDv7 string.
// Panics if UUID generation fails (only on crypto/rand failure).
func (UUIDv7Generator) Generate() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic(fmt.Sprintf("failed to generate UUIDv7: %v", err))
	}
	return id.String()
}
