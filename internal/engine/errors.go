package engine

import (
	"errors"
	"fmt"
)

// TickError reports a failure inside one tick of the driver.
//
// EntityID is set when the failure came from updating a specific entity;
// it is zero (with Phase "flush") when a delayed delivery failed.
type TickError struct {
	// Tick is the 1-based tick number that failed.
	Tick int64

	// Phase is "update" or "flush".
	Phase string

	// EntityID identifies the entity whose Update failed.
	EntityID int

	// Err is the underlying failure.
	Err error
}

// Error implements the error interface.
func (e *TickError) Error() string {
	if e.Phase == phaseUpdate {
		return fmt.Sprintf("tick %d: update entity %d: %v", e.Tick, e.EntityID, e.Err)
	}
	return fmt.Sprintf("tick %d: %s: %v", e.Tick, e.Phase, e.Err)
}

// Unwrap returns the underlying error.
func (e *TickError) Unwrap() error { return e.Err }

const (
	phaseUpdate = "update"
	phaseFlush  = "flush"
)

// IsTickError returns true if err is, or wraps, a TickError.
func IsTickError(err error) bool {
	var te *TickError
	return errors.As(err, &te)
}

// DepthExceededError is returned when synchronous delivery nests deeper
// than the dispatcher allows. Two states that answer each other with
// immediate telegrams would otherwise recurse until the stack overflows.
type DepthExceededError struct {
	Depth    int
	Limit    int
	Sender   int
	Receiver int
	Msg      int
}

// Error implements the error interface.
func (e *DepthExceededError) Error() string {
	return fmt.Sprintf("synchronous send depth %d > %d limit (sender=%d receiver=%d msg=%d)",
		e.Depth, e.Limit, e.Sender, e.Receiver, e.Msg)
}

// IsDepthExceeded returns true if err is, or wraps, a DepthExceededError.
func IsDepthExceeded(err error) bool {
	var de *DepthExceededError
	return errors.As(err, &de)
}
