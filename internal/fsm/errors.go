package fsm

import (
	"errors"
	"fmt"
)

// TransitionError reports a transition the machine refuses to perform.
//
// These are programming errors: the machine fails immediately rather than
// continuing with an undefined behavior layer.
type TransitionError struct {
	// Code identifies the violated precondition.
	Code TransitionErrorCode

	// Op is the machine operation that was called.
	Op string

	// Current is the name of the current state at the time, if any.
	Current string
}

// TransitionErrorCode categorizes invalid transitions.
type TransitionErrorCode string

const (
	// ErrCodeNilTarget indicates ChangeState was called with a nil state.
	ErrCodeNilTarget TransitionErrorCode = "NIL_TARGET"

	// ErrCodeNoCurrentState indicates a transition with no current state to exit.
	ErrCodeNoCurrentState TransitionErrorCode = "NO_CURRENT_STATE"

	// ErrCodeNoPreviousState indicates a revert with nothing to revert to.
	ErrCodeNoPreviousState TransitionErrorCode = "NO_PREVIOUS_STATE"
)

// Error implements the error interface.
func (e *TransitionError) Error() string {
	if e.Current != "" {
		return fmt.Sprintf("invalid transition: %s: %s (current=%s)", e.Op, e.Code, e.Current)
	}
	return fmt.Sprintf("invalid transition: %s: %s", e.Op, e.Code)
}

// IsInvalidTransition returns true if err is, or wraps, a TransitionError.
func IsInvalidTransition(err error) bool {
	var te *TransitionError
	return errors.As(err, &te)
}

// TransitionCode extracts the code from a TransitionError, or "" if err is
// not one.
func TransitionCode(err error) TransitionErrorCode {
	var te *TransitionError
	if errors.As(err, &te) {
		return te.Code
	}
	return ""
}
