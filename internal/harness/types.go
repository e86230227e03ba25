package harness

import "github.com/roach88/simkit/internal/trace"

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	// Trace is every event the run emitted, in seq order.
	Trace []trace.Event `json:"trace"`

	// Errors holds one message per failed assertion.
	Errors []string `json:"errors,omitempty"`

	// State is the final snapshot of each resident, keyed by entity id.
	State map[int]EntityState `json:"state,omitempty"`
}

// EntityState is the observable end state of one resident.
type EntityState struct {
	// State is the name of the current state.
	State string `json:"state"`

	// Fields holds the resident's public counters, by snake_case name.
	Fields map[string]any `json:"fields"`
}

// NewResult creates a passing result with no trace.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []trace.Event{},
		Errors: []string{},
		State:  make(map[int]EntityState),
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
