package harness

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/simkit/internal/config"
	"github.com/roach88/simkit/internal/trace"
)

// Scenario is one executable test of the Westworld simulation.
type Scenario struct {
	// Name identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario checks.
	Description string `yaml:"description"`

	// Config is the run configuration. Keys left out of the file keep
	// their defaults.
	Config config.Config `yaml:"config"`

	// Assertions are checked after the run, in order.
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion checks the trace or the final state of a run.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Match selects events (trace_contains, trace_count).
	Match *EventMatch `yaml:"match,omitempty"`

	// Events are the patterns that must appear in order (trace_order).
	Events []EventMatch `yaml:"events,omitempty"`

	// Count is the exact number of matching events (trace_count).
	Count int `yaml:"count,omitempty"`

	// Entity is the resident to inspect (final_state).
	Entity int `yaml:"entity,omitempty"`

	// State is the expected current state name (final_state).
	State string `yaml:"state,omitempty"`

	// Expect holds expected resident fields (final_state). Subset match.
	Expect map[string]any `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
)

// EventMatch is a pattern over trace events. Empty or nil fields match
// anything.
type EventMatch struct {
	Kind     string `yaml:"kind,omitempty"`
	Entity   *int   `yaml:"entity,omitempty"`
	From     string `yaml:"from,omitempty"`
	To       string `yaml:"to,omitempty"`
	Sender   *int   `yaml:"sender,omitempty"`
	Receiver *int   `yaml:"receiver,omitempty"`
	Msg      *int   `yaml:"msg,omitempty"`
}

// Matches reports whether ev satisfies every field the pattern names.
func (m EventMatch) Matches(ev trace.Event) bool {
	if m.Kind != "" && string(ev.Kind) != m.Kind {
		return false
	}
	if m.Entity != nil && ev.Entity != *m.Entity {
		return false
	}
	if m.From != "" && ev.From != m.From {
		return false
	}
	if m.To != "" && ev.To != m.To {
		return false
	}
	if m.Sender != nil && ev.Sender != *m.Sender {
		return false
	}
	if m.Receiver != nil && ev.Receiver != *m.Receiver {
		return false
	}
	if m.Msg != nil && ev.Msg != *m.Msg {
		return false
	}
	return true
}

// String renders the named fields, e.g. "kind=delivered entity=1 msg=2".
func (m EventMatch) String() string {
	var parts []string
	if m.Kind != "" {
		parts = append(parts, "kind="+m.Kind)
	}
	if m.Entity != nil {
		parts = append(parts, fmt.Sprintf("entity=%d", *m.Entity))
	}
	if m.From != "" {
		parts = append(parts, "from="+m.From)
	}
	if m.To != "" {
		parts = append(parts, "to="+m.To)
	}
	if m.Sender != nil {
		parts = append(parts, fmt.Sprintf("sender=%d", *m.Sender))
	}
	if m.Receiver != nil {
		parts = append(parts, fmt.Sprintf("receiver=%d", *m.Receiver))
	}
	if m.Msg != nil {
		parts = append(parts, fmt.Sprintf("msg=%d", *m.Msg))
	}
	if len(parts) == 0 {
		return "any event"
	}
	return strings.Join(parts, " ")
}

// LoadScenario reads and parses a scenario YAML file.
// Unknown fields are rejected so typos surface as errors.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	scenario := Scenario{Config: config.Default()}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if err := s.Config.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Match == nil {
			return fmt.Errorf("assertions[%d]: match is required for trace_contains", index)
		}
		if err := validateMatch(a.Match); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
	case AssertTraceOrder:
		if len(a.Events) == 0 {
			return fmt.Errorf("assertions[%d]: events list is required for trace_order", index)
		}
		for j := range a.Events {
			if err := validateMatch(&a.Events[j]); err != nil {
				return fmt.Errorf("assertions[%d].events[%d]: %w", index, j, err)
			}
		}
	case AssertTraceCount:
		if a.Match == nil {
			return fmt.Errorf("assertions[%d]: match is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
		if err := validateMatch(a.Match); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
	case AssertFinalState:
		if a.Entity <= 0 {
			return fmt.Errorf("assertions[%d]: entity is required for final_state", index)
		}
		if a.State == "" && len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: state or expect is required for final_state", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

func validateMatch(m *EventMatch) error {
	if m.Kind == "" {
		return nil
	}
	for _, k := range trace.Kinds {
		if string(k) == m.Kind {
			return nil
		}
	}
	return fmt.Errorf("unknown event kind %q", m.Kind)
}
