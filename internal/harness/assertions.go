package harness

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/simkit/internal/trace"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []trace.Event
}

// maxTraceLines caps how much of the trace an AssertionError prints.
const maxTraceLines = 50

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nTrace:\n")
		for i, ev := range e.Trace {
			if i == maxTraceLines {
				fmt.Fprintf(&buf, "  ... %d more\n", len(e.Trace)-i)
				break
			}
			fmt.Fprintf(&buf, "  %s\n", formatEvent(ev))
		}
	}
	return buf.String()
}

// formatEvent renders one event on a single line.
func formatEvent(ev trace.Event) string {
	head := fmt.Sprintf("[%d] tick=%d clock=%g %s", ev.Seq, ev.Tick, ev.Clock, ev.Kind)
	switch ev.Kind {
	case trace.KindTransition:
		return fmt.Sprintf("%s entity=%d %s -> %s", head, ev.Entity, ev.From, ev.To)
	case trace.KindTick:
		return head
	default:
		return fmt.Sprintf("%s %d -> %d msg=%d at=%g", head, ev.Sender, ev.Receiver, ev.Msg, ev.DispatchAt)
	}
}

func assertTraceContains(events []trace.Event, a Assertion) error {
	for _, ev := range events {
		if a.Match.Matches(ev) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: a.Match.String(),
		Actual:   "not found in trace",
		Trace:    events,
	}
}

// assertTraceOrder checks that the first match of each pattern comes
// after the first match of the one before it. Other events may sit in
// between.
func assertTraceOrder(events []trace.Event, a Assertion) error {
	positions := make([]int, len(a.Events))
	for i, m := range a.Events {
		positions[i] = -1
		for j, ev := range events {
			if m.Matches(ev) {
				positions[i] = j
				break
			}
		}
		if positions[i] < 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("all patterns present: %s", joinMatches(a.Events)),
				Actual:   fmt.Sprintf("missing: %s", m),
				Trace:    events,
			}
		}
	}

	for i := 1; i < len(positions); i++ {
		if positions[i-1] >= positions[i] {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("in order: %s", joinMatches(a.Events)),
				Actual: fmt.Sprintf("%s (seq %d) should be before %s (seq %d)",
					a.Events[i-1], events[positions[i-1]].Seq, a.Events[i], events[positions[i]].Seq),
				Trace: events,
			}
		}
	}
	return nil
}

func assertTraceCount(events []trace.Event, a Assertion) error {
	count := 0
	for _, ev := range events {
		if a.Match.Matches(ev) {
			count++
		}
	}
	if count != a.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", a.Count, a.Match),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    events,
		}
	}
	return nil
}

// assertFinalState checks the entity's current state and its fields with
// subset semantics.
func assertFinalState(state map[int]EntityState, a Assertion) error {
	es, ok := state[a.Entity]
	if !ok {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("entity %d to exist", a.Entity),
			Actual:   "no such entity",
		}
	}

	if a.State != "" && es.State != a.State {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("entity %d in state %s", a.Entity, a.State),
			Actual:   fmt.Sprintf("entity %d in state %s", a.Entity, es.State),
		}
	}

	keys := make([]string, 0, len(a.Expect))
	for k := range a.Expect {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		expected := a.Expect[key]
		actual, exists := es.Fields[key]
		if !exists {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("field %q to exist", key),
				Actual:   fmt.Sprintf("entity %d has fields %v", a.Entity, fieldNames(es.Fields)),
			}
		}
		if !stateValuesEqual(expected, actual) {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("field %q = %v (type %T)", key, expected, expected),
				Actual:   fmt.Sprintf("field %q = %v (type %T)", key, actual, actual),
			}
		}
	}
	return nil
}

// stateValuesEqual compares a value decoded from YAML with a snapshot
// value. YAML integers decode as int, snapshot counters are int, and
// locations are compared by name.
func stateValuesEqual(expected, actual any) bool {
	if expected == nil || actual == nil {
		return expected == nil && actual == nil
	}

	switch exp := expected.(type) {
	case int:
		switch act := actual.(type) {
		case int:
			return exp == act
		case int64:
			return int64(exp) == act
		case float64:
			return float64(exp) == act
		}
		return false
	case float64:
		switch act := actual.(type) {
		case float64:
			return exp == act
		case int:
			return exp == float64(act)
		}
		return false
	case bool:
		act, ok := actual.(bool)
		return ok && exp == act
	case string:
		if s, ok := actual.(fmt.Stringer); ok {
			return exp == s.String()
		}
		act, ok := actual.(string)
		return ok && exp == act
	}
	return fmt.Sprint(expected) == fmt.Sprint(actual)
}

func fieldNames(fields map[string]any) []string {
	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func joinMatches(ms []EventMatch) string {
	parts := make([]string, len(ms))
	for i, m := range ms {
		parts[i] = "(" + m.String() + ")"
	}
	return strings.Join(parts, ", ")
}

// EvaluateAssertions evaluates all assertions against the result and
// returns one message per failure.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, a := range assertions {
		var err error

		switch a.Type {
		case AssertTraceContains, AssertTraceCount:
			if a.Match == nil {
				err = fmt.Errorf("assertion[%d]: %s requires match", i, a.Type)
			} else if a.Type == AssertTraceContains {
				err = assertTraceContains(result.Trace, a)
			} else {
				err = assertTraceCount(result.Trace, a)
			}
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, a)
		case AssertFinalState:
			err = assertFinalState(result.State, a)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, a.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}
	return errors
}
