package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/simkit/internal/trace"
)

// GoldenDir is where golden traces live, relative to the test package.
const GoldenDir = "testdata/golden"

// TraceSnapshot is the golden form of a run: the scenario name and its
// trace in canonical form.
type TraceSnapshot struct {
	ScenarioName string
	Trace        []trace.Event
}

// MarshalCanonical encodes the snapshot as canonical JSON.
func (s *TraceSnapshot) MarshalCanonical() ([]byte, error) {
	events := make([]any, len(s.Trace))
	for i, ev := range s.Trace {
		events[i] = ev.Canonical()
	}
	return trace.MarshalCanonical(map[string]any{
		"scenario_name": s.ScenarioName,
		"trace":         events,
	})
}

// RunWithGolden executes a scenario and compares its trace against
// testdata/golden/<name>.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario, opts ...RunOption) (*Result, error) {
	t.Helper()

	result, err := Run(scenario, opts...)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result's trace against the golden file
// for scenarioName.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := TraceSnapshot{ScenarioName: scenarioName, Trace: result.Trace}
	data, err := snapshot.MarshalCanonical()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir(GoldenDir),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
