package harness

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/simkit/internal/config"
	"github.com/roach88/simkit/internal/trace"
	"github.com/roach88/simkit/internal/westworld"
)

// fixedRand returns the same draw every time.
type fixedRand struct {
	f float64
	n int
}

func (r fixedRand) Float64() float64 { return r.f }
func (r fixedRand) IntN(int) int     { return r.n }

// calm never sends Elsa to the bathroom.
var calm = fixedRand{f: 0.5}

func scenarioWithTicks(name string, ticks int, assertions ...Assertion) *Scenario {
	cfg := config.Default()
	cfg.Ticks = ticks
	return &Scenario{
		Name:        name,
		Description: name,
		Config:      cfg,
		Assertions:  assertions,
	}
}

func TestRun_TestdataScenarios(t *testing.T) {
	files, err := FindScenarios("testdata/scenarios", "")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, path := range files {
		t.Run(filepath.Base(path), func(t *testing.T) {
			s, err := LoadScenario(path)
			require.NoError(t, err)

			result, err := Run(s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Empty(t, result.Errors)
		})
	}
}

func TestRun_ReportsFailedAssertions(t *testing.T) {
	s := scenarioWithTicks("failing", 2,
		Assertion{Type: AssertTraceCount, Match: &EventMatch{Kind: "tick"}, Count: 3},
		Assertion{Type: AssertFinalState, Entity: westworld.MinerBob, State: "EatStew"},
	)

	result, err := Run(s, WithRand(calm))
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "trace_count")
	assert.Contains(t, result.Errors[1], "final_state")
}

func TestRun_TraceCarriesScenarioRunID(t *testing.T) {
	s := scenarioWithTicks("run_id", 1,
		Assertion{Type: AssertTraceCount, Match: &EventMatch{Kind: "tick"}, Count: 1},
	)

	result, err := Run(s, WithRand(calm))
	require.NoError(t, err)
	require.NotEmpty(t, result.Trace)
	for _, ev := range result.Trace {
		assert.Equal(t, "run_id", ev.RunID)
	}
}

func TestRun_Deterministic(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/stew_round_trip.yaml")
	require.NoError(t, err)

	first, err := Run(s)
	require.NoError(t, err)
	second, err := Run(s)
	require.NoError(t, err)

	d1, err := trace.Digest(first.Trace)
	require.NoError(t, err)
	d2, err := trace.Digest(second.Trace)
	require.NoError(t, err)
	assert.Equal(t, d1, d2)
}

func TestRun_Snapshot(t *testing.T) {
	s := scenarioWithTicks("snapshot", 15,
		Assertion{Type: AssertFinalState, Entity: westworld.MinerBob, State: "GoHomeAndSleepTillRested"},
	)

	result, err := Run(s, WithRand(calm))
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)

	bob := result.State[westworld.MinerBob]
	assert.Equal(t, "GoHomeAndSleepTillRested", bob.State)
	assert.Equal(t, 5, bob.Fields["wealth"])
	assert.Equal(t, "shack", bob.Fields["location"])
	assert.Equal(t, 9, bob.Fields["fatigue"])

	elsa := result.State[westworld.Elsa]
	assert.Equal(t, "CookStew", elsa.State)
	assert.Equal(t, true, elsa.Fields["cooking"])
}

func TestRun_Narrator(t *testing.T) {
	s := scenarioWithTicks("narrated", 1,
		Assertion{Type: AssertTraceCount, Match: &EventMatch{Kind: "tick"}, Count: 1},
	)
	var out bytes.Buffer

	_, err := Run(s, WithRand(calm), WithNarrator(&out))
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Miner Bob: What a God darn fantastic nap!")
}

func TestRun_InvalidConfig(t *testing.T) {
	s := scenarioWithTicks("bad", 1)
	s.Config.TimeStep = -1

	_, err := Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scenario bad")
}
