package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/simkit/internal/trace"
	"github.com/roach88/simkit/internal/westworld"
)

func TestRunWithGolden_FirstMorning(t *testing.T) {
	s := scenarioWithTicks("first_morning", 3,
		Assertion{Type: AssertTraceCount, Match: &EventMatch{Kind: "transition"}, Count: 1},
	)

	result, err := RunWithGolden(t, s, WithRand(calm))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestTraceSnapshot_MarshalCanonical(t *testing.T) {
	snap := TraceSnapshot{
		ScenarioName: "one",
		Trace: []trace.Event{
			{RunID: "ignored", Seq: 1, Tick: 1, Kind: trace.KindSent, Entity: westworld.Elsa,
				Sender: westworld.MinerBob, Receiver: westworld.Elsa, Msg: westworld.MsgHiHoneyImHome},
		},
	}

	data, err := snap.MarshalCanonical()
	require.NoError(t, err)
	assert.Equal(t,
		`{"scenario_name":"one","trace":[{"clock":0,"dispatch_at":0,"entity":2,"kind":"sent","msg":1,"receiver":2,"sender":1,"seq":1,"tick":1}]}`,
		string(data))
}
