package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/simkit/internal/trace"
)

func replayCommand(t *testing.T, format string, args ...string) (*bytes.Buffer, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewReplayCommand(&RootOptions{Format: format})
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	return out, cmd.Execute()
}

func TestReplay_MissingDatabaseFlag(t *testing.T) {
	_, err := replayCommand(t, "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestReplay_EmptyDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	st, err := openOrCreate(t, dbPath)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, err := replayCommand(t, "text", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "No runs found")
}

func TestReplay_Deterministic(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	recordRun(t, dbPath, "short", "5")
	recordRun(t, dbPath, "long", "40")

	out, err := replayCommand(t, "json", "--db", dbPath)
	require.NoError(t, err)

	var result ReplayResult
	resp := decodeData(t, out.Bytes(), &result)
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, result.AllDeterministic)
	require.Len(t, result.Runs, 2)
	for _, rr := range result.Runs {
		assert.True(t, rr.Deterministic, rr.RunID)
		assert.Equal(t, rr.Digest, rr.ReplayDigest)
		assert.Equal(t, rr.Events, rr.ReplayedEvents)
	}
	assert.Equal(t, int64(5), result.Runs[0].Ticks)
	assert.Equal(t, int64(40), result.Runs[1].Ticks)
}

func TestReplay_SingleRunText(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	recordRun(t, dbPath, "only", "20")

	out, err := replayCommand(t, "text", "--db", dbPath, "--run", "only")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "✓ only")
	assert.Contains(t, out.String(), "All 1 runs replayed deterministically")
}

func TestReplay_DetectsTamperedJournal(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	recordRun(t, dbPath, "tampered", "20")

	st, err := openOrCreate(t, dbPath)
	require.NoError(t, err)
	_, err = st.DB().Exec(`UPDATE events SET to_state = 'QuenchThirst' WHERE run_id = ? AND seq = 2`, "tampered")
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, err := replayCommand(t, "text", "--db", dbPath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out.String(), "✗ tampered: diverged at seq 2")
	assert.Contains(t, out.String(), "Determinism verification FAILED")
}

func TestReplay_SkipsRealtimeRuns(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	_, err := runCommand(t, "wall", "--db", dbPath, "--ticks", "2", "--quiet", "--realtime")
	require.NoError(t, err)

	out, err := replayCommand(t, "json", "--db", dbPath)
	require.NoError(t, err)

	var result ReplayResult
	decodeData(t, out.Bytes(), &result)
	require.Len(t, result.Runs, 1)
	assert.NotEmpty(t, result.Runs[0].Skipped)
	assert.True(t, result.AllDeterministic)
}

func TestReplay_UnknownRun(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	recordRun(t, dbPath, "day", "2")

	_, err := replayCommand(t, "text", "--db", dbPath, "--run", "night")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestFirstDivergence(t *testing.T) {
	a := []trace.Event{
		{RunID: "a", Seq: 1, Kind: trace.KindTick},
		{RunID: "a", Seq: 2, Kind: trace.KindTransition, To: "X"},
	}
	same := []trace.Event{
		{RunID: "b", Seq: 1, Kind: trace.KindTick},
		{RunID: "b", Seq: 2, Kind: trace.KindTransition, To: "X"},
	}
	changed := []trace.Event{
		{Seq: 1, Kind: trace.KindTick},
		{Seq: 2, Kind: trace.KindTransition, To: "Y"},
	}

	assert.Equal(t, int64(0), firstDivergence(a, same), "run ids are ignored")
	assert.Equal(t, int64(2), firstDivergence(a, changed))
	assert.Equal(t, int64(2), firstDivergence(a, a[:1]))
	assert.Equal(t, int64(2), firstDivergence(a[:1], a))
}
