package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/simkit/internal/config"
	"github.com/roach88/simkit/internal/engine"
	"github.com/roach88/simkit/internal/store"
	"github.com/roach88/simkit/internal/trace"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	RunID    string // optional - specific run only
}

// ReplayRunResult is the verdict for a single run.
type ReplayRunResult struct {
	RunID          string `json:"run_id"`
	Ticks          int64  `json:"ticks"`
	Events         int    `json:"events"`
	ReplayedEvents int    `json:"replayed_events"`
	Digest         string `json:"digest"`
	ReplayDigest   string `json:"replay_digest,omitempty"`
	Deterministic  bool   `json:"deterministic"`
	Skipped        string `json:"skipped,omitempty"`

	// FirstDivergence is the seq of the first event that differs.
	FirstDivergence int64 `json:"first_divergence,omitempty"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Runs             []ReplayRunResult `json:"runs"`
	TotalRuns        int               `json:"total_runs"`
	AllDeterministic bool              `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-run journaled runs and verify determinism",
		Long: `Re-run journaled runs from their stored seed and configuration and
compare the new trace with the journal.

A run replays deterministically when both traces have the same digest.
Runs driven by the wall clock (--realtime) cannot be reproduced and are
skipped.

Exit codes:
  0 - All runs replayed identically
  1 - At least one run diverged
  2 - Command error (database not found, unknown run, etc.)

Examples:
  simkit replay --db ./runs.db
  simkit replay --db ./runs.db --run 0190f3c2-...
  simkit replay --db ./runs.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "replay specific run only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)

	st, err := openExisting(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	var runs []store.Run
	if opts.RunID != "" {
		run, err := st.ReadRun(ctx, opts.RunID)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read run", err)
		}
		runs = []store.Run{run}
	} else {
		runs, err = st.ListRuns(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list runs", err)
		}
	}

	result := ReplayResult{
		Runs:             make([]ReplayRunResult, 0, len(runs)),
		TotalRuns:        len(runs),
		AllDeterministic: true,
	}

	for _, run := range runs {
		rr, err := replayRun(ctx, st, run)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay run %s", run.ID), err)
		}
		if !rr.Deterministic && rr.Skipped == "" {
			result.AllDeterministic = false
		}
		logger.Debug("run replayed",
			"run_id", rr.RunID,
			"deterministic", rr.Deterministic,
			"events", rr.Events,
			"replayed", rr.ReplayedEvents)
		result.Runs = append(result.Runs, rr)
	}

	text := func(w io.Writer) { outputReplayText(w, result) }
	if !result.AllDeterministic {
		if err := out.Failure(CodeDiverged, "replay diverged from the journal", result, text); err != nil {
			return err
		}
		return NewExitError(ExitFailure, "determinism verification failed")
	}
	return out.Result("", result, text)
}

// replayRun re-runs one journaled run and compares traces.
func replayRun(ctx context.Context, st *store.Store, run store.Run) (ReplayRunResult, error) {
	rr := ReplayRunResult{RunID: run.ID}

	cfg := config.Default()
	if err := store.UnmarshalConfig(run.Config, &cfg); err != nil {
		return rr, err
	}

	stored, err := st.ReadEvents(ctx, run.ID, "")
	if err != nil {
		return rr, err
	}
	rr.Events = len(stored)
	rr.Digest, err = trace.Digest(stored)
	if err != nil {
		return rr, err
	}

	if cfg.Realtime {
		rr.Skipped = "driven by the wall clock"
		return rr, nil
	}

	// An interrupted run journaled fewer ticks than configured.
	ticks := len(trace.Filter(stored, trace.KindTick))
	rr.Ticks = int64(ticks)

	w, err := buildWorld(cfg, fixedID(run.ID), io.Discard, discardLogger(), nil,
		engine.WithInterval(0))
	if err != nil {
		return rr, err
	}
	if err := w.sim.Run(ctx, ticks); err != nil {
		return rr, err
	}

	replayed := w.recorder.Events()
	rr.ReplayedEvents = len(replayed)
	rr.ReplayDigest, err = trace.Digest(replayed)
	if err != nil {
		return rr, err
	}
	rr.Deterministic = rr.Digest == rr.ReplayDigest
	if !rr.Deterministic {
		rr.FirstDivergence = firstDivergence(stored, replayed)
	}
	return rr, nil
}

// firstDivergence returns the seq of the first event that differs between
// the two traces, ignoring run ids.
func firstDivergence(a, b []trace.Event) int64 {
	for i := 0; i < len(a) && i < len(b); i++ {
		x, y := a[i], b[i]
		x.RunID, y.RunID = "", ""
		if x != y {
			return x.Seq
		}
	}
	if len(a) < len(b) {
		return b[len(a)].Seq
	}
	if len(b) < len(a) {
		return a[len(b)].Seq
	}
	return 0
}

func outputReplayText(w io.Writer, result ReplayResult) {
	if result.TotalRuns == 0 {
		fmt.Fprintln(w, "No runs found in database.")
		return
	}

	for _, rr := range result.Runs {
		switch {
		case rr.Skipped != "":
			fmt.Fprintf(w, "- %s skipped (%s)\n", rr.RunID, rr.Skipped)
		case rr.Deterministic:
			fmt.Fprintf(w, "✓ %s: %d events over %d ticks\n", rr.RunID, rr.Events, rr.Ticks)
		default:
			fmt.Fprintf(w, "✗ %s: diverged at seq %d (%d journaled, %d replayed)\n",
				rr.RunID, rr.FirstDivergence, rr.Events, rr.ReplayedEvents)
		}
	}

	fmt.Fprintln(w)
	if result.AllDeterministic {
		fmt.Fprintf(w, "All %d runs replayed deterministically\n", result.TotalRuns)
	} else {
		fmt.Fprintln(w, "Determinism verification FAILED")
	}
}
