package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/simkit/internal/store"
	"github.com/roach88/simkit/internal/trace"
	"github.com/roach88/simkit/internal/westworld"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	RunID    string // optional - list runs when empty
	Kind     string // optional - filter to one event kind
	Entity   int    // optional - filter to one entity, 0 for all
}

// RunInfo is one line of the run listing.
type RunInfo struct {
	ID     string `json:"id"`
	Seed   uint64 `json:"seed"`
	Events int    `json:"events"`
	Config string `json:"config"`
}

// TraceResult holds the timeline of one run.
type TraceResult struct {
	RunID    string        `json:"run_id"`
	Timeline []trace.Event `json:"timeline"`
	Stats    TraceStats    `json:"stats"`
}

// TraceStats counts the timeline's events by kind.
type TraceStats struct {
	TotalEvents int                `json:"total_events"`
	Ticks       int64              `json:"ticks"`
	ByKind      map[trace.Kind]int `json:"by_kind"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show journaled runs and their timelines",
		Long: `Show what a journaled run did.

Without --run, lists every run in the database. With --run, prints the
run's timeline: ticks, state transitions and telegram traffic, in the
order they happened.

Examples:
  simkit trace --db ./runs.db
  simkit trace --db ./runs.db --run 0190f3c2-...
  simkit trace --db ./runs.db --run 0190f3c2-... --kind transition --entity 1
  simkit trace --db ./runs.db --run 0190f3c2-... --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run id to show")
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "only show events of this kind")
	cmd.Flags().IntVar(&opts.Entity, "entity", 0, "only show events about this entity")

	return cmd
}

// openExisting opens a database that must already exist. store.Open would
// silently create an empty one.
func openExisting(path string) (*store.Store, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, NewExitError(ExitCommandError, fmt.Sprintf("database not found: %s", path))
		}
		return nil, WrapExitError(ExitCommandError, "failed to stat database", err)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

	kind := trace.Kind(opts.Kind)
	if kind != "" && !slices.Contains(trace.Kinds, kind) {
		return NewExitError(ExitCommandError, fmt.Sprintf("unknown event kind %q: must be one of %v", opts.Kind, trace.Kinds))
	}

	st, err := openExisting(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	if opts.RunID == "" {
		return listRuns(ctx, st, out)
	}

	if _, err := st.ReadRun(ctx, opts.RunID); err != nil {
		if errors.Is(err, store.ErrRunNotFound) {
			return WrapExitError(ExitCommandError, "unknown run", err)
		}
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	events, err := st.ReadEvents(ctx, opts.RunID, kind)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read events", err)
	}

	result := TraceResult{
		RunID:    opts.RunID,
		Timeline: filterEntity(events, opts.Entity),
		Stats:    TraceStats{ByKind: make(map[trace.Kind]int)},
	}
	for _, ev := range result.Timeline {
		result.Stats.ByKind[ev.Kind]++
		if ev.Tick > result.Stats.Ticks {
			result.Stats.Ticks = ev.Tick
		}
	}
	result.Stats.TotalEvents = len(result.Timeline)

	return out.Result(opts.RunID, result, func(w io.Writer) {
		outputTraceText(w, result)
	})
}

func listRuns(ctx context.Context, st *store.Store, out *OutputFormatter) error {
	runs, err := st.ListRuns(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	infos := make([]RunInfo, len(runs))
	for i, r := range runs {
		infos[i] = RunInfo{ID: r.ID, Seed: r.Seed, Events: r.Events, Config: r.Config}
	}

	return out.Result("", infos, func(w io.Writer) {
		if len(infos) == 0 {
			fmt.Fprintln(w, "No runs found in database.")
			return
		}
		fmt.Fprintf(w, "%-36s  %10s  %8s\n", "RUN", "SEED", "EVENTS")
		for _, r := range infos {
			fmt.Fprintf(w, "%-36s  %10d  %8d\n", r.ID, r.Seed, r.Events)
		}
	})
}

func filterEntity(events []trace.Event, entity int) []trace.Event {
	if entity == 0 {
		return events
	}
	out := []trace.Event{}
	for _, ev := range events {
		if ev.Entity == entity || ev.Sender == entity {
			out = append(out, ev)
		}
	}
	return out
}

func outputTraceText(w io.Writer, result TraceResult) {
	fmt.Fprintf(w, "Run: %s\n\n", result.RunID)
	if len(result.Timeline) == 0 {
		fmt.Fprintln(w, "No events.")
		return
	}

	for _, ev := range result.Timeline {
		fmt.Fprintln(w, describeEvent(ev))
	}

	fmt.Fprintf(w, "\n%d events over %d ticks", result.Stats.TotalEvents, result.Stats.Ticks)
	for _, k := range trace.Kinds {
		if n := result.Stats.ByKind[k]; n > 0 {
			fmt.Fprintf(w, ", %s=%d", k, n)
		}
	}
	fmt.Fprintln(w)
}

// describeEvent renders one timeline line with resident names.
func describeEvent(ev trace.Event) string {
	head := fmt.Sprintf("[%4d] tick %-4d t=%-8g", ev.Seq, ev.Tick, ev.Clock)
	switch ev.Kind {
	case trace.KindTick:
		return head + " tick"
	case trace.KindTransition:
		return fmt.Sprintf("%s %s: %s -> %s", head, westworld.NameOf(ev.Entity), ev.From, ev.To)
	case trace.KindScheduled, trace.KindSuppressed:
		return fmt.Sprintf("%s %s %s -> %s msg %d for t=%g", head, ev.Kind,
			westworld.NameOf(ev.Sender), westworld.NameOf(ev.Receiver), ev.Msg, ev.DispatchAt)
	default:
		return fmt.Sprintf("%s %s %s -> %s msg %d", head, ev.Kind,
			westworld.NameOf(ev.Sender), westworld.NameOf(ev.Receiver), ev.Msg)
	}
}
