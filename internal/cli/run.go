package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/simkit/internal/config"
	"github.com/roach88/simkit/internal/engine"
	"github.com/roach88/simkit/internal/metric"
	"github.com/roach88/simkit/internal/store"
	"github.com/roach88/simkit/internal/trace"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	ConfigPath  string
	Ticks       int
	Seed        uint64
	Database    string
	Interval    string
	Realtime    bool
	MetricsAddr string
	Quiet       bool

	// RunIDs overrides the run id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDs engine.RunIDGenerator
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{RootOptions: rootOpts})
}

func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the Westworld simulation",
		Long: `Run the Westworld simulation for a number of ticks.

Settings come from --config (YAML or CUE) when given, otherwise from the
defaults; flags override both. With --db every trace event is journaled
to SQLite so the run can be inspected with "trace" and checked with
"replay". With --metrics-addr Prometheus metrics are served while the
simulation runs.

Examples:
  simkit run
  simkit run --ticks 100 --seed 42 --db ./runs.db
  simkit run --config ./westworld.yaml --interval 800ms
  simkit run --realtime --metrics-addr :9090 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to a .yaml or .cue config file")
	cmd.Flags().IntVar(&opts.Ticks, "ticks", config.DefaultTicks, "number of ticks to run")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", config.DefaultSeed, "random seed")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database for the journal")
	cmd.Flags().StringVar(&opts.Interval, "interval", "", "real time between ticks (e.g. 800ms)")
	cmd.Flags().BoolVar(&opts.Realtime, "realtime", false, "drive the dispatcher from the wall clock")
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "do not print the residents' speech")

	return cmd
}

// effectiveConfig loads the config file, if any, and applies the flags
// the user set explicitly.
func (opts *RunOptions) effectiveConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("ticks") {
		cfg.Ticks = opts.Ticks
	}
	if flags.Changed("seed") {
		cfg.Seed = opts.Seed
	}
	if flags.Changed("db") {
		cfg.Database = opts.Database
	}
	if flags.Changed("interval") {
		cfg.Interval = opts.Interval
	}
	if flags.Changed("realtime") {
		cfg.Realtime = opts.Realtime
	}
	if flags.Changed("metrics-addr") {
		cfg.MetricsAddr = opts.MetricsAddr
	}
	return cfg, cfg.Validate()
}

func runSimulation(opts *RunOptions, cmd *cobra.Command) error {
	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)

	cfg, err := opts.effectiveConfig(cmd)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, stopping after the current tick", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	runIDs := opts.RunIDs
	if runIDs == nil {
		runIDs = engine.UUIDv7Generator{}
	}
	runID := runIDs.Generate()

	var sinks []trace.Sink
	var extra []engine.Option
	if cfg.Realtime {
		extra = append(extra, engine.WithClock(engine.NewWallClock()))
	}

	var journal *store.Journal
	if cfg.Database != "" {
		logger.Info("opening database", "path", cfg.Database)
		st, err := store.Open(cfg.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()
		if err := st.WriteRun(ctx, runID, cfg.Seed, cfg); err != nil {
			return WrapExitError(ExitCommandError, "failed to record run", err)
		}
		journal = store.NewJournal(ctx, st, logger)
		sinks = append(sinks, journal)
	}

	var metrics *metric.Metrics
	if cfg.MetricsAddr != "" {
		metrics = metric.New()
		sinks = append(sinks, metrics)
	}

	var narrator io.Writer = cmd.OutOrStdout()
	if opts.Quiet || out.IsJSON() {
		narrator = io.Discard
	}

	run, err := buildWorld(cfg, fixedID(runID), narrator, logger, sinks, extra...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build simulation", err)
	}

	if metrics != nil {
		if err := serveMetrics(ctx, cfg.MetricsAddr, metrics, run.sim, logger); err != nil {
			return WrapExitError(ExitCommandError, "failed to start metrics server", err)
		}
	}

	runErr := run.sim.Run(ctx, cfg.Ticks)
	interrupted := errors.Is(runErr, context.Canceled)
	if runErr != nil && !interrupted {
		return WrapExitError(ExitFailure, "simulation failed", runErr)
	}

	if journal != nil {
		if err := journal.Err(); err != nil {
			return WrapExitError(ExitFailure, "journal incomplete", err)
		}
		logger.Debug("journal written", "events", journal.Written())
	}

	summary, err := run.summary()
	if err != nil {
		return WrapExitError(ExitFailure, "failed to digest trace", err)
	}

	return out.Result(summary.RunID, summary, func(w io.Writer) {
		fmt.Fprintln(w)
		if interrupted {
			fmt.Fprintf(w, "Run %s interrupted after %d ticks\n", summary.RunID, summary.Ticks)
		} else {
			fmt.Fprintf(w, "Run %s finished after %d ticks\n", summary.RunID, summary.Ticks)
		}
		fmt.Fprintf(w, "  clock:   %g\n", summary.Clock)
		fmt.Fprintf(w, "  events:  %d\n", summary.Events)
		fmt.Fprintf(w, "  pending: %d\n", summary.Pending)
		fmt.Fprintf(w, "  digest:  %s\n", summary.Digest)
	})
}

// serveMetrics starts the metrics server in the background. It stops when
// ctx is cancelled.
func serveMetrics(ctx context.Context, addr string, m *metric.Metrics, sim *engine.Simulation, logger *slog.Logger) error {
	if err := m.TrackQueueDepth(sim.Dispatcher().Pending); err != nil {
		return err
	}
	srv, err := metric.Listen(addr, m, logger)
	if err != nil {
		return err
	}
	go func() {
		if err := srv.Serve(ctx); err != nil {
			logger.Error("metrics server stopped", "error", err)
		}
	}()
	return nil
}

// fixedID hands out one id that was generated up front, so the journal
// row and the trace agree.
type fixedID string

func (id fixedID) Generate() string { return string(id) }
