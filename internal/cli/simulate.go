package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/simkit/internal/config"
	"github.com/roach88/simkit/internal/engine"
	"github.com/roach88/simkit/internal/trace"
	"github.com/roach88/simkit/internal/westworld"
)

// worldRun is a Westworld simulation ready to run, with the recorder every
// command uses to digest the trace.
type worldRun struct {
	sim      *engine.Simulation
	world    *westworld.World
	recorder *trace.Recorder
}

// buildWorld creates the simulation described by cfg and populates it.
// extra options are applied after the config's own and may override them;
// sinks receive every event in addition to the recorder.
func buildWorld(cfg config.Config, runIDs engine.RunIDGenerator, narrator io.Writer, logger *slog.Logger, sinks []trace.Sink, extra ...engine.Option) (*worldRun, error) {
	opts, err := cfg.EngineOptions()
	if err != nil {
		return nil, err
	}

	rec := trace.NewRecorder()
	all := append([]trace.Sink{rec}, sinks...)
	opts = append(opts,
		engine.WithSink(trace.Multi(all...)),
		engine.WithLogger(logger),
		engine.WithRunID(runIDs),
	)
	opts = append(opts, extra...)
	sim := engine.New(opts...)

	world, err := westworld.New(sim, narrator, westworld.NewRand(cfg.Seed),
		westworld.WithStewDelay(cfg.StewDelay))
	if err != nil {
		return nil, fmt.Errorf("build world: %w", err)
	}
	return &worldRun{sim: sim, world: world, recorder: rec}, nil
}

// RunSummary describes a finished (or interrupted) run.
type RunSummary struct {
	RunID   string  `json:"run_id"`
	Ticks   int64   `json:"ticks"`
	Clock   float64 `json:"clock"`
	Events  int     `json:"events"`
	Pending int     `json:"pending"`
	Digest  string  `json:"digest"`
	Wealth  int     `json:"wealth"`
}

func (r *worldRun) summary() (RunSummary, error) {
	events := r.recorder.Events()
	digest, err := trace.Digest(events)
	if err != nil {
		return RunSummary{}, err
	}
	return RunSummary{
		RunID:   r.sim.RunID(),
		Ticks:   r.sim.Ticks(),
		Clock:   r.sim.Now(),
		Events:  len(events),
		Pending: r.sim.Dispatcher().Pending(),
		Digest:  digest,
		Wealth:  r.world.Miner.Wealth,
	}, nil
}
