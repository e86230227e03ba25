package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/simkit/internal/engine"
	"github.com/roach88/simkit/internal/testutil"
	"github.com/roach88/simkit/internal/trace"
	"github.com/roach88/simkit/internal/westworld"
)

// RunOption adjusts how Run executes a scenario.
type RunOption func(*runOptions)

type runOptions struct {
	rng      westworld.Rand
	narrator io.Writer
	logger   *slog.Logger
}

// WithRand replaces the seeded random source. Tests use it to pin Elsa's
// choices.
func WithRand(r westworld.Rand) RunOption {
	return func(o *runOptions) { o.rng = r }
}

// WithNarrator sends the residents' speech to w instead of discarding it.
func WithNarrator(w io.Writer) RunOption {
	return func(o *runOptions) { o.narrator = w }
}

// WithLogger sets the simulation logger. Logs are discarded by default.
func WithLogger(l *slog.Logger) RunOption {
	return func(o *runOptions) { o.logger = l }
}

// Run executes a scenario and returns the result.
//
// Each run gets a fresh simulation on the simulation clock with a run id
// fixed to the scenario name. An error means the simulation itself failed;
// assertion failures are reported in the result.
func Run(scenario *Scenario, opts ...RunOption) (*Result, error) {
	return RunContext(context.Background(), scenario, opts...)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario, opts ...RunOption) (*Result, error) {
	o := runOptions{
		narrator: io.Discard,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}
	cfg := scenario.Config
	if o.rng == nil {
		o.rng = westworld.NewRand(cfg.Seed)
	}

	engineOpts, err := cfg.EngineOptions()
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	rec := trace.NewRecorder()
	engineOpts = append(engineOpts,
		engine.WithSink(rec),
		engine.WithLogger(o.logger),
		engine.WithRunID(testutil.NewFixedRunID(scenario.Name)),
		// Scenarios never wait in real time.
		engine.WithInterval(0),
	)
	sim := engine.New(engineOpts...)

	world, err := westworld.New(sim, o.narrator, o.rng, westworld.WithStewDelay(cfg.StewDelay))
	if err != nil {
		return nil, fmt.Errorf("scenario %s: build world: %w", scenario.Name, err)
	}

	if err := sim.Run(ctx, cfg.Ticks); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	result := NewResult()
	result.Trace = rec.Events()
	result.State = Snapshot(world)

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	o.logger.Info("scenario finished",
		"scenario", scenario.Name,
		"events", len(result.Trace),
		"pass", result.Pass)
	return result, nil
}

// Snapshot captures the observable state of both residents.
func Snapshot(w *westworld.World) map[int]EntityState {
	bob, elsa := w.Miner, w.Wife
	return map[int]EntityState{
		bob.ID(): {
			State: bob.FSM().String(),
			Fields: map[string]any{
				"location":     bob.Location.String(),
				"gold_carried": bob.GoldCarried,
				"wealth":       bob.Wealth,
				"thirst":       bob.Thirst(),
				"fatigue":      bob.Fatigue(),
			},
		},
		elsa.ID(): {
			State: elsa.FSM().String(),
			Fields: map[string]any{
				"location": elsa.Location.String(),
				"cooking":  elsa.Cooking,
			},
		},
	}
}
