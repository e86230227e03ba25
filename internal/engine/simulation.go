package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/roach88/simkit/internal/entity"
	"github.com/roach88/simkit/internal/fsm"
	"github.com/roach88/simkit/internal/trace"
)

// Defaults for a new Simulation.
const (
	DefaultTimeStep   = 1.0
	DefaultFlushEvery = 1
)

// Simulation is the context every collaborator of one run hangs off: the
// id allocator, the entity registry, the dispatcher, the clocks and the
// trace sink.
//
// Thread-safety model:
//   - Tick() and Run(): must be called from exactly one goroutine
//   - Register(), Emit(), Send(): safe from any goroutine
//
// INVARIANTS:
//   - Entities are updated in registration order, every tick
//   - Trace seq numbers are strictly increasing
//   - The simulation clock never moves backwards
type Simulation struct {
	ids        *entity.IDAllocator
	registry   *entity.Registry
	dispatcher *Dispatcher

	clock TimeSource
	seq   *Clock
	ticks atomic.Int64

	runID    string
	sink     trace.Sink
	logger   *slog.Logger
	dispatch DispatcherConfig

	timeStep   float64
	flushEvery int
	interval   time.Duration
}

// Option configures a Simulation.
type Option func(*Simulation)

// WithClock sets the simulation time source. Default: a SimClock at 0.
func WithClock(c TimeSource) Option {
	return func(s *Simulation) { s.clock = c }
}

// WithDedup sets the duplicate-suppression policy of the delay queue.
func WithDedup(p DedupPolicy) Option {
	return func(s *Simulation) { s.dispatch.Dedup = p }
}

// WithTolerance sets the dispatch-time tolerance of DedupTolerance.
func WithTolerance(tol float64) Option {
	return func(s *Simulation) { s.dispatch.Tolerance = tol }
}

// WithMaxDepth bounds nested synchronous sends.
func WithMaxDepth(n int) Option {
	return func(s *Simulation) { s.dispatch.MaxDepth = n }
}

// WithTimeStep sets how far the clock advances per tick, when the clock is
// an Advancer.
func WithTimeStep(step float64) Option {
	return func(s *Simulation) { s.timeStep = step }
}

// WithFlushEvery flushes due telegrams every n ticks. Zero disables
// automatic flushing; the caller then drives Dispatcher().FlushDue itself.
func WithFlushEvery(n int) Option {
	return func(s *Simulation) { s.flushEvery = n }
}

// WithSink sets where trace events go. Default: trace.Discard.
func WithSink(sink trace.Sink) Option {
	return func(s *Simulation) { s.sink = sink }
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Simulation) { s.logger = l }
}

// WithRunID sets the run id generator. Default: UUIDv7Generator.
func WithRunID(gen RunIDGenerator) Option {
	return func(s *Simulation) { s.runID = gen.Generate() }
}

// WithInterval makes Run wait d of real time between ticks.
func WithInterval(d time.Duration) Option {
	return func(s *Simulation) { s.interval = d }
}

// New creates a simulation with no entities.
func New(opts ...Option) *Simulation {
	s := &Simulation{
		ids:        entity.NewIDAllocator(),
		registry:   entity.NewRegistry(),
		seq:        NewClock(),
		sink:       trace.Discard,
		logger:     slog.Default(),
		timeStep:   DefaultTimeStep,
		flushEvery: DefaultFlushEvery,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.clock == nil {
		s.clock = NewSimClock()
	}
	if s.runID == "" {
		s.runID = UUIDv7Generator{}.Generate()
	}
	if s.sink == nil {
		s.sink = trace.Discard
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	cfg := s.dispatch
	cfg.Sink = trace.SinkFunc(s.Emit)
	cfg.Logger = s.logger
	s.dispatcher = NewDispatcher(s.registry, s.clock, cfg)
	return s
}

// IDs returns the id allocator entities claim their ids from.
func (s *Simulation) IDs() *entity.IDAllocator { return s.ids }

// Registry returns the entity registry.
func (s *Simulation) Registry() *entity.Registry { return s.registry }

// Dispatcher returns the message dispatcher.
func (s *Simulation) Dispatcher() *Dispatcher { return s.dispatcher }

// Logger returns the simulation logger.
func (s *Simulation) Logger() *slog.Logger { return s.logger }

// RunID returns the id stamped on every trace event of this run.
func (s *Simulation) RunID() string { return s.runID }

// Now returns the simulation clock reading.
func (s *Simulation) Now() float64 { return s.clock.Now() }

// Ticks returns the number of ticks started so far.
func (s *Simulation) Ticks() int64 { return s.ticks.Load() }

// Register adds e to the registry.
func (s *Simulation) Register(e entity.Entity) error {
	if err := s.registry.Register(e); err != nil {
		return err
	}
	s.logger.Debug("entity registered", "id", e.ID(), "type", e.Type())
	return nil
}

// Send is shorthand for Dispatcher().Send.
func (s *Simulation) Send(delay float64, sender, receiver, msg int, payload any) error {
	return s.dispatcher.Send(delay, sender, receiver, msg, payload)
}

// Emit stamps ev with the run id, the next seq, the current tick and the
// clock reading, and passes it to the sink.
func (s *Simulation) Emit(ev trace.Event) {
	ev.RunID = s.runID
	ev.Seq = s.seq.Next()
	ev.Tick = s.ticks.Load()
	ev.Clock = s.clock.Now()
	s.sink.Record(ev)
}

// Tick runs one step of the driver:
//  1. emit a tick event
//  2. Update every entity, in registration order
//  3. flush due telegrams, every flushEvery ticks
//  4. advance the clock by the time step
//
// The first failure aborts the tick and is returned as a *TickError.
func (s *Simulation) Tick(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	n := s.ticks.Add(1)
	s.Emit(trace.Event{Kind: trace.KindTick})

	for _, e := range s.registry.All() {
		if err := e.Update(); err != nil {
			return &TickError{Tick: n, Phase: phaseUpdate, EntityID: e.ID(), Err: err}
		}
	}

	if s.flushEvery > 0 && n%int64(s.flushEvery) == 0 {
		delivered, err := s.dispatcher.FlushDue()
		if err != nil {
			return &TickError{Tick: n, Phase: phaseFlush, Err: err}
		}
		if delivered > 0 {
			s.logger.Debug("flushed delayed telegrams", "tick", n, "delivered", delivered)
		}
	}

	if adv, ok := s.clock.(Advancer); ok {
		adv.Advance(s.timeStep)
	}
	return nil
}

// Run performs ticks steps, waiting the configured interval between them.
// Cancellation is checked between ticks only.
func (s *Simulation) Run(ctx context.Context, ticks int) error {
	s.logger.Info("simulation started",
		"run_id", s.runID,
		"ticks", ticks,
		"entities", s.registry.Len())

	for i := 0; i < ticks; i++ {
		if err := s.Tick(ctx); err != nil {
			s.logger.Error("simulation stopped", "run_id", s.runID, "tick", s.Ticks(), "error", err)
			return err
		}

		if s.interval > 0 && i < ticks-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.interval):
			}
		}
	}

	s.logger.Info("simulation finished",
		"run_id", s.runID,
		"ticks", s.Ticks(),
		"clock", s.Now(),
		"pending", s.dispatcher.Pending())
	return nil
}

// ObserveTransitions records every completed transition of m as a trace
// event attributed to entityID.
func ObserveTransitions[E any](s *Simulation, m *fsm.Machine[E], entityID int) {
	m.OnTransition(func(from, to fsm.State[E]) {
		s.Emit(trace.Event{
			Kind:   trace.KindTransition,
			Entity: entityID,
			From:   fsm.NameOf(from),
			To:     fsm.NameOf(to),
		})
	})
}

// String describes the simulation for logs.
func (s *Simulation) String() string {
	return fmt.Sprintf("simulation %s (tick %d, clock %g)", s.runID, s.Ticks(), s.Now())
}
