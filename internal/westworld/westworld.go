// Package westworld is the sample simulation: Miner Bob digs for gold,
// banks it, drinks and sleeps, while his wife Elsa keeps house and cooks
// him stew when he gets home.
//
// It exercises every kernel feature: a current/global state machine per
// entity, immediate telegrams between entities, a delayed telegram an
// entity sends itself, and state reverts.
package westworld

import (
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/roach88/simkit/internal/engine"
)

// Entity ids.
const (
	MinerBob = 1
	Elsa     = 2
)

// Entity type codes.
const (
	TypeMiner = 1
	TypeWife  = 2
)

// Message kinds.
const (
	MsgHiHoneyImHome = 1
	MsgStewReady     = 2
)

// Miner thresholds.
const (
	ComfortLevel       = 5 // wealth at which Bob goes home
	MaxNuggets         = 3 // nuggets Bob can carry
	ThirstLevel        = 5 // thirst at which Bob heads for the saloon
	TirednessThreshold = 5 // fatigue above which Bob keeps sleeping
)

// DefaultStewDelay is how long the stew cooks, in clock units.
const DefaultStewDelay = 0.000001

// Location is where an entity currently is.
type Location int

const (
	Shack Location = iota
	GoldMine
	Bank
	Saloon
)

func (l Location) String() string {
	switch l {
	case Shack:
		return "shack"
	case GoldMine:
		return "goldmine"
	case Bank:
		return "bank"
	case Saloon:
		return "saloon"
	}
	return fmt.Sprintf("location(%d)", int(l))
}

// NameOf returns the display name of an entity id.
func NameOf(id int) string {
	switch id {
	case MinerBob:
		return "Miner Bob"
	case Elsa:
		return "Elsa"
	}
	return fmt.Sprintf("entity %d", id)
}

// Rand is the randomness Elsa's states draw from. *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// NewRand returns a deterministic source for seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

// World holds the two residents of the simulation.
type World struct {
	Miner *Miner
	Wife  *Wife
}

// Option configures New.
type Option func(*options)

type options struct {
	stewDelay float64
}

// WithStewDelay sets how long Elsa's stew cooks.
func WithStewDelay(d float64) Option {
	return func(o *options) { o.stewDelay = d }
}

// New creates Bob and Elsa, wires their state machines into the trace and
// registers both with sim. Speech goes to narrator; nil discards it.
func New(sim *engine.Simulation, narrator io.Writer, rng Rand, opts ...Option) (*World, error) {
	o := options{stewDelay: DefaultStewDelay}
	for _, opt := range opts {
		opt(&o)
	}
	if narrator == nil {
		narrator = io.Discard
	}

	miner, err := NewMiner(sim, narrator)
	if err != nil {
		return nil, err
	}
	wife, err := NewWife(sim, narrator, rng, o.stewDelay)
	if err != nil {
		return nil, err
	}

	if err := sim.Register(miner); err != nil {
		return nil, err
	}
	if err := sim.Register(wife); err != nil {
		return nil, err
	}
	return &World{Miner: miner, Wife: wife}, nil
}

// say writes one line of speech.
func say(w io.Writer, id int, format string, args ...any) {
	fmt.Fprintf(w, "%s: %s\n", NameOf(id), fmt.Sprintf(format, args...))
}
