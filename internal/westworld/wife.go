package westworld

import (
	"io"

	"github.com/roach88/simkit/internal/engine"
	"github.com/roach88/simkit/internal/entity"
	"github.com/roach88/simkit/internal/fsm"
	"github.com/roach88/simkit/internal/telegram"
)

// BathroomChance is the per-tick probability that Elsa needs the bathroom.
const BathroomChance = 0.1

// Wife is Elsa.
type Wife struct {
	entity.Base

	sim       *engine.Simulation
	out       io.Writer
	rng       Rand
	machine   *fsm.Machine[*Wife]
	stewDelay float64

	Location Location
	Cooking  bool
}

// NewWife creates Elsa at home doing housework.
func NewWife(sim *engine.Simulation, narrator io.Writer, rng Rand, stewDelay float64) (*Wife, error) {
	b, err := entity.NewBase(sim.IDs(), Elsa, TypeWife)
	if err != nil {
		return nil, err
	}
	if stewDelay <= 0 {
		stewDelay = DefaultStewDelay
	}

	w := &Wife{Base: b, sim: sim, out: narrator, rng: rng, stewDelay: stewDelay, Location: Shack}
	w.machine = fsm.New(w)
	w.machine.SetCurrent(DoHouseWork{})
	w.machine.SetGlobal(WifesGlobalState{})
	engine.ObserveTransitions(sim, w.machine, w.ID())
	return w, nil
}

// Update implements entity.Entity.
func (w *Wife) Update() error {
	return w.machine.Update()
}

// HandleMessage implements entity.Entity.
func (w *Wife) HandleMessage(t telegram.Telegram) (bool, error) {
	return w.machine.HandleMessage(t)
}

// FSM returns Elsa's state machine.
func (w *Wife) FSM() *fsm.Machine[*Wife] { return w.machine }

func (w *Wife) say(format string, args ...any) {
	say(w.out, w.ID(), format, args...)
}
