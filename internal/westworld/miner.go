package westworld

import (
	"io"

	"github.com/roach88/simkit/internal/engine"
	"github.com/roach88/simkit/internal/entity"
	"github.com/roach88/simkit/internal/fsm"
	"github.com/roach88/simkit/internal/telegram"
)

// Miner is Bob. Everything he does is driven by his state machine; the
// fields below are what his states read and change.
type Miner struct {
	entity.Base

	sim     *engine.Simulation
	out     io.Writer
	machine *fsm.Machine[*Miner]

	Location    Location
	GoldCarried int
	Wealth      int
	thirst      int
	fatigue     int
}

// NewMiner creates Bob at home, about to wake up.
func NewMiner(sim *engine.Simulation, narrator io.Writer) (*Miner, error) {
	b, err := entity.NewBase(sim.IDs(), MinerBob, TypeMiner)
	if err != nil {
		return nil, err
	}

	m := &Miner{Base: b, sim: sim, out: narrator, Location: Shack}
	m.machine = fsm.New(m)
	m.machine.SetCurrent(GoHomeAndSleepTillRested{})
	engine.ObserveTransitions(sim, m.machine, m.ID())
	return m, nil
}

// Update implements entity.Entity. Bob gets thirstier every tick.
func (m *Miner) Update() error {
	m.thirst++
	return m.machine.Update()
}

// HandleMessage implements entity.Entity.
func (m *Miner) HandleMessage(t telegram.Telegram) (bool, error) {
	return m.machine.HandleMessage(t)
}

// FSM returns Bob's state machine.
func (m *Miner) FSM() *fsm.Machine[*Miner] { return m.machine }

// AddToGoldCarried adds gold to Bob's pockets, never below zero.
func (m *Miner) AddToGoldCarried(gold int) {
	m.GoldCarried = max(m.GoldCarried+gold, 0)
}

// AddToWealth adds to Bob's savings, never below zero.
func (m *Miner) AddToWealth(gold int) {
	m.Wealth = max(m.Wealth+gold, 0)
}

func (m *Miner) IncreaseFatigue() { m.fatigue++ }
func (m *Miner) DecreaseFatigue() { m.fatigue-- }

// BuyAndDrinkWhiskey quenches Bob's thirst for 2 gold.
func (m *Miner) BuyAndDrinkWhiskey() {
	m.thirst = 0
	m.Wealth -= 2
}

func (m *Miner) PocketsFull() bool { return m.GoldCarried >= MaxNuggets }
func (m *Miner) Fatigued() bool    { return m.fatigue > TirednessThreshold }
func (m *Miner) Thirsty() bool     { return m.thirst >= ThirstLevel }

func (m *Miner) Thirst() int  { return m.thirst }
func (m *Miner) Fatigue() int { return m.fatigue }

func (m *Miner) say(format string, args ...any) {
	say(m.out, m.ID(), format, args...)
}
