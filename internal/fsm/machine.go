// Package fsm implements the per-entity state machine with three behavior
// slots: current, previous and global.
//
// # Layers
//
// The global state and the current state are both active. On Update the
// global state executes first, then the current state; both run every tick.
// Messages go the other way: the current state gets first refusal and the
// global state only sees what the current state declined.
//
// # Transitions
//
// ChangeState is the only way the current slot moves during a run:
//
//  1. previous = current
//  2. current.Exit(owner)
//  3. current = target
//  4. current.Enter(owner)
//
// A transition is complete once step 4 returns. If Exit or Enter fails the
// error is returned as-is and the machine is not rolled back.
//
// The machine has no timers. Time-based behavior comes from repeated
// Update calls and from telegrams delivered by the dispatcher.
package fsm

import (
	"fmt"

	"github.com/roach88/simkit/internal/telegram"
)

// Machine is the state machine owned by a single entity of type E.
//
// Not safe for concurrent use; the simulation drives each machine from
// one goroutine.
type Machine[E any] struct {
	owner    E
	current  State[E]
	previous State[E]
	global   State[E]

	onTransition func(from, to State[E])
}

// New creates a machine bound to owner. All slots start empty.
func New[E any](owner E) *Machine[E] {
	return &Machine[E]{owner: owner}
}

// Owner returns the entity the machine is bound to.
func (m *Machine[E]) Owner() E { return m.owner }

// Current returns the current state, or nil.
func (m *Machine[E]) Current() State[E] { return m.current }

// Previous returns the state the last transition left, or nil.
func (m *Machine[E]) Previous() State[E] { return m.previous }

// Global returns the global state, or nil.
func (m *Machine[E]) Global() State[E] { return m.global }

// SetCurrent places s in the current slot without calling Enter.
// Used for initial wiring.
func (m *Machine[E]) SetCurrent(s State[E]) { m.current = s }

// SetPrevious places s in the previous slot.
func (m *Machine[E]) SetPrevious(s State[E]) { m.previous = s }

// SetGlobal places s in the global slot without calling Enter.
func (m *Machine[E]) SetGlobal(s State[E]) { m.global = s }

// OnTransition registers fn to be called after every completed transition.
// Only one hook is kept; a later call replaces the earlier one.
func (m *Machine[E]) OnTransition(fn func(from, to State[E])) {
	m.onTransition = fn
}

// Update executes the global state, then the current state.
func (m *Machine[E]) Update() error {
	if m.global != nil {
		if err := m.global.Execute(m.owner); err != nil {
			return fmt.Errorf("execute global state %s: %w", NameOf(m.global), err)
		}
	}
	if m.current != nil {
		if err := m.current.Execute(m.owner); err != nil {
			return fmt.Errorf("execute state %s: %w", NameOf(m.current), err)
		}
	}
	return nil
}

// ChangeState exits the current state and enters target.
// It fails with a TransitionError when target or the current state is nil.
func (m *Machine[E]) ChangeState(target State[E]) error {
	return m.changeState("ChangeState", target)
}

// RevertToPreviousState changes back to the previous state.
// It fails with a TransitionError when there is no previous state.
func (m *Machine[E]) RevertToPreviousState() error {
	if m.previous == nil {
		return &TransitionError{
			Code:    ErrCodeNoPreviousState,
			Op:      "RevertToPreviousState",
			Current: NameOf(m.current),
		}
	}
	return m.changeState("RevertToPreviousState", m.previous)
}

func (m *Machine[E]) changeState(op string, target State[E]) error {
	if target == nil {
		return &TransitionError{Code: ErrCodeNilTarget, Op: op, Current: NameOf(m.current)}
	}
	if m.current == nil {
		return &TransitionError{Code: ErrCodeNoCurrentState, Op: op}
	}

	from := m.current
	m.previous = from
	if err := from.Exit(m.owner); err != nil {
		return fmt.Errorf("exit state %s: %w", NameOf(from), err)
	}

	m.current = target
	if err := target.Enter(m.owner); err != nil {
		return fmt.Errorf("enter state %s: %w", NameOf(target), err)
	}

	if m.onTransition != nil {
		m.onTransition(from, target)
	}
	return nil
}

// IsInState reports whether the current state is of the same kind as s.
// Two distinct values of the same state type count as the same state.
func (m *Machine[E]) IsInState(s State[E]) bool {
	return sameKind(m.current, s)
}

// HandleMessage offers t to the current state, then to the global state.
// It returns true if either layer handled it.
func (m *Machine[E]) HandleMessage(t telegram.Telegram) (bool, error) {
	if m.current != nil {
		handled, err := m.current.OnMessage(m.owner, t)
		if err != nil {
			return false, fmt.Errorf("state %s on message %d: %w", NameOf(m.current), t.Msg, err)
		}
		if handled {
			return true, nil
		}
	}
	if m.global != nil {
		handled, err := m.global.OnMessage(m.owner, t)
		if err != nil {
			return false, fmt.Errorf("global state %s on message %d: %w", NameOf(m.global), t.Msg, err)
		}
		return handled, nil
	}
	return false, nil
}

// String returns the name of the current state.
func (m *Machine[E]) String() string {
	if m.current == nil {
		return "<none>"
	}
	return NameOf(m.current)
}
