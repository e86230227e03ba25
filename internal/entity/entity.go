// Package entity defines the identity contract shared by every simulated
// object, the monotonic id allocator, and the registry that resolves ids
// to entities.
//
// The kernel only ever talks to entities through the Entity interface:
// it updates them once per tick and hands them telegrams. How an entity
// reacts (usually by delegating to an fsm.Machine) is up to the
// collaborator that implements it.
package entity

import "github.com/roach88/simkit/internal/telegram"

// Entity is the minimal shape of anything the simulation can drive.
type Entity interface {
	// ID returns the entity's unique id. It never changes.
	ID() int

	// Type returns the opaque type code. The kernel does not interpret it.
	Type() int

	// Tagged reports the selection flag used by collaborators.
	Tagged() bool
	SetTagged(tagged bool)

	// Update advances the entity by one tick.
	Update() error

	// HandleMessage offers t to the entity. It returns false when the
	// entity has no behavior for the message; that is not an error.
	HandleMessage(t telegram.Telegram) (bool, error)
}

// Base carries the identity fields of an entity and is meant to be
// embedded by concrete entities.
type Base struct {
	id     int
	typ    int
	tagged bool
}

// NewBase claims id from the allocator and returns the identity block.
// It fails when id is below the allocator's high-water mark.
func NewBase(ids *IDAllocator, id, typ int) (Base, error) {
	if err := ids.Assign(id); err != nil {
		return Base{}, err
	}
	return Base{id: id, typ: typ}, nil
}

// ID implements Entity.
func (b *Base) ID() int { return b.id }

// Type implements Entity.
func (b *Base) Type() int { return b.typ }

// Tagged implements Entity.
func (b *Base) Tagged() bool { return b.tagged }

// SetTagged implements Entity.
func (b *Base) SetTagged(tagged bool) { b.tagged = tagged }
