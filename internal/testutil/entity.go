package testutil

import (
	"sync"

	"github.com/roach88/simkit/internal/entity"
	"github.com/roach88/simkit/internal/telegram"
)

// StubEntity is an entity.Entity that records what the kernel does to it.
type StubEntity struct {
	entity.Base

	mu       sync.Mutex
	updates  int
	received []telegram.Telegram

	// Handled is what HandleMessage returns when OnMessage is nil.
	Handled bool

	// OnUpdate and OnMessage, when set, run inside Update and HandleMessage.
	OnUpdate  func() error
	OnMessage func(t telegram.Telegram) (bool, error)
}

// NewStubEntity creates a stub with the given id and a zero type code.
func NewStubEntity(id int) *StubEntity {
	// A fresh allocator accepts any non-negative id.
	b, err := entity.NewBase(entity.NewIDAllocator(), id, 0)
	if err != nil {
		panic(err)
	}
	return &StubEntity{Base: b, Handled: true}
}

// Update implements entity.Entity.
func (e *StubEntity) Update() error {
	e.mu.Lock()
	e.updates++
	hook := e.OnUpdate
	e.mu.Unlock()

	if hook != nil {
		return hook()
	}
	return nil
}

// HandleMessage implements entity.Entity.
func (e *StubEntity) HandleMessage(t telegram.Telegram) (bool, error) {
	e.mu.Lock()
	e.received = append(e.received, t)
	hook := e.OnMessage
	handled := e.Handled
	e.mu.Unlock()

	if hook != nil {
		return hook(t)
	}
	return handled, nil
}

// Updates returns how many times Update ran.
func (e *StubEntity) Updates() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.updates
}

// Received returns a copy of the telegrams delivered so far.
func (e *StubEntity) Received() []telegram.Telegram {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]telegram.Telegram, len(e.received))
	copy(out, e.received)
	return out
}
