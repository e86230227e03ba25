package entity

import "sync"

// Registry maps entity ids to entities for the lifetime of a simulation.
//
// Entries are write-once: there is no update or removal. All() preserves
// registration order, which is also the order the driver updates entities in.
//
// Thread-safety: safe for concurrent use. Reads take a shared lock.
type Registry struct {
	mu      sync.RWMutex
	byID    map[int]Entity
	ordered []Entity
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byID: make(map[int]Entity),
	}
}

// Register inserts e keyed by its id. A second registration of the same id
// fails with a DuplicateKey error and leaves the registry unchanged.
func (r *Registry) Register(e Entity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := e.ID()
	if _, exists := r.byID[id]; exists {
		return NewDuplicateKeyError(id)
	}
	r.byID[id] = e
	r.ordered = append(r.ordered, e)
	return nil
}

// Get returns the entity registered under id, or a NotFound error.
func (r *Registry) Get(id int) (Entity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byID[id]
	if !ok {
		return nil, NewNotFoundError(id)
	}
	return e, nil
}

// All returns the registered entities in registration order.
// The returned slice is a copy.
func (r *Registry) All() []Entity {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entity, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Len returns the number of registered entities.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ordered)
}
