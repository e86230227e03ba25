package fsm

import (
	"reflect"

	"github.com/roach88/simkit/internal/telegram"
)

// State is one behavior layer an entity can be in.
//
// States are expected to be stateless values shared by every entity of the
// same role; all per-entity data lives on the owner. Any method may return
// an error, which the machine propagates to its caller unchanged.
type State[E any] interface {
	// Enter runs once when the state becomes current.
	Enter(owner E) error

	// Execute runs once per tick while the state is current (or global).
	Execute(owner E) error

	// Exit runs once when the state stops being current.
	Exit(owner E) error

	// OnMessage offers a telegram to the state. Returning false lets the
	// next layer try.
	OnMessage(owner E, t telegram.Telegram) (bool, error)
}

// Base is a State with no behavior. Embed it to implement only the
// methods a state cares about.
type Base[E any] struct{}

// Enter implements State.
func (Base[E]) Enter(E) error { return nil }

// Execute implements State.
func (Base[E]) Execute(E) error { return nil }

// Exit implements State.
func (Base[E]) Exit(E) error { return nil }

// OnMessage implements State. It never handles anything.
func (Base[E]) OnMessage(E, telegram.Telegram) (bool, error) { return false, nil }

// Namer is implemented by states that want a display name other than their
// Go type name.
type Namer interface {
	Name() string
}

// NameOf returns a display name for s. Used for logs and traces only;
// the machine never compares names.
func NameOf(s any) string {
	if s == nil {
		return ""
	}
	if n, ok := s.(Namer); ok {
		return n.Name()
	}
	t := reflect.TypeOf(s)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

// sameKind reports whether a and b have the same dynamic type.
func sameKind(a, b any) bool {
	if a == nil || b == nil {
		return false
	}
	return reflect.TypeOf(a) == reflect.TypeOf(b)
}
