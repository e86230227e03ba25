// Package telegram defines the addressed message value exchanged between
// simulated entities.
//
// A Telegram is a plain value: once built it is never mutated by the kernel.
// The payload is opaque and passed through to the receiver untouched.
package telegram

import (
	"fmt"
	"math"
)

const (
	// SendImmediately is the dispatch time carried by telegrams delivered
	// synchronously. It doubles as the "no delay" argument to Dispatcher.Send.
	SendImmediately = 0.0

	// SenderIrrelevant marks telegrams whose sender is not an entity.
	SenderIrrelevant = -1

	// DefaultTolerance is the dispatch-time window inside which two telegrams
	// with the same sender, receiver and kind are considered the same message.
	DefaultTolerance = 0.25
)

// Telegram is a scheduled, addressed message between two entities.
type Telegram struct {
	Sender     int
	Receiver   int
	Msg        int
	DispatchAt float64
	Payload    any
}

// New builds a telegram with the given dispatch time.
func New(at float64, sender, receiver, msg int, payload any) Telegram {
	return Telegram{
		Sender:     sender,
		Receiver:   receiver,
		Msg:        msg,
		DispatchAt: at,
		Payload:    payload,
	}
}

// Immediate reports whether t carries the "send now" dispatch time.
func (t Telegram) Immediate() bool {
	return t.DispatchAt <= SendImmediately
}

// Equivalent reports whether a and b address the same message: identical
// sender, receiver and kind, with dispatch times less than tol apart.
// The payload does not take part in the comparison.
func Equivalent(a, b Telegram, tol float64) bool {
	return a.Sender == b.Sender &&
		a.Receiver == b.Receiver &&
		a.Msg == b.Msg &&
		math.Abs(a.DispatchAt-b.DispatchAt) < tol
}

// String implements fmt.Stringer.
func (t Telegram) String() string {
	return fmt.Sprintf("time=%g sender=%d receiver=%d msg=%d", t.DispatchAt, t.Sender, t.Receiver, t.Msg)
}
