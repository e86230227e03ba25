package testutil

import (
	"sync"

	"github.com/roach88/simkit/internal/telegram"
)

// CallLog records state callbacks in the order they happen.
//
// Thread-safety: safe for concurrent use.
type CallLog struct {
	mu    sync.Mutex
	calls []string
}

// NewCallLog creates an empty log.
func NewCallLog() *CallLog {
	return &CallLog{}
}

// Add appends an entry.
func (l *CallLog) Add(call string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, call)
}

// Calls returns a copy of the recorded entries.
func (l *CallLog) Calls() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.calls))
	copy(out, l.calls)
	return out
}

// Reset clears the log.
func (l *CallLog) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = nil
}

// RecordingState is an fsm.State that writes "<label>.<callback>" to a
// CallLog for every callback it receives.
//
// Optional hooks let a test plug behavior into Execute and OnMessage, and
// EnterErr/ExitErr make the corresponding callback fail.
type RecordingState[E any] struct {
	Label string
	Log   *CallLog

	// Handles is what OnMessage returns when OnMsg is nil.
	Handles bool

	OnExecute func(owner E) error
	OnMsg     func(owner E, t telegram.Telegram) (bool, error)

	EnterErr error
	ExitErr  error
}

// NewRecordingState creates a state labeled label writing to log.
func NewRecordingState[E any](label string, log *CallLog) *RecordingState[E] {
	return &RecordingState[E]{Label: label, Log: log}
}

// Name implements fsm.Namer.
func (s *RecordingState[E]) Name() string { return s.Label }

// Enter implements fsm.State.
func (s *RecordingState[E]) Enter(E) error {
	s.Log.Add(s.Label + ".enter")
	return s.EnterErr
}

// Execute implements fsm.State.
func (s *RecordingState[E]) Execute(owner E) error {
	s.Log.Add(s.Label + ".execute")
	if s.OnExecute != nil {
		return s.OnExecute(owner)
	}
	return nil
}

// Exit implements fsm.State.
func (s *RecordingState[E]) Exit(E) error {
	s.Log.Add(s.Label + ".exit")
	return s.ExitErr
}

// OnMessage implements fsm.State.
func (s *RecordingState[E]) OnMessage(owner E, t telegram.Telegram) (bool, error) {
	s.Log.Add(s.Label + ".on_message")
	if s.OnMsg != nil {
		return s.OnMsg(owner, t)
	}
	return s.Handles, nil
}
