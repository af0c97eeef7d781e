// Package chat drives one chat session: it composes turns, sends them to the relay
// one at a time and reconciles replies into the session history.
package chat

import (
	"context"
	"strings"
	"sync"

	"github.com/qmuntal/stateless"

	"github.com/comigor/jokebot-go/internal/api"
	"github.com/comigor/jokebot-go/internal/history"
	"github.com/comigor/jokebot-go/internal/logger"
)

// ApologyText replaces the reply of every failed turn.
const ApologyText = "اوہو! انٹرنیٹ کا مسئلہ لگتا ہے۔ دوبارہ کوشش کریں بھئی۔"

// State of the turn controller.
type State string

const (
	StateIdle      State = "Idle"
	StateComposing State = "Composing"
	StateSending   State = "Sending"
)

type trigger string

const (
	triggerEdit    trigger = "Edit"
	triggerSubmit  trigger = "Submit"
	triggerResolve trigger = "Resolve"
)

// Options tunes a Session.
type Options struct {
	// DropStaleReplies discards a reply when the history was reset while its turn
	// was in flight. When false the reply lands in the reset history.
	DropStaleReplies bool
}

// Session is the turn controller. It owns the input buffer, the in-flight state and
// the history store; all three change only through its methods.
type Session struct {
	mu    sync.Mutex
	relay Relay
	store *history.Store
	input string
	fsm   *stateless.StateMachine
	opts  Options
}

// NewSession creates a session over store, or over a fresh store when nil.
func NewSession(relay Relay, store *history.Store, opts Options) *Session {
	if store == nil {
		store = history.NewStore()
	}
	s := &Session{relay: relay, store: store, opts: opts}

	hasInput := func(_ context.Context, _ ...any) bool { return strings.TrimSpace(s.input) != "" }
	noInput := func(ctx context.Context, args ...any) bool { return !hasInput(ctx, args...) }

	fsm := stateless.NewStateMachine(StateIdle)

	fsm.Configure(StateIdle).
		Permit(triggerEdit, StateComposing, hasInput).
		Ignore(triggerEdit, noInput).
		Permit(triggerSubmit, StateSending)

	fsm.Configure(StateComposing).
		Permit(triggerEdit, StateIdle, noInput).
		Ignore(triggerEdit, hasInput).
		Permit(triggerSubmit, StateSending)

	// Only Resolve leaves Sending; a second submit is swallowed.
	fsm.Configure(StateSending).
		Ignore(triggerEdit).
		Ignore(triggerSubmit).
		Permit(triggerResolve, StateComposing, hasInput).
		Permit(triggerResolve, StateIdle, noInput)

	s.fsm = fsm
	return s
}

// Store returns the session history store.
func (s *Session) Store() *history.Store { return s.store }

// History returns a snapshot of the session history.
func (s *Session) History() []history.Turn { return s.store.Turns() }

// State returns the controller state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fsm.MustState().(State)
}

// InFlight reports whether a turn request is outstanding.
func (s *Session) InFlight() bool {
	return s.State() == StateSending
}

// Input returns the input buffer.
func (s *Session) Input() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

// SetInput replaces the input buffer. Editing is allowed while a turn is in flight.
func (s *Session) SetInput(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.input = text
	if err := s.fsm.Fire(triggerEdit); err != nil {
		logger.L.Error("chat: edit transition failed", "error", err)
	}
}

// Submit sends the input buffer. See Send.
func (s *Session) Submit(ctx context.Context) (history.Turn, bool) {
	return s.Send(ctx, s.Input())
}

// Send runs one turn for raw and blocks until it resolves. It is a no-op returning
// false when the trimmed input is empty or another turn is in flight. Otherwise the
// user turn and then exactly one model turn (the reply, or ApologyText on any failure)
// are appended, and the reply turn is returned.
func (s *Session) Send(ctx context.Context, raw string) (history.Turn, bool) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return history.Turn{}, false
	}

	prior, generation, ok := s.begin(text)
	if !ok {
		return history.Turn{}, false
	}
	defer s.resolve()

	reply, err := s.relay.Send(ctx, api.ChatRequest{Message: text, History: api.FromTurns(prior)})
	turn := history.ModelTurn(reply)
	if err != nil {
		logger.L.Warn("chat turn failed", "error", err)
		turn = history.ModelTurn(ApologyText)
	}

	if s.opts.DropStaleReplies && s.store.Generation() != generation {
		logger.L.Info("dropping reply for a reset conversation")
		return turn, true
	}
	if err := s.store.Append(turn); err != nil {
		logger.L.Error("chat: append reply failed", "error", err)
	}
	return turn, true
}

// begin enters Sending, clears the input buffer and appends the user turn. The state
// check and the transition happen under one lock.
func (s *Session) begin(text string) ([]history.Turn, uint64, bool) {
	s.mu.Lock()
	if s.fsm.MustState() == StateSending {
		s.mu.Unlock()
		return nil, 0, false
	}
	prior := s.store.Turns()
	generation := s.store.Generation()
	s.input = ""
	if err := s.fsm.Fire(triggerSubmit); err != nil {
		s.mu.Unlock()
		logger.L.Error("chat: submit transition failed", "error", err)
		return nil, 0, false
	}
	s.mu.Unlock()

	if err := s.store.Append(history.UserTurn(text)); err != nil {
		logger.L.Error("chat: append user turn failed", "error", err)
	}
	return prior, generation, true
}

func (s *Session) resolve() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fsm.Fire(triggerResolve); err != nil {
		logger.L.Error("chat: resolve transition failed", "error", err)
	}
}

// Reset discards the history and reseeds the greeting. An in-flight turn is not
// cancelled; its reply is appended to the new history unless DropStaleReplies is set.
func (s *Session) Reset() {
	s.store.Reset()
}
