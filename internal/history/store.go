// Package history holds the ordered turn log of one chat session.
// The log only grows or is reset to the greeting; turns are never edited,
// removed or reordered.
package history

import (
	"errors"
	"sync"
)

// ErrInvalidRole is returned by Append for a turn whose role is neither user nor model.
var ErrInvalidRole = errors.New("history: invalid turn role")

// Listener is notified with a snapshot of the log after every mutation.
type Listener func(turns []Turn)

// Store is the History Store. It is safe for concurrent use.
type Store struct {
	mu         sync.Mutex
	turns      []Turn
	generation uint64
	listeners  []Listener
}

// NewStore returns a store seeded with the greeting.
func NewStore() *Store {
	return &Store{turns: []Turn{ModelTurn(Greeting)}}
}

// Append adds turn to the end of the log.
func (s *Store) Append(turn Turn) error {
	if !turn.Role.Valid() {
		return ErrInvalidRole
	}
	s.mu.Lock()
	s.turns = append(s.turns, turn)
	snap, ls := s.snapshotLocked()
	s.mu.Unlock()

	notify(ls, snap)
	return nil
}

// Reset discards every turn and reseeds the greeting. Each reset starts a new generation.
func (s *Store) Reset() {
	s.mu.Lock()
	s.turns = []Turn{ModelTurn(Greeting)}
	s.generation++
	snap, ls := s.snapshotLocked()
	s.mu.Unlock()

	notify(ls, snap)
}

// Turns returns a copy of the log, earliest first.
func (s *Store) Turns() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Turn(nil), s.turns...)
}

// Len returns the number of turns in the log.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.turns)
}

// Last returns the most recent turn. The log is never empty.
func (s *Store) Last() Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turns[len(s.turns)-1]
}

// Generation counts resets since the store was created.
func (s *Store) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Listen registers l for every subsequent mutation.
func (s *Store) Listen(l Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
}

func (s *Store) snapshotLocked() ([]Turn, []Listener) {
	if len(s.listeners) == 0 {
		return nil, nil
	}
	return append([]Turn(nil), s.turns...), append([]Listener(nil), s.listeners...)
}

func notify(ls []Listener, snap []Turn) {
	for _, l := range ls {
		l(snap)
	}
}
