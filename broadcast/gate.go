package broadcast

import (
	"errors"
	"sync"
)

// ErrSessionActive is returned when a session start collides with one
// already live.
var ErrSessionActive = errors.New("broadcast: a session is already live")

// Gate admits at most one live session at a time. Scheduled and
// operator-triggered starts both pass through it, so a collision surfaces
// as ErrSessionActive instead of two overlapping broadcasts.
type Gate struct {
	mu      sync.Mutex
	current *Session
}

// NewGate returns an empty gate.
func NewGate() *Gate {
	return &Gate{}
}

// Acquire claims the gate for s. It fails with ErrSessionActive while
// another session holds it.
func (g *Gate) Acquire(s *Session) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.current != nil {
		return ErrSessionActive
	}
	g.current = s
	return nil
}

// Release frees the gate if s still holds it. Releasing a session that
// never held the gate is a no-op.
func (g *Gate) Release(s *Session) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.current == s {
		g.current = nil
	}
}

// Current returns the live session, or nil when the gate is free.
func (g *Gate) Current() *Session {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}
