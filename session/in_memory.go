// Package session stores interview sessions for the lifetime of a process.
package session

import (
	"fmt"
	"sync"

	"interviewcoach/core"
)

// Store is the session registry the facade works against.
type Store interface {
	// Create registers a new session for the given intake.
	Create(intake core.IntakeProfile) (*core.Session, error)
	// Get returns the live session with the given ID.
	Get(sessionID string) (*core.Session, error)
	// Delete removes a session. Deleting an unknown ID is a no-op.
	Delete(sessionID string)
}

// ErrNotFound is returned by Get for unknown session IDs.
type ErrNotFound struct {
	SessionID string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("session %s not found", e.SessionID)
}

// InMemoryStore is a volatile Store keeping sessions in a process local map.
// It is safe for concurrent access. Stepping a single session is still
// strictly sequential; the store only synchronizes the registry itself.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*core.Session
}

// NewInMemoryStore constructs an empty in-memory session store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string]*core.Session)}
}

// Create validates the intake and registers a fresh session.
func (s *InMemoryStore) Create(intake core.IntakeProfile) (*core.Session, error) {
	if err := intake.Validate(); err != nil {
		return nil, err
	}
	sess := core.NewSession(intake)
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess, nil
}

// Get returns the live session for the given ID.
func (s *InMemoryStore) Get(sessionID string) (*core.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sess, ok := s.sessions[sessionID]; ok {
		return sess, nil
	}
	return nil, &ErrNotFound{SessionID: sessionID}
}

// Delete removes a session from the registry.
func (s *InMemoryStore) Delete(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}
