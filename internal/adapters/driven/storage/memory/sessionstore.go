package memory

import (
	"sync"

	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// Ensure SessionStore implements the interface.
var _ driven.SessionStore[any] = (*SessionStore[any])(nil)

// SessionStore keeps sessions in memory, remembering creation order.
type SessionStore[T any] struct {
	mu       sync.RWMutex
	sessions map[string]T
	order    []string
}

// NewSessionStore creates an empty session store.
func NewSessionStore[T any]() *SessionStore[T] {
	return &SessionStore[T]{sessions: make(map[string]T)}
}

// Put stores a session under id, replacing any previous one.
func (s *SessionStore[T]) Put(id string, session T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		s.order = append(s.order, id)
	}
	s.sessions[id] = session
}

// Get returns the session for id.
func (s *SessionStore[T]) Get(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	return session, ok
}

// Delete removes the session for id.
func (s *SessionStore[T]) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// IDs returns the stored IDs in creation order.
func (s *SessionStore[T]) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}
