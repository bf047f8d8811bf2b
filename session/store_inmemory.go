package session

import (
	"context"
	"fmt"
	"sync"
)

// InMemoryStore is a process-local Store. Sessions are copied in and out so callers can
// never mutate what is stored.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session // profileID -> Session
}

var _ Store = (*InMemoryStore)(nil)

// NewInMemoryStore creates a new in-memory session store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		sessions: make(map[string]Session),
	}
}

// Write replaces the session for a profile
func (s *InMemoryStore) Write(_ context.Context, profileID string, session Session) error {
	if profileID == "" {
		return fmt.Errorf("profileID is required")
	}
	if err := Validate(session); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[profileID] = session
	return nil
}

// Read returns the stored session, or nil when there is none
func (s *InMemoryStore) Read(_ context.Context, profileID string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[profileID]
	if !ok || !session.Complete() {
		return nil, nil
	}
	return &session, nil
}

// Clear removes the session for a profile
func (s *InMemoryStore) Clear(_ context.Context, profileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, profileID) // no-op when absent
	return nil
}
