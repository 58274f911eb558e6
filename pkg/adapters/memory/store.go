// Package memory provides in-process adapters, used by tests and
// single-instance deployments.
package memory

import (
	"context"
	"sync"

	"github.com/cauceflow/cauce/pkg/domain"
)

// Store implements ports.SessionStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Session
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Session),
	}
}

// Save persists the session in memory. The session is cloned so later
// caller mutations cannot reach the stored copy.
func (s *Store) Save(ctx context.Context, id domain.Identity, sess *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[id.Key()] = sess.Clone()
	return nil
}

// Load retrieves the session, cloned for the same isolation reason.
func (s *Store) Load(ctx context.Context, id domain.Identity) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.data[id.Key()]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return sess.Clone(), nil
}

// Delete removes the session. Deleting a missing session is a no-op.
func (s *Store) Delete(ctx context.Context, id domain.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id.Key())
	return nil
}

// List returns the identities with a persisted session.
func (s *Store) List(ctx context.Context) ([]domain.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]domain.Identity, 0, len(s.data))
	for _, sess := range s.data {
		ids = append(ids, sess.Identity)
	}
	return ids, nil
}
