package ports

import (
	"context"

	"github.com/cauceflow/cauce/pkg/domain"
)

// SessionStore persists conversation state by identity. This is what makes
// suspension durable: between an executor returning waiting-for-input and
// the next inbound message, the conversation exists only in the store.
type SessionStore interface {
	// Load retrieves the session for an identity.
	// Returns domain.ErrSessionNotFound if none exists.
	Load(ctx context.Context, id domain.Identity) (*domain.Session, error)

	// Save persists the session, overwriting any previous state.
	Save(ctx context.Context, id domain.Identity, s *domain.Session) error

	// Delete removes the session. Deleting a missing session is not an
	// error.
	Delete(ctx context.Context, id domain.Identity) error

	// List returns the identities of all stored sessions.
	List(ctx context.Context) ([]domain.Identity, error)
}
