package ports

import (
	"context"

	"github.com/tillerhq/tiller/pkg/domain"
)

// StateStore defines the interface for persisting conversation state.
// Suspended sessions park their snapshot here until the human answers;
// completed sessions may be archived for inspection.
type StateStore interface {
	// Save persists the state for a given session ID.
	Save(ctx context.Context, sessionID string, state *domain.State) error

	// Load retrieves the state for a given session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.State, error)

	// Delete removes the state for a given session ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of all stored sessions.
	List(ctx context.Context) ([]string, error)
}
