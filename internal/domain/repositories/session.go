// Package repositories defines the persistence interfaces the application
// layer depends on. Concrete drivers live under internal/infrastructure.
package repositories

import (
	"context"

	"github.com/AtRiskMedia/ussd-go/internal/domain/entities/session"
)

// SessionStore is the session cache collaborator: keyed storage of
// conversation state by session id. Implementations must be safe for
// concurrent use across distinct session ids; the engine guarantees at
// most one active writer per id by convention.
type SessionStore interface {
	// Store persists the session, overwriting any previous state.
	Store(ctx context.Context, s *session.Session) error

	// Retrieve loads a session by id. A miss is (nil, nil), not an error.
	Retrieve(ctx context.Context, sessionID string) (*session.Session, error)
}
