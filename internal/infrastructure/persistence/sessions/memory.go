// Package sessions provides the session store drivers: an in-memory map
// for single-node deployments and a Redis driver for clustered gateways.
package sessions

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/AtRiskMedia/ussd-go/internal/domain/entities/session"
)

// MemoryStore keeps sessions in process memory. State is lost on restart;
// the engine treats a lost session like a fresh dial, which is acceptable
// for development and single-node setups.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]byte
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string][]byte),
	}
}

// Store persists the session, overwriting any previous state. Sessions are
// kept serialized so callers never share mutable state through the store.
func (m *MemoryStore) Store(ctx context.Context, s *session.Session) error {
	val, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", s.SessionID, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.SessionID] = val
	return nil
}

// Retrieve loads a session by id. A miss is (nil, nil).
func (m *MemoryStore) Retrieve(ctx context.Context, sessionID string) (*session.Session, error) {
	m.mu.RLock()
	val, exists := m.sessions[sessionID]
	m.mu.RUnlock()

	if !exists {
		return nil, nil
	}

	var s session.Session
	if err := json.Unmarshal(val, &s); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", sessionID, err)
	}
	return &s, nil
}

// Close releases the store's memory.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = nil
	return nil
}
