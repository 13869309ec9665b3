// Package cart persists a shopper's in-progress selection between requests.
// A draft is keyed by the authenticated user and the session it belongs to.
package cart

import (
	"context"
	"errors"
	"sync"

	"github.com/iliyamo/cinexplorer/internal/selection"
)

// ErrNotFound is returned by Load when the user has no draft for a session.
var ErrNotFound = errors.New("cart not found")

// Store loads, saves and deletes drafts.
type Store interface {
	Load(ctx context.Context, userID, sessionID uint64) (selection.Draft, error)
	Save(ctx context.Context, userID, sessionID uint64, d selection.Draft) error
	Delete(ctx context.Context, userID, sessionID uint64) error
}

type key struct{ user, session uint64 }

// MemoryStore keeps drafts in process memory without expiry. It serves
// tests and single-instance runs without Redis.
type MemoryStore struct {
	mu     sync.RWMutex
	drafts map[key]selection.Draft
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{drafts: map[key]selection.Draft{}}
}

func (m *MemoryStore) Load(_ context.Context, userID, sessionID uint64) (selection.Draft, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.drafts[key{userID, sessionID}]
	if !ok {
		return selection.Draft{}, ErrNotFound
	}
	return d, nil
}

func (m *MemoryStore) Save(_ context.Context, userID, sessionID uint64, d selection.Draft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drafts[key{userID, sessionID}] = d
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, userID, sessionID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.drafts, key{userID, sessionID})
	return nil
}
