package unlocks

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-memory unlock store for development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	unlocks []*Unlock
	pairs   map[string]bool
}

// NewMemoryStore creates an empty in-memory unlock store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{pairs: make(map[string]bool)}
}

// Create inserts an unlock record.
func (m *MemoryStore) Create(ctx context.Context, u *Unlock) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := u.UserID + "/" + u.PropertyID
	if m.pairs[key] {
		return ErrAlreadyUnlocked
	}
	cp := *u
	m.unlocks = append(m.unlocks, &cp)
	m.pairs[key] = true
	return nil
}

// Exists reports whether the (user, property) pair is unlocked.
func (m *MemoryStore) Exists(ctx context.Context, userID, propertyID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pairs[userID+"/"+propertyID], nil
}

// ListByUser returns a user's unlocks, newest first.
func (m *MemoryStore) ListByUser(ctx context.Context, userID string) ([]*Unlock, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Unlock
	for _, u := range m.unlocks {
		if u.UserID == userID {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UnlockedAt.After(out[j].UnlockedAt)
	})
	return out, nil
}

// Count returns the total number of unlocks.
func (m *MemoryStore) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.unlocks), nil
}
