package wallet

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory wallet store for development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	wallets map[string]*Wallet
}

// NewMemoryStore creates an empty in-memory wallet store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{wallets: make(map[string]*Wallet)}
}

// GetOrCreate returns the user's wallet, creating a zero-balance one if needed.
func (m *MemoryStore) GetOrCreate(ctx context.Context, userID string) (*Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.wallets[userID]
	if !ok {
		w = &Wallet{UserID: userID, TokenBalance: 0, UpdatedAt: time.Now().UTC()}
		m.wallets[userID] = w
	}
	cp := *w
	return &cp, nil
}

// Get returns the user's wallet.
func (m *MemoryStore) Get(ctx context.Context, userID string) (*Wallet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	w, ok := m.wallets[userID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *w
	return &cp, nil
}

// Credit adds tokens to the user's wallet, creating it if needed.
func (m *MemoryStore) Credit(ctx context.Context, userID string, amount int64) (*Wallet, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.wallets[userID]
	if !ok {
		w = &Wallet{UserID: userID}
		m.wallets[userID] = w
	}
	w.TokenBalance += amount
	w.UpdatedAt = time.Now().UTC()
	cp := *w
	return &cp, nil
}

// DebitOne removes exactly one token if the balance allows it.
func (m *MemoryStore) DebitOne(ctx context.Context, userID string) (*Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.wallets[userID]
	if !ok {
		return nil, ErrNotFound
	}
	if w.TokenBalance < 1 {
		return nil, ErrInsufficientBalance
	}
	w.TokenBalance--
	w.UpdatedAt = time.Now().UTC()
	cp := *w
	return &cp, nil
}
