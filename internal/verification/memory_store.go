package verification

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-memory verification store for development and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	requests map[string]*Request
}

// NewMemoryStore creates an empty in-memory verification store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{requests: make(map[string]*Request)}
}

// Create inserts a new request.
func (m *MemoryStore) Create(ctx context.Context, r *Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	m.requests[r.ID] = &cp
	return nil
}

// Get returns a request by ID.
func (m *MemoryStore) Get(ctx context.Context, id string) (*Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

// GetPendingByUser returns the user's pending request, if any.
func (m *MemoryStore) GetPendingByUser(ctx context.Context, userID string) (*Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.requests {
		if r.UserID == userID && r.Status == StatusPending {
			cp := *r
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

// GetLatestByUser returns the user's most recent request.
func (m *MemoryStore) GetLatestByUser(ctx context.Context, userID string) (*Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var latest *Request
	for _, r := range m.requests {
		if r.UserID != userID {
			continue
		}
		if latest == nil || r.CreatedAt.After(latest.CreatedAt) {
			latest = r
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

// Update rewrites an existing request.
func (m *MemoryStore) Update(ctx context.Context, r *Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.requests[r.ID]; !ok {
		return ErrNotFound
	}
	cp := *r
	m.requests[r.ID] = &cp
	return nil
}

// ListByStatus returns requests in a status, newest first.
func (m *MemoryStore) ListByStatus(ctx context.Context, status Status) ([]*Request, error) {
	return m.list(func(r *Request) bool { return r.Status == status }), nil
}

// ListAll returns every request, newest first.
func (m *MemoryStore) ListAll(ctx context.Context) ([]*Request, error) {
	return m.list(func(*Request) bool { return true }), nil
}

// CountByStatus returns the number of requests in a status.
func (m *MemoryStore) CountByStatus(ctx context.Context, status Status) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, r := range m.requests {
		if r.Status == status {
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) list(keep func(*Request) bool) []*Request {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Request
	for _, r := range m.requests {
		if keep(r) {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
