package inspections

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-memory inspection store for development and tests.
type MemoryStore struct {
	mu          sync.RWMutex
	inspections map[string]*Inspection
}

// NewMemoryStore creates an empty in-memory inspection store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{inspections: make(map[string]*Inspection)}
}

// Create inserts a new inspection.
func (m *MemoryStore) Create(ctx context.Context, i *Inspection) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *i
	m.inspections[i.ID] = &cp
	return nil
}

// Get returns an inspection by ID.
func (m *MemoryStore) Get(ctx context.Context, id string) (*Inspection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, ok := m.inspections[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *i
	return &cp, nil
}

// Update rewrites an existing inspection.
func (m *MemoryStore) Update(ctx context.Context, i *Inspection) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.inspections[i.ID]; !ok {
		return ErrNotFound
	}
	cp := *i
	m.inspections[i.ID] = &cp
	return nil
}

// ListByUser returns a user's inspections, newest first.
func (m *MemoryStore) ListByUser(ctx context.Context, userID string) ([]*Inspection, error) {
	return m.list(func(i *Inspection) bool { return i.UserID == userID }), nil
}

// ListByAgent returns inspections assigned to an agent, newest first.
func (m *MemoryStore) ListByAgent(ctx context.Context, agentID string) ([]*Inspection, error) {
	return m.list(func(i *Inspection) bool { return i.AgentID == agentID && agentID != "" }), nil
}

// ListAll returns every inspection, newest first.
func (m *MemoryStore) ListAll(ctx context.Context) ([]*Inspection, error) {
	return m.list(func(*Inspection) bool { return true }), nil
}

// Count returns the total number of inspections.
func (m *MemoryStore) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.inspections), nil
}

// CountByStatus returns the number of inspections in a status.
func (m *MemoryStore) CountByStatus(ctx context.Context, status Status) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, i := range m.inspections {
		if i.Status == status {
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) list(keep func(*Inspection) bool) []*Inspection {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Inspection
	for _, i := range m.inspections {
		if keep(i) {
			cp := *i
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(a, b int) bool {
		return out[a].CreatedAt.After(out[b].CreatedAt)
	})
	return out
}
