package listings

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-memory property store for development and tests.
type MemoryStore struct {
	mu         sync.RWMutex
	properties map[string]*Property
}

// NewMemoryStore creates an empty in-memory property store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{properties: make(map[string]*Property)}
}

// Create inserts a new property.
func (m *MemoryStore) Create(ctx context.Context, p *Property) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := clone(p)
	m.properties[p.ID] = cp
	return nil
}

// Get returns a property by ID.
func (m *MemoryStore) Get(ctx context.Context, id string) (*Property, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.properties[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(p), nil
}

// Update rewrites an existing property.
func (m *MemoryStore) Update(ctx context.Context, p *Property) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.properties[p.ID]; !ok {
		return ErrNotFound
	}
	m.properties[p.ID] = clone(p)
	return nil
}

// Delete removes a property.
func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.properties[id]; !ok {
		return ErrNotFound
	}
	delete(m.properties, id)
	return nil
}

// List returns properties matching the filter, newest first.
func (m *MemoryStore) List(ctx context.Context, filter Filter) ([]*Property, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Property
	for _, p := range m.properties {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.PropertyType != "" && p.PropertyType != filter.PropertyType {
			continue
		}
		if filter.Location != "" && p.Location != filter.Location {
			continue
		}
		if filter.MinPrice > 0 && p.Price < filter.MinPrice {
			continue
		}
		if filter.MaxPrice > 0 && p.Price > filter.MaxPrice {
			continue
		}
		out = append(out, clone(p))
	}
	sortNewestFirst(out)
	return out, nil
}

// ListByAgent returns an agent's properties, newest first.
func (m *MemoryStore) ListByAgent(ctx context.Context, agentID string) ([]*Property, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Property
	for _, p := range m.properties {
		if p.AgentID == agentID {
			out = append(out, clone(p))
		}
	}
	sortNewestFirst(out)
	return out, nil
}

// Count returns the total number of properties.
func (m *MemoryStore) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.properties), nil
}

// CountByStatus returns the number of properties in a status.
func (m *MemoryStore) CountByStatus(ctx context.Context, status Status) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, p := range m.properties {
		if p.Status == status {
			n++
		}
	}
	return n, nil
}

func clone(p *Property) *Property {
	cp := *p
	cp.Images = append([]string(nil), p.Images...)
	return &cp
}

func sortNewestFirst(ps []*Property) {
	sort.Slice(ps, func(i, j int) bool {
		return ps[i].CreatedAt.After(ps[j].CreatedAt)
	})
}
