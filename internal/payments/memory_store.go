package payments

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-memory payment store for development and tests.
type MemoryStore struct {
	mu        sync.RWMutex
	purchases map[string]*TokenPurchase     // keyed by reference
	fees      map[string]*InspectionPayment // keyed by reference
	processed map[string]bool               // reference + "/" + event type
}

// NewMemoryStore creates an empty in-memory payment store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		purchases: make(map[string]*TokenPurchase),
		fees:      make(map[string]*InspectionPayment),
		processed: make(map[string]bool),
	}
}

// CreateTokenPurchase inserts a token purchase record.
func (m *MemoryStore) CreateTokenPurchase(ctx context.Context, tp *TokenPurchase) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *tp
	m.purchases[tp.Reference] = &cp
	return nil
}

// GetTokenPurchaseByReference returns a token purchase by reference.
func (m *MemoryStore) GetTokenPurchaseByReference(ctx context.Context, reference string) (*TokenPurchase, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tp, ok := m.purchases[reference]
	if !ok {
		return nil, ErrReferenceNotFound
	}
	cp := *tp
	return &cp, nil
}

// UpdateTokenPurchase rewrites a token purchase record.
func (m *MemoryStore) UpdateTokenPurchase(ctx context.Context, tp *TokenPurchase) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.purchases[tp.Reference]; !ok {
		return ErrReferenceNotFound
	}
	cp := *tp
	m.purchases[tp.Reference] = &cp
	return nil
}

// ListTokenPurchasesByUser returns a user's token purchases, newest first.
func (m *MemoryStore) ListTokenPurchasesByUser(ctx context.Context, userID string) ([]*TokenPurchase, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*TokenPurchase
	for _, tp := range m.purchases {
		if tp.UserID == userID {
			cp := *tp
			out = append(out, &cp)
		}
	}
	sortPurchases(out)
	return out, nil
}

// ListTokenPurchases returns every token purchase, newest first.
func (m *MemoryStore) ListTokenPurchases(ctx context.Context) ([]*TokenPurchase, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*TokenPurchase, 0, len(m.purchases))
	for _, tp := range m.purchases {
		cp := *tp
		out = append(out, &cp)
	}
	sortPurchases(out)
	return out, nil
}

// SumCompletedTokenPurchases totals the amounts of completed purchases.
func (m *MemoryStore) SumCompletedTokenPurchases(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var sum int64
	for _, tp := range m.purchases {
		if tp.Status == StatusCompleted {
			sum += tp.Amount
		}
	}
	return sum, nil
}

// CreateInspectionPayment inserts an inspection payment record.
func (m *MemoryStore) CreateInspectionPayment(ctx context.Context, ip *InspectionPayment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *ip
	m.fees[ip.Reference] = &cp
	return nil
}

// GetInspectionPaymentByReference returns an inspection payment by reference.
func (m *MemoryStore) GetInspectionPaymentByReference(ctx context.Context, reference string) (*InspectionPayment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ip, ok := m.fees[reference]
	if !ok {
		return nil, ErrReferenceNotFound
	}
	cp := *ip
	return &cp, nil
}

// UpdateInspectionPayment rewrites an inspection payment record.
func (m *MemoryStore) UpdateInspectionPayment(ctx context.Context, ip *InspectionPayment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.fees[ip.Reference]; !ok {
		return ErrReferenceNotFound
	}
	cp := *ip
	m.fees[ip.Reference] = &cp
	return nil
}

// ListInspectionPaymentsByUser returns a user's inspection payments, newest first.
func (m *MemoryStore) ListInspectionPaymentsByUser(ctx context.Context, userID string) ([]*InspectionPayment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*InspectionPayment
	for _, ip := range m.fees {
		if ip.UserID == userID {
			cp := *ip
			out = append(out, &cp)
		}
	}
	sortFees(out)
	return out, nil
}

// ListInspectionPayments returns every inspection payment, newest first.
func (m *MemoryStore) ListInspectionPayments(ctx context.Context) ([]*InspectionPayment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*InspectionPayment, 0, len(m.fees))
	for _, ip := range m.fees {
		cp := *ip
		out = append(out, &cp)
	}
	sortFees(out)
	return out, nil
}

// SumCompletedInspectionPayments totals the amounts of completed fees.
func (m *MemoryStore) SumCompletedInspectionPayments(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var sum int64
	for _, ip := range m.fees {
		if ip.Status == StatusCompleted {
			sum += ip.Amount
		}
	}
	return sum, nil
}

// MarkEventProcessed records the idempotency marker, reporting whether
// it already existed.
func (m *MemoryStore) MarkEventProcessed(ctx context.Context, reference, eventType string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := reference + "/" + eventType
	if m.processed[key] {
		return true, nil
	}
	m.processed[key] = true
	return false, nil
}

func sortPurchases(ps []*TokenPurchase) {
	sort.Slice(ps, func(i, j int) bool {
		return ps[i].CreatedAt.After(ps[j].CreatedAt)
	})
}

func sortFees(ps []*InspectionPayment) {
	sort.Slice(ps, func(i, j int) bool {
		return ps[i].CreatedAt.After(ps[j].CreatedAt)
	})
}
