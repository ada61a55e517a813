package unlocks

import (
	"context"
	"errors"
	"time"

	"github.com/ayotona/rentora/internal/idgen"
	"github.com/ayotona/rentora/internal/listings"
	"github.com/ayotona/rentora/internal/logging"
	"github.com/ayotona/rentora/internal/metrics"
	"github.com/ayotona/rentora/internal/wallet"
)

// PropertyGetter resolves approved properties.
type PropertyGetter interface {
	GetApproved(ctx context.Context, id string) (*listings.Property, error)
}

// TokenDebitor spends one wallet token.
type TokenDebitor interface {
	DebitOne(ctx context.Context, userID string) (*wallet.Wallet, error)
}

// Contact is the plaintext contact revealed by a successful unlock.
type Contact struct {
	ContactName  string `json:"contact_name"`
	ContactPhone string `json:"contact_phone"`
}

// View is an unlock joined with its property for listing.
type View struct {
	Unlock   *Unlock            `json:"unlock"`
	Property *listings.Property `json:"property,omitempty"`
}

// Service provides unlock operations.
type Service struct {
	store      Store
	properties PropertyGetter
	wallets    TokenDebitor
}

// NewService creates a new unlocks service.
func NewService(store Store, properties PropertyGetter, wallets TokenDebitor) *Service {
	return &Service{store: store, properties: properties, wallets: wallets}
}

// Unlock spends one token to reveal a property's contact details.
// Existence check first, then property and balance checks, then the
// debit, then the record insert.
func (s *Service) Unlock(ctx context.Context, userID, propertyID string) (*Contact, int64, error) {
	exists, err := s.store.Exists(ctx, userID, propertyID)
	if err != nil {
		return nil, 0, err
	}
	if exists {
		metrics.UnlocksTotal.WithLabelValues("already_unlocked").Inc()
		return nil, 0, ErrAlreadyUnlocked
	}

	p, err := s.properties.GetApproved(ctx, propertyID)
	if err != nil {
		if errors.Is(err, listings.ErrNotFound) {
			return nil, 0, ErrPropertyNotFound
		}
		return nil, 0, err
	}

	w, err := s.wallets.DebitOne(ctx, userID)
	if err != nil {
		if errors.Is(err, wallet.ErrInsufficientBalance) || errors.Is(err, wallet.ErrNotFound) {
			metrics.UnlocksTotal.WithLabelValues("insufficient_balance").Inc()
			return nil, 0, wallet.ErrInsufficientBalance
		}
		return nil, 0, err
	}

	u := &Unlock{
		ID:         idgen.New(),
		UserID:     userID,
		PropertyID: propertyID,
		UnlockedAt: time.Now().UTC(),
	}
	if err := s.store.Create(ctx, u); err != nil {
		if errors.Is(err, ErrAlreadyUnlocked) {
			// Lost a race with a concurrent unlock of the same pair. The
			// entitlement exists either way.
			metrics.UnlocksTotal.WithLabelValues("already_unlocked").Inc()
			return nil, 0, ErrAlreadyUnlocked
		}
		return nil, 0, err
	}

	metrics.UnlocksTotal.WithLabelValues("success").Inc()
	logging.L(ctx).Info("property unlocked",
		"user_id", userID,
		"property_id", propertyID,
		"balance", w.TokenBalance)
	return &Contact{ContactName: p.ContactName, ContactPhone: p.ContactPhone}, w.TokenBalance, nil
}

// IsUnlocked reports whether a user has unlocked a property. Satisfies
// listings.UnlockChecker.
func (s *Service) IsUnlocked(ctx context.Context, userID, propertyID string) (bool, error) {
	return s.store.Exists(ctx, userID, propertyID)
}

// ListByUser returns a user's unlocks with their properties attached.
// A property deleted since the unlock leaves the view without one.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]*View, error) {
	us, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]*View, 0, len(us))
	for _, u := range us {
		v := &View{Unlock: u}
		if p, err := s.properties.GetApproved(ctx, u.PropertyID); err == nil {
			v.Property = p
		}
		views = append(views, v)
	}
	return views, nil
}

// Count returns the total number of unlocks.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.store.Count(ctx)
}
