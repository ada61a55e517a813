// Package unlocks records which users have paid to see which property
// contacts. An unlock is permanent: the (user, property) pair is the
// entitlement, and it is never removed.
package unlocks

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrAlreadyUnlocked is returned when the pair already exists.
	ErrAlreadyUnlocked = errors.New("unlocks: property already unlocked")
	// ErrPropertyNotFound is returned when the property is absent or not
	// approved.
	ErrPropertyNotFound = errors.New("unlocks: property not found")
)

// Unlock is a single paid contact reveal.
type Unlock struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	PropertyID string    `json:"property_id"`
	UnlockedAt time.Time `json:"unlocked_at"`
}

// Store persists unlocks.
type Store interface {
	Create(ctx context.Context, u *Unlock) error
	Exists(ctx context.Context, userID, propertyID string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]*Unlock, error)
	Count(ctx context.Context) (int, error)
}
