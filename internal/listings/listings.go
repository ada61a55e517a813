// Package listings manages the rental property catalog.
//
// Properties are created by agents, held pending until an admin review,
// and only approved listings are publicly visible. Contact details are
// redacted for regular users until unlocked.
package listings

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a property does not exist.
	ErrNotFound = errors.New("listings: property not found")
	// ErrNotOwner is returned when a non-owning agent tries to modify a
	// property.
	ErrNotOwner = errors.New("listings: not the listing agent")
	// ErrInvalidStatus is returned for an unknown review status.
	ErrInvalidStatus = errors.New("listings: invalid status")
)

// LockedContact is the sentinel shown in place of a redacted phone number.
const LockedContact = "***LOCKED***"

// Status is a listing's moderation state.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Property is a rental listing.
type Property struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	Price             int64     `json:"price"`
	Location          string    `json:"location"`
	PropertyType      string    `json:"property_type"`
	Images            []string  `json:"images"`
	ContactName       string    `json:"contact_name"`
	ContactPhone      string    `json:"contact_phone"`
	AgentID           string    `json:"agent_id"`
	AgentName         string    `json:"agent_name"`
	Status            Status    `json:"status"`
	ApprovedByAdminID string    `json:"approved_by_admin_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// Filter narrows a listing query. Zero values mean "any".
type Filter struct {
	Status       Status
	PropertyType string
	Location     string
	MinPrice     int64
	MaxPrice     int64
}

// Store persists properties.
type Store interface {
	Create(ctx context.Context, p *Property) error
	Get(ctx context.Context, id string) (*Property, error)
	Update(ctx context.Context, p *Property) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter Filter) ([]*Property, error)
	ListByAgent(ctx context.Context, agentID string) ([]*Property, error)
	Count(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status Status) (int, error)
}
