// Package inspections manages paid property inspection bookings.
//
// A booking starts unpaid; the payment reconciler marks it paid once the
// provider confirms the charge, which also moves the booking into the
// assignment pipeline. Agent contact details stay hidden until payment
// completes.
package inspections

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when an inspection does not exist.
	ErrNotFound = errors.New("inspections: not found")
	// ErrPropertyNotFound is returned when the property is absent or not
	// approved.
	ErrPropertyNotFound = errors.New("inspections: property not found")
	// ErrForbidden is returned when the actor may not touch the inspection.
	ErrForbidden = errors.New("inspections: forbidden")
	// ErrPaymentIncomplete is returned when the inspection has not been
	// paid for.
	ErrPaymentIncomplete = errors.New("inspections: payment incomplete")
	// ErrInvalidStatus is returned for an unknown inspection status.
	ErrInvalidStatus = errors.New("inspections: invalid status")
)

// Status is an inspection's workflow state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAssigned  Status = "assigned"
	StatusCompleted Status = "completed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAssigned, StatusCompleted:
		return true
	}
	return false
}

// PaymentStatus is an inspection's payment state.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// Inspection is a booked property inspection.
type Inspection struct {
	ID               string        `json:"id"`
	UserID           string        `json:"user_id"`
	UserName         string        `json:"user_name"`
	UserEmail        string        `json:"user_email"`
	PropertyID       string        `json:"property_id"`
	PropertyTitle    string        `json:"property_title"`
	AgentID          string        `json:"agent_id,omitempty"`
	AgentName        string        `json:"agent_name,omitempty"`
	InspectionDate   time.Time     `json:"inspection_date"`
	Status           Status        `json:"status"`
	PaymentStatus    PaymentStatus `json:"payment_status"`
	PaymentReference string        `json:"payment_reference"`
	CreatedAt        time.Time     `json:"created_at"`
}

// Store persists inspections.
type Store interface {
	Create(ctx context.Context, i *Inspection) error
	Get(ctx context.Context, id string) (*Inspection, error)
	Update(ctx context.Context, i *Inspection) error
	ListByUser(ctx context.Context, userID string) ([]*Inspection, error)
	ListByAgent(ctx context.Context, agentID string) ([]*Inspection, error)
	ListAll(ctx context.Context) ([]*Inspection, error)
	Count(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status Status) (int, error)
}
