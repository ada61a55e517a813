// Package verification handles agent verification requests: a user
// submits identity documents, an admin reviews them, and approval
// promotes the user to agent.
package verification

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a request does not exist.
	ErrNotFound = errors.New("verification: request not found")
	// ErrDuplicateRequest is returned when the user already has a
	// pending request.
	ErrDuplicateRequest = errors.New("verification: a pending request already exists")
	// ErrNotEligible is returned when the submitter is not a regular user.
	ErrNotEligible = errors.New("verification: only regular users may apply")
	// ErrInvalidStatus is returned for an unknown review status.
	ErrInvalidStatus = errors.New("verification: invalid status")
)

// Status is a verification request's review state.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Request is an agent verification application.
type Request struct {
	ID                string     `json:"id"`
	UserID            string     `json:"user_id"`
	UserName          string     `json:"user_name"`
	UserEmail         string     `json:"user_email"`
	IDCardURL         string     `json:"id_card_url"`
	SelfieURL         string     `json:"selfie_url"`
	Address           string     `json:"address"`
	Status            Status     `json:"status"`
	ReviewedByAdminID string     `json:"reviewed_by_admin_id,omitempty"`
	ReviewedAt        *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// Store persists verification requests.
type Store interface {
	Create(ctx context.Context, r *Request) error
	Get(ctx context.Context, id string) (*Request, error)
	GetPendingByUser(ctx context.Context, userID string) (*Request, error)
	GetLatestByUser(ctx context.Context, userID string) (*Request, error)
	Update(ctx context.Context, r *Request) error
	ListByStatus(ctx context.Context, status Status) ([]*Request, error)
	ListAll(ctx context.Context) ([]*Request, error)
	CountByStatus(ctx context.Context, status Status) (int, error)
}
