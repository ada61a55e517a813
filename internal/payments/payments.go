// Package payments records Korapay charges and reconciles webhook
// events against them.
//
// Two collections share one reference namespace: token purchases
// (TOKEN- prefix) fund wallets, inspection payments (INSP- prefix) fund
// bookings. References are the join key between a checkout session and
// the webhook that settles it. Nothing is credited on client say-so;
// only a verified webhook (or the dev simulator) moves state.
package payments

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrReferenceNotFound is returned when no record matches a reference.
	ErrReferenceNotFound = errors.New("payments: reference not found")
	// ErrInvalidSignature is returned when the webhook signature check fails.
	ErrInvalidSignature = errors.New("payments: invalid webhook signature")
	// ErrInvalidQuantity is returned for a non-positive token quantity.
	ErrInvalidQuantity = errors.New("payments: quantity must be positive")
)

// Event types Korapay delivers that we act on.
const (
	EventChargeSuccess = "charge.success"
	EventChargeFailed  = "charge.failed"
)

// Status is a payment record's state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// TokenPurchase is a pending or settled wallet top-up.
type TokenPurchase struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	Reference         string    `json:"reference"`
	Amount            int64     `json:"amount"`
	TokensAdded       int64     `json:"tokens_added"`
	Status            Status    `json:"status"`
	ProviderReference string    `json:"provider_reference,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// InspectionPayment is a pending or settled inspection fee.
type InspectionPayment struct {
	ID                string    `json:"id"`
	InspectionID      string    `json:"inspection_id"`
	UserID            string    `json:"user_id"`
	Reference         string    `json:"reference"`
	Amount            int64     `json:"amount"`
	Status            Status    `json:"status"`
	ProviderReference string    `json:"provider_reference,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// Store persists payment records and webhook idempotency markers.
// MarkEventProcessed must be atomic: exactly one caller per
// (reference, eventType) pair observes false.
type Store interface {
	CreateTokenPurchase(ctx context.Context, tp *TokenPurchase) error
	GetTokenPurchaseByReference(ctx context.Context, reference string) (*TokenPurchase, error)
	UpdateTokenPurchase(ctx context.Context, tp *TokenPurchase) error
	ListTokenPurchasesByUser(ctx context.Context, userID string) ([]*TokenPurchase, error)
	ListTokenPurchases(ctx context.Context) ([]*TokenPurchase, error)
	SumCompletedTokenPurchases(ctx context.Context) (int64, error)

	CreateInspectionPayment(ctx context.Context, ip *InspectionPayment) error
	GetInspectionPaymentByReference(ctx context.Context, reference string) (*InspectionPayment, error)
	UpdateInspectionPayment(ctx context.Context, ip *InspectionPayment) error
	ListInspectionPaymentsByUser(ctx context.Context, userID string) ([]*InspectionPayment, error)
	ListInspectionPayments(ctx context.Context) ([]*InspectionPayment, error)
	SumCompletedInspectionPayments(ctx context.Context) (int64, error)

	MarkEventProcessed(ctx context.Context, reference, eventType string) (alreadyProcessed bool, err error)
}
