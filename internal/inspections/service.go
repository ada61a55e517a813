package inspections

import (
	"context"
	"errors"
	"time"

	"github.com/ayotona/rentora/internal/idgen"
	"github.com/ayotona/rentora/internal/listings"
	"github.com/ayotona/rentora/internal/logging"
	"github.com/ayotona/rentora/internal/metrics"
	"github.com/ayotona/rentora/internal/users"
)

// PropertyGetter resolves approved properties.
type PropertyGetter interface {
	GetApproved(ctx context.Context, id string) (*listings.Property, error)
}

// PaymentInitiator mints the pending payment for a new booking and
// returns its reference, amount and checkout URL.
type PaymentInitiator interface {
	InitiateInspectionPayment(ctx context.Context, inspectionID, userID string) (reference string, amount int64, checkoutURL string, err error)
}

// UserGetter resolves user records for agent assignment and contact reveal.
type UserGetter interface {
	Get(ctx context.Context, id string) (*users.User, error)
}

// Booking is the response to a new inspection request.
type Booking struct {
	Inspection  *Inspection `json:"inspection"`
	Reference   string      `json:"reference"`
	Amount      int64       `json:"amount"`
	CheckoutURL string      `json:"checkout_url"`
}

// AgentContact is the assigned agent's contact, revealed after payment.
type AgentContact struct {
	AgentName  string `json:"agent_name"`
	AgentEmail string `json:"agent_email"`
}

// UpdateInput carries an inspection update. Nil fields are left unchanged.
type UpdateInput struct {
	Status  *string `json:"status"`
	AgentID *string `json:"agent_id"`
}

// Service provides inspection operations.
type Service struct {
	store      Store
	properties PropertyGetter
	payments   PaymentInitiator
	users      UserGetter
}

// NewService creates a new inspections service. The payment initiator is
// attached later via SetPayments to break the construction cycle with
// the payments service.
func NewService(store Store, properties PropertyGetter, users UserGetter) *Service {
	return &Service{store: store, properties: properties, users: users}
}

// SetPayments attaches the payment initiator.
func (s *Service) SetPayments(p PaymentInitiator) {
	s.payments = p
}

// Request books an inspection for an approved property and mints its
// pending payment.
func (s *Service) Request(ctx context.Context, requester *users.User, propertyID string, date time.Time) (*Booking, error) {
	p, err := s.properties.GetApproved(ctx, propertyID)
	if err != nil {
		if errors.Is(err, listings.ErrNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}

	i := &Inspection{
		ID:             idgen.New(),
		UserID:         requester.ID,
		UserName:       requester.FullName,
		UserEmail:      requester.Email,
		PropertyID:     p.ID,
		PropertyTitle:  p.Title,
		InspectionDate: date,
		Status:         StatusPending,
		PaymentStatus:  PaymentPending,
		CreatedAt:      time.Now().UTC(),
	}

	reference, amount, checkoutURL, err := s.payments.InitiateInspectionPayment(ctx, i.ID, requester.ID)
	if err != nil {
		return nil, err
	}
	i.PaymentReference = reference

	if err := s.store.Create(ctx, i); err != nil {
		return nil, err
	}

	metrics.InspectionsRequestedTotal.Inc()
	logging.L(ctx).Info("inspection requested",
		"inspection_id", i.ID,
		"property_id", p.ID,
		"user_id", requester.ID,
		"reference", reference)
	return &Booking{
		Inspection:  i,
		Reference:   reference,
		Amount:      amount,
		CheckoutURL: checkoutURL,
	}, nil
}

// Get returns an inspection by ID.
func (s *Service) Get(ctx context.Context, id string) (*Inspection, error) {
	return s.store.Get(ctx, id)
}

// Update applies a status change or reassignment. Agents may only mark
// their own assigned inspections completed; admins may set any status
// and reassign the agent.
func (s *Service) Update(ctx context.Context, actor *users.User, id string, in UpdateInput) (*Inspection, error) {
	i, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if actor.Role == users.RoleAdmin {
		if in.Status != nil {
			status := Status(*in.Status)
			if !status.Valid() {
				return nil, ErrInvalidStatus
			}
			i.Status = status
		}
		if in.AgentID != nil {
			agent, err := s.users.Get(ctx, *in.AgentID)
			if err != nil {
				return nil, ErrForbidden
			}
			i.AgentID = agent.ID
			i.AgentName = agent.FullName
			if i.Status == StatusPending {
				i.Status = StatusAssigned
			}
		}
	} else {
		if i.AgentID != actor.ID {
			return nil, ErrForbidden
		}
		if in.AgentID != nil {
			return nil, ErrForbidden
		}
		if in.Status == nil || Status(*in.Status) != StatusCompleted {
			return nil, ErrForbidden
		}
		i.Status = StatusCompleted
	}

	if err := s.store.Update(ctx, i); err != nil {
		return nil, err
	}
	return i, nil
}

// AgentContact reveals the assigned agent's contact for a paid booking.
func (s *Service) AgentContact(ctx context.Context, requester *users.User, id string) (*AgentContact, error) {
	i, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if requester.Role != users.RoleAdmin && i.UserID != requester.ID {
		return nil, ErrForbidden
	}
	if i.PaymentStatus != PaymentCompleted {
		return nil, ErrPaymentIncomplete
	}
	if i.AgentID == "" {
		return nil, ErrNotFound
	}

	agent, err := s.users.Get(ctx, i.AgentID)
	if err != nil {
		return nil, err
	}
	return &AgentContact{AgentName: agent.FullName, AgentEmail: agent.Email}, nil
}

// ListByUser returns a user's bookings.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]*Inspection, error) {
	return s.store.ListByUser(ctx, userID)
}

// ListByAgent returns bookings assigned to an agent.
func (s *Service) ListByAgent(ctx context.Context, agentID string) ([]*Inspection, error) {
	return s.store.ListByAgent(ctx, agentID)
}

// ListAll returns every booking.
func (s *Service) ListAll(ctx context.Context) ([]*Inspection, error) {
	return s.store.ListAll(ctx)
}

// CompletePayment marks a booking paid and moves a pending one into the
// assignment pipeline. Reconciler-only.
func (s *Service) CompletePayment(ctx context.Context, id string) error {
	i, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if i.PaymentStatus == PaymentCompleted {
		return nil
	}
	i.PaymentStatus = PaymentCompleted
	if i.Status == StatusPending {
		i.Status = StatusAssigned
	}
	if err := s.store.Update(ctx, i); err != nil {
		return err
	}
	logging.L(ctx).Info("inspection payment completed", "inspection_id", i.ID)
	return nil
}
