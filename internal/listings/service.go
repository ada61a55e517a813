package listings

import (
	"context"
	"time"

	"github.com/ayotona/rentora/internal/idgen"
	"github.com/ayotona/rentora/internal/logging"
	"github.com/ayotona/rentora/internal/users"
)

// CreateInput carries the agent-supplied fields of a new listing.
type CreateInput struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Price        int64    `json:"price"`
	Location     string   `json:"location"`
	PropertyType string   `json:"property_type"`
	Images       []string `json:"images"`
	ContactName  string   `json:"contact_name"`
	ContactPhone string   `json:"contact_phone"`
}

// UpdateInput carries the mutable fields of a listing. Nil fields are
// left unchanged.
type UpdateInput struct {
	Title        *string   `json:"title"`
	Description  *string   `json:"description"`
	Price        *int64    `json:"price"`
	Location     *string   `json:"location"`
	PropertyType *string   `json:"property_type"`
	Images       *[]string `json:"images"`
	ContactName  *string   `json:"contact_name"`
	ContactPhone *string   `json:"contact_phone"`
}

// Service provides listing operations over a Store.
type Service struct {
	store Store
}

// NewService creates a new listings service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create adds a new pending listing owned by the acting agent.
func (s *Service) Create(ctx context.Context, actor *users.User, in CreateInput) (*Property, error) {
	p := &Property{
		ID:           idgen.New(),
		Title:        in.Title,
		Description:  in.Description,
		Price:        in.Price,
		Location:     in.Location,
		PropertyType: in.PropertyType,
		Images:       in.Images,
		ContactName:  in.ContactName,
		ContactPhone: in.ContactPhone,
		AgentID:      actor.ID,
		AgentName:    actor.FullName,
		Status:       StatusPending,
		CreatedAt:    time.Now().UTC(),
	}
	if p.Images == nil {
		p.Images = []string{}
	}

	if err := s.store.Create(ctx, p); err != nil {
		return nil, err
	}
	logging.L(ctx).Info("property created", "property_id", p.ID, "agent_id", actor.ID)
	return p, nil
}

// Get returns a property by ID.
func (s *Service) Get(ctx context.Context, id string) (*Property, error) {
	return s.store.Get(ctx, id)
}

// GetApproved returns a property only if it exists and is approved.
func (s *Service) GetApproved(ctx context.Context, id string) (*Property, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status != StatusApproved {
		return nil, ErrNotFound
	}
	return p, nil
}

// Update modifies a listing. Only the owning agent or an admin may do so.
func (s *Service) Update(ctx context.Context, actor *users.User, id string, in UpdateInput) (*Property, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != users.RoleAdmin && p.AgentID != actor.ID {
		return nil, ErrNotOwner
	}

	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Location != nil {
		p.Location = *in.Location
	}
	if in.PropertyType != nil {
		p.PropertyType = *in.PropertyType
	}
	if in.Images != nil {
		p.Images = *in.Images
	}
	if in.ContactName != nil {
		p.ContactName = *in.ContactName
	}
	if in.ContactPhone != nil {
		p.ContactPhone = *in.ContactPhone
	}

	if err := s.store.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a listing.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// List returns listings matching a filter.
func (s *Service) List(ctx context.Context, filter Filter) ([]*Property, error) {
	return s.store.List(ctx, filter)
}

// ListByAgent returns an agent's own listings.
func (s *Service) ListByAgent(ctx context.Context, agentID string) ([]*Property, error) {
	return s.store.ListByAgent(ctx, agentID)
}

// Review sets a listing's moderation status and records the reviewing admin.
func (s *Service) Review(ctx context.Context, id string, status Status, adminID string) (*Property, error) {
	if status != StatusApproved && status != StatusRejected {
		return nil, ErrInvalidStatus
	}

	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Status = status
	p.ApprovedByAdminID = adminID
	if err := s.store.Update(ctx, p); err != nil {
		return nil, err
	}
	logging.L(ctx).Info("property reviewed",
		"property_id", p.ID,
		"status", string(status),
		"admin_id", adminID)
	return p, nil
}
