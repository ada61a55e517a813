package verification

import (
	"context"
	"errors"
	"time"

	"github.com/ayotona/rentora/internal/idgen"
	"github.com/ayotona/rentora/internal/logging"
	"github.com/ayotona/rentora/internal/users"
)

// AgentPromoter flips an approved applicant's role to agent.
type AgentPromoter interface {
	PromoteToAgent(ctx context.Context, userID string) error
}

// SubmitInput carries the applicant-supplied documents.
type SubmitInput struct {
	IDCardURL string `json:"id_card_url"`
	SelfieURL string `json:"selfie_url"`
	Address   string `json:"address"`
}

// Service provides verification operations.
type Service struct {
	store    Store
	promoter AgentPromoter
}

// NewService creates a new verification service.
func NewService(store Store, promoter AgentPromoter) *Service {
	return &Service{store: store, promoter: promoter}
}

// Submit files a verification request for a regular user. At most one
// pending request per user.
func (s *Service) Submit(ctx context.Context, applicant *users.User, in SubmitInput) (*Request, error) {
	if applicant.Role != users.RoleUser {
		return nil, ErrNotEligible
	}

	if _, err := s.store.GetPendingByUser(ctx, applicant.ID); err == nil {
		return nil, ErrDuplicateRequest
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	r := &Request{
		ID:        idgen.New(),
		UserID:    applicant.ID,
		UserName:  applicant.FullName,
		UserEmail: applicant.Email,
		IDCardURL: in.IDCardURL,
		SelfieURL: in.SelfieURL,
		Address:   in.Address,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Create(ctx, r); err != nil {
		return nil, err
	}

	logging.L(ctx).Info("verification request submitted",
		"request_id", r.ID,
		"user_id", applicant.ID)
	return r, nil
}

// MyRequest returns the user's most recent request.
func (s *Service) MyRequest(ctx context.Context, userID string) (*Request, error) {
	return s.store.GetLatestByUser(ctx, userID)
}

// ListPending returns all pending requests.
func (s *Service) ListPending(ctx context.Context) ([]*Request, error) {
	return s.store.ListByStatus(ctx, StatusPending)
}

// ListAll returns every request.
func (s *Service) ListAll(ctx context.Context) ([]*Request, error) {
	return s.store.ListAll(ctx)
}

// Review settles a request. Approval promotes the applicant to agent.
func (s *Service) Review(ctx context.Context, requestID string, status Status, adminID string) (*Request, error) {
	if status != StatusApproved && status != StatusRejected {
		return nil, ErrInvalidStatus
	}

	r, err := s.store.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	r.Status = status
	r.ReviewedByAdminID = adminID
	r.ReviewedAt = &now
	if err := s.store.Update(ctx, r); err != nil {
		return nil, err
	}

	if status == StatusApproved {
		if err := s.promoter.PromoteToAgent(ctx, r.UserID); err != nil {
			return nil, err
		}
	}

	logging.L(ctx).Info("verification request reviewed",
		"request_id", r.ID,
		"status", string(status),
		"admin_id", adminID)
	return r, nil
}

// CountPending returns the number of pending requests.
func (s *Service) CountPending(ctx context.Context) (int, error) {
	return s.store.CountByStatus(ctx, StatusPending)
}
