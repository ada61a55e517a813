package admin

import (
	"context"

	"github.com/ayotona/rentora/internal/inspections"
	"github.com/ayotona/rentora/internal/listings"
	"github.com/ayotona/rentora/internal/users"
)

// Service computes dashboard statistics from the domain stores.
type Service struct {
	users         UserCounter
	properties    PropertyCounter
	inspections   InspectionCounter
	verifications VerificationCounter
	revenue       RevenueProvider
}

// NewService creates a new admin service.
func NewService(u UserCounter, p PropertyCounter, i InspectionCounter, v VerificationCounter, r RevenueProvider) *Service {
	return &Service{users: u, properties: p, inspections: i, verifications: v, revenue: r}
}

// Stats gathers the dashboard summary. Plain counts and sums; nothing
// is cached.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{}
	var err error

	if st.TotalUsers, err = s.users.Count(ctx); err != nil {
		return nil, err
	}
	if st.TotalAgents, err = s.users.CountByRole(ctx, users.RoleAgent); err != nil {
		return nil, err
	}
	if st.TotalProperties, err = s.properties.Count(ctx); err != nil {
		return nil, err
	}
	if st.ApprovedProperties, err = s.properties.CountByStatus(ctx, listings.StatusApproved); err != nil {
		return nil, err
	}
	if st.PendingProperties, err = s.properties.CountByStatus(ctx, listings.StatusPending); err != nil {
		return nil, err
	}
	if st.TotalInspections, err = s.inspections.Count(ctx); err != nil {
		return nil, err
	}
	if st.PendingInspections, err = s.inspections.CountByStatus(ctx, inspections.StatusPending); err != nil {
		return nil, err
	}
	if st.CompletedInspections, err = s.inspections.CountByStatus(ctx, inspections.StatusCompleted); err != nil {
		return nil, err
	}
	if st.PendingVerifications, err = s.verifications.CountPending(ctx); err != nil {
		return nil, err
	}
	if st.TokenRevenue, st.InspectionRevenue, err = s.revenue.Revenue(ctx); err != nil {
		return nil, err
	}
	st.TotalRevenue = st.TokenRevenue + st.InspectionRevenue
	return st, nil
}
