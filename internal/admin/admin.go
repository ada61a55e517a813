// Package admin aggregates platform statistics for the dashboard.
package admin

import (
	"context"

	"github.com/ayotona/rentora/internal/inspections"
	"github.com/ayotona/rentora/internal/listings"
	"github.com/ayotona/rentora/internal/users"
)

// Stats is the admin dashboard summary.
type Stats struct {
	TotalUsers           int   `json:"total_users"`
	TotalAgents          int   `json:"total_agents"`
	TotalProperties      int   `json:"total_properties"`
	ApprovedProperties   int   `json:"approved_properties"`
	PendingProperties    int   `json:"pending_properties"`
	TotalInspections     int   `json:"total_inspections"`
	PendingInspections   int   `json:"pending_inspections"`
	CompletedInspections int   `json:"completed_inspections"`
	PendingVerifications int   `json:"pending_verifications"`
	TokenRevenue         int64 `json:"token_revenue"`
	InspectionRevenue    int64 `json:"inspection_revenue"`
	TotalRevenue         int64 `json:"total_revenue"`
}

// UserCounter reports account totals.
type UserCounter interface {
	Count(ctx context.Context) (int, error)
	CountByRole(ctx context.Context, role users.Role) (int, error)
}

// PropertyCounter reports catalog totals.
type PropertyCounter interface {
	Count(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status listings.Status) (int, error)
}

// InspectionCounter reports booking totals.
type InspectionCounter interface {
	Count(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status inspections.Status) (int, error)
}

// VerificationCounter reports pending application totals.
type VerificationCounter interface {
	CountPending(ctx context.Context) (int, error)
}

// RevenueProvider reports settled charge totals.
type RevenueProvider interface {
	Revenue(ctx context.Context) (tokens int64, inspections int64, err error)
}
