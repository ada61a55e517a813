package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayotona/rentora/internal/inspections"
	"github.com/ayotona/rentora/internal/listings"
	"github.com/ayotona/rentora/internal/payments"
	"github.com/ayotona/rentora/internal/users"
	"github.com/ayotona/rentora/internal/verification"
	"github.com/ayotona/rentora/internal/wallet"
)

type noopPromoter struct{}

func (noopPromoter) PromoteToAgent(ctx context.Context, userID string) error { return nil }

func setupStatsService(t *testing.T) *Service {
	t.Helper()
	ctx := context.Background()

	userStore := users.NewMemoryStore()
	propStore := listings.NewMemoryStore()
	inspStore := inspections.NewMemoryStore()
	verifStore := verification.NewMemoryStore()
	payStore := payments.NewMemoryStore()

	require.NoError(t, userStore.Create(ctx, &users.User{ID: "u1", Email: "a@x.ng", Role: users.RoleUser}))
	require.NoError(t, userStore.Create(ctx, &users.User{ID: "u2", Email: "b@x.ng", Role: users.RoleAgent}))
	require.NoError(t, userStore.Create(ctx, &users.User{ID: "u3", Email: "c@x.ng", Role: users.RoleAdmin}))

	require.NoError(t, propStore.Create(ctx, &listings.Property{ID: "p1", Status: listings.StatusApproved}))
	require.NoError(t, propStore.Create(ctx, &listings.Property{ID: "p2", Status: listings.StatusPending}))

	require.NoError(t, inspStore.Create(ctx, &inspections.Inspection{ID: "i1", Status: inspections.StatusPending}))
	require.NoError(t, inspStore.Create(ctx, &inspections.Inspection{ID: "i2", Status: inspections.StatusCompleted}))

	verifSvc := verification.NewService(verifStore, noopPromoter{})
	_, err := verifSvc.Submit(ctx, &users.User{ID: "u1", Role: users.RoleUser}, verification.SubmitInput{
		IDCardURL: "x", SelfieURL: "y", Address: "z",
	})
	require.NoError(t, err)

	paySvc := payments.NewService(payStore, wallet.NewService(wallet.NewMemoryStore()), payments.Config{
		TokenPrice: 1000, InspectionFee: 2000,
		CheckoutBaseURL: "https://checkout.korapay.com/checkout",
	})
	checkout, err := paySvc.InitiatePurchase(ctx, "u1", 3)
	require.NoError(t, err)
	require.NoError(t, paySvc.HandleEvent(ctx, payments.EventChargeSuccess, checkout.Reference, "KPY-1"))

	return NewService(userStore, propStore, inspStore, verifSvc, paySvc)
}

func TestStats(t *testing.T) {
	svc := setupStatsService(t)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalUsers)
	assert.Equal(t, 1, stats.TotalAgents)
	assert.Equal(t, 2, stats.TotalProperties)
	assert.Equal(t, 1, stats.ApprovedProperties)
	assert.Equal(t, 1, stats.PendingProperties)
	assert.Equal(t, 2, stats.TotalInspections)
	assert.Equal(t, 1, stats.PendingInspections)
	assert.Equal(t, 1, stats.CompletedInspections)
	assert.Equal(t, 1, stats.PendingVerifications)
	assert.Equal(t, int64(3000), stats.TokenRevenue)
	assert.Equal(t, int64(0), stats.InspectionRevenue)
	assert.Equal(t, int64(3000), stats.TotalRevenue)
}

func TestGetStatsHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := setupStatsService(t)

	r := gin.New()
	NewHandler(svc).RegisterAdminRoutes(r.Group("/api/admin"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/admin/stats", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Stats Stats `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(3000), resp.Stats.TotalRevenue)
}
