package listings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayotona/rentora/internal/users"
)

func testAgent(id, name string) *users.User {
	return &users.User{ID: id, FullName: name, Role: users.RoleAgent}
}

func testAdmin(id string) *users.User {
	return &users.User{ID: id, FullName: "Admin", Role: users.RoleAdmin}
}

func sampleInput() CreateInput {
	return CreateInput{
		Title:        "2-bedroom flat",
		Description:  "Spacious flat in Yaba",
		Price:        450000,
		Location:     "Lagos",
		PropertyType: "apartment",
		ContactName:  "Bola",
		ContactPhone: "+2348012345678",
	}
}

func TestCreate(t *testing.T) {
	svc := NewService(NewMemoryStore())
	ctx := context.Background()

	p, err := svc.Create(ctx, testAgent("a1", "Bola A."), sampleInput())
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, StatusPending, p.Status)
	assert.Equal(t, "a1", p.AgentID)
	assert.Equal(t, "Bola A.", p.AgentName)
	assert.NotNil(t, p.Images)
}

func TestUpdate_Ownership(t *testing.T) {
	svc := NewService(NewMemoryStore())
	ctx := context.Background()

	p, err := svc.Create(ctx, testAgent("a1", "Bola"), sampleInput())
	require.NoError(t, err)

	newTitle := "3-bedroom flat"

	// Another agent may not touch it.
	_, err = svc.Update(ctx, testAgent("a2", "Other"), p.ID, UpdateInput{Title: &newTitle})
	assert.ErrorIs(t, err, ErrNotOwner)

	// The owner may.
	updated, err := svc.Update(ctx, testAgent("a1", "Bola"), p.ID, UpdateInput{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, "3-bedroom flat", updated.Title)
	assert.Equal(t, int64(450000), updated.Price)

	// So may an admin.
	price := int64(500000)
	updated, err = svc.Update(ctx, testAdmin("adm1"), p.ID, UpdateInput{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, int64(500000), updated.Price)
}

func TestReview(t *testing.T) {
	svc := NewService(NewMemoryStore())
	ctx := context.Background()

	p, err := svc.Create(ctx, testAgent("a1", "Bola"), sampleInput())
	require.NoError(t, err)

	reviewed, err := svc.Review(ctx, p.ID, StatusApproved, "adm1")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, reviewed.Status)
	assert.Equal(t, "adm1", reviewed.ApprovedByAdminID)

	_, err = svc.Review(ctx, p.ID, Status("pending"), "adm1")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.Review(ctx, "missing", StatusApproved, "adm1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetApproved(t *testing.T) {
	svc := NewService(NewMemoryStore())
	ctx := context.Background()

	p, err := svc.Create(ctx, testAgent("a1", "Bola"), sampleInput())
	require.NoError(t, err)

	_, err = svc.GetApproved(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Review(ctx, p.ID, StatusApproved, "adm1")
	require.NoError(t, err)

	got, err := svc.GetApproved(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
}

func TestListFilters(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store)
	ctx := context.Background()

	agent := testAgent("a1", "Bola")
	mk := func(price int64, ptype, location string, status Status) {
		in := sampleInput()
		in.Price = price
		in.PropertyType = ptype
		in.Location = location
		p, err := svc.Create(ctx, agent, in)
		require.NoError(t, err)
		if status != StatusPending {
			_, err = svc.Review(ctx, p.ID, status, "adm1")
			require.NoError(t, err)
		}
	}

	mk(300000, "apartment", "Lagos", StatusApproved)
	mk(800000, "duplex", "Lagos", StatusApproved)
	mk(500000, "apartment", "Abuja", StatusApproved)
	mk(400000, "apartment", "Lagos", StatusPending)

	approved, err := svc.List(ctx, Filter{Status: StatusApproved})
	require.NoError(t, err)
	assert.Len(t, approved, 3)

	apts, err := svc.List(ctx, Filter{Status: StatusApproved, PropertyType: "apartment"})
	require.NoError(t, err)
	assert.Len(t, apts, 2)

	lagos, err := svc.List(ctx, Filter{Status: StatusApproved, Location: "Lagos"})
	require.NoError(t, err)
	assert.Len(t, lagos, 2)

	priced, err := svc.List(ctx, Filter{Status: StatusApproved, MinPrice: 400000, MaxPrice: 600000})
	require.NoError(t, err)
	assert.Len(t, priced, 1)

	all, err := svc.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestListNewestFirst(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	old := &Property{ID: "p1", Status: StatusApproved, CreatedAt: time.Now().Add(-time.Hour)}
	recent := &Property{ID: "p2", Status: StatusApproved, CreatedAt: time.Now()}
	require.NoError(t, store.Create(ctx, old))
	require.NoError(t, store.Create(ctx, recent))

	props, err := store.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, props, 2)
	assert.Equal(t, "p2", props[0].ID)
}

func TestViewRedaction(t *testing.T) {
	p := &Property{ID: "p1", ContactName: "Bola", ContactPhone: "+2348012345678"}

	tests := []struct {
		name     string
		viewer   *users.User
		unlocked bool
		want     string
	}{
		{"public", nil, false, LockedContact},
		{"user locked", &users.User{Role: users.RoleUser}, false, LockedContact},
		{"user unlocked", &users.User{Role: users.RoleUser}, true, "+2348012345678"},
		{"agent", &users.User{Role: users.RoleAgent}, false, "+2348012345678"},
		{"admin", &users.User{Role: users.RoleAdmin}, false, "+2348012345678"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := ViewFor(p, tt.viewer, tt.unlocked)
			assert.Equal(t, tt.want, v.ContactPhone)
		})
	}

	// Redaction never mutates the source record.
	assert.Equal(t, "+2348012345678", p.ContactPhone)
}
