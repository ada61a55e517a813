package inspections

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayotona/rentora/internal/listings"
	"github.com/ayotona/rentora/internal/users"
)

type mockPayments struct {
	calls int
	fail  error
}

func (m *mockPayments) InitiateInspectionPayment(ctx context.Context, inspectionID, userID string) (string, int64, string, error) {
	if m.fail != nil {
		return "", 0, "", m.fail
	}
	m.calls++
	ref := fmt.Sprintf("INSP-20260829-%08X", m.calls)
	return ref, 2000, "https://checkout.korapay.com/checkout?reference=" + ref, nil
}

type mockUsers struct {
	users map[string]*users.User
}

func (m *mockUsers) Get(ctx context.Context, id string) (*users.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	return u, nil
}

func setupTestService(t *testing.T) (*Service, *listings.Service, *mockUsers) {
	t.Helper()

	props := listings.NewService(listings.NewMemoryStore())
	userDir := &mockUsers{users: map[string]*users.User{
		"agent-1": {ID: "agent-1", FullName: "Bola A.", Email: "bola@agency.ng", Role: users.RoleAgent},
	}}
	svc := NewService(NewMemoryStore(), props, userDir)
	svc.SetPayments(&mockPayments{})
	return svc, props, userDir
}

func requester() *users.User {
	return &users.User{ID: "u1", FullName: "Ada", Email: "ada@example.com", Role: users.RoleUser}
}

func admin() *users.User {
	return &users.User{ID: "adm1", FullName: "Admin", Role: users.RoleAdmin}
}

func approvedProperty(t *testing.T, props *listings.Service) *listings.Property {
	t.Helper()
	ctx := context.Background()

	agent := &users.User{ID: "agent-1", FullName: "Bola A.", Role: users.RoleAgent}
	p, err := props.Create(ctx, agent, listings.CreateInput{
		Title: "2-bedroom flat", Price: 450000, Location: "Lagos",
		PropertyType: "apartment", ContactName: "Bola", ContactPhone: "+2348012345678",
	})
	require.NoError(t, err)
	_, err = props.Review(ctx, p.ID, listings.StatusApproved, "adm1")
	require.NoError(t, err)
	return p
}

func TestRequest(t *testing.T) {
	svc, props, _ := setupTestService(t)
	ctx := context.Background()
	p := approvedProperty(t, props)

	date := time.Now().Add(48 * time.Hour)
	booking, err := svc.Request(ctx, requester(), p.ID, date)
	require.NoError(t, err)

	i := booking.Inspection
	assert.Equal(t, StatusPending, i.Status)
	assert.Equal(t, PaymentPending, i.PaymentStatus)
	assert.Equal(t, "Ada", i.UserName)
	assert.Equal(t, "2-bedroom flat", i.PropertyTitle)
	assert.Regexp(t, `^INSP-\d{8}-[0-9A-F]{8}$`, booking.Reference)
	assert.Equal(t, booking.Reference, i.PaymentReference)
	assert.Equal(t, int64(2000), booking.Amount)
	assert.Contains(t, booking.CheckoutURL, booking.Reference)
}

func TestRequest_PropertyNotFound(t *testing.T) {
	svc, props, _ := setupTestService(t)
	ctx := context.Background()

	_, err := svc.Request(ctx, requester(), "missing", time.Now())
	assert.ErrorIs(t, err, ErrPropertyNotFound)

	// Pending listings cannot be booked.
	agent := &users.User{ID: "agent-1", FullName: "Bola", Role: users.RoleAgent}
	pending, err := props.Create(ctx, agent, listings.CreateInput{
		Title: "Pending", Price: 1, Location: "Lagos",
		PropertyType: "apartment", ContactName: "B", ContactPhone: "+2348000000000",
	})
	require.NoError(t, err)

	_, err = svc.Request(ctx, requester(), pending.ID, time.Now())
	assert.ErrorIs(t, err, ErrPropertyNotFound)
}

func TestCompletePayment(t *testing.T) {
	svc, props, _ := setupTestService(t)
	ctx := context.Background()
	p := approvedProperty(t, props)

	booking, err := svc.Request(ctx, requester(), p.ID, time.Now().Add(time.Hour))
	require.NoError(t, err)

	require.NoError(t, svc.CompletePayment(ctx, booking.Inspection.ID))

	i, err := svc.Get(ctx, booking.Inspection.ID)
	require.NoError(t, err)
	assert.Equal(t, PaymentCompleted, i.PaymentStatus)
	assert.Equal(t, StatusAssigned, i.Status)

	// Idempotent on replay.
	require.NoError(t, svc.CompletePayment(ctx, booking.Inspection.ID))
	i, err = svc.Get(ctx, booking.Inspection.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusAssigned, i.Status)
}

func TestUpdate_AdminAssignsAgent(t *testing.T) {
	svc, props, _ := setupTestService(t)
	ctx := context.Background()
	p := approvedProperty(t, props)

	booking, err := svc.Request(ctx, requester(), p.ID, time.Now().Add(time.Hour))
	require.NoError(t, err)

	agentID := "agent-1"
	i, err := svc.Update(ctx, admin(), booking.Inspection.ID, UpdateInput{AgentID: &agentID})
	require.NoError(t, err)
	assert.Equal(t, "agent-1", i.AgentID)
	assert.Equal(t, "Bola A.", i.AgentName)
	assert.Equal(t, StatusAssigned, i.Status)

	missing := "nobody"
	_, err = svc.Update(ctx, admin(), booking.Inspection.ID, UpdateInput{AgentID: &missing})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUpdate_AgentRules(t *testing.T) {
	svc, props, dir := setupTestService(t)
	ctx := context.Background()
	p := approvedProperty(t, props)

	booking, err := svc.Request(ctx, requester(), p.ID, time.Now().Add(time.Hour))
	require.NoError(t, err)
	id := booking.Inspection.ID

	agentID := "agent-1"
	_, err = svc.Update(ctx, admin(), id, UpdateInput{AgentID: &agentID})
	require.NoError(t, err)

	agent := dir.users["agent-1"]
	other := &users.User{ID: "agent-2", FullName: "Other", Role: users.RoleAgent}
	completed := "completed"
	assigned := "assigned"

	// Another agent may not touch it.
	_, err = svc.Update(ctx, other, id, UpdateInput{Status: &completed})
	assert.ErrorIs(t, err, ErrForbidden)

	// The assigned agent may only mark it completed.
	_, err = svc.Update(ctx, agent, id, UpdateInput{Status: &assigned})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Update(ctx, agent, id, UpdateInput{AgentID: &agentID})
	assert.ErrorIs(t, err, ErrForbidden)

	i, err := svc.Update(ctx, agent, id, UpdateInput{Status: &completed})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, i.Status)
}

func TestAgentContact(t *testing.T) {
	svc, props, _ := setupTestService(t)
	ctx := context.Background()
	p := approvedProperty(t, props)

	user := requester()
	booking, err := svc.Request(ctx, user, p.ID, time.Now().Add(time.Hour))
	require.NoError(t, err)
	id := booking.Inspection.ID

	// Unpaid booking reveals nothing.
	_, err = svc.AgentContact(ctx, user, id)
	assert.ErrorIs(t, err, ErrPaymentIncomplete)

	require.NoError(t, svc.CompletePayment(ctx, id))

	agentID := "agent-1"
	_, err = svc.Update(ctx, admin(), id, UpdateInput{AgentID: &agentID})
	require.NoError(t, err)

	// Only the requester or an admin may see it.
	stranger := &users.User{ID: "u2", Role: users.RoleUser}
	_, err = svc.AgentContact(ctx, stranger, id)
	assert.ErrorIs(t, err, ErrForbidden)

	contact, err := svc.AgentContact(ctx, user, id)
	require.NoError(t, err)
	assert.Equal(t, "Bola A.", contact.AgentName)
	assert.Equal(t, "bola@agency.ng", contact.AgentEmail)

	contact, err = svc.AgentContact(ctx, admin(), id)
	require.NoError(t, err)
	assert.Equal(t, "Bola A.", contact.AgentName)
}

func TestLists(t *testing.T) {
	svc, props, _ := setupTestService(t)
	ctx := context.Background()
	p := approvedProperty(t, props)

	u1 := requester()
	u2 := &users.User{ID: "u2", FullName: "Grace", Email: "grace@example.com", Role: users.RoleUser}

	b1, err := svc.Request(ctx, u1, p.ID, time.Now().Add(time.Hour))
	require.NoError(t, err)
	_, err = svc.Request(ctx, u2, p.ID, time.Now().Add(2*time.Hour))
	require.NoError(t, err)

	agentID := "agent-1"
	_, err = svc.Update(ctx, admin(), b1.Inspection.ID, UpdateInput{AgentID: &agentID})
	require.NoError(t, err)

	mine, err := svc.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	assignedList, err := svc.ListByAgent(ctx, "agent-1")
	require.NoError(t, err)
	assert.Len(t, assignedList, 1)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
