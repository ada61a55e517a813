package verification

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayotona/rentora/internal/users"
)

type mockPromoter struct {
	promoted []string
}

func (m *mockPromoter) PromoteToAgent(ctx context.Context, userID string) error {
	m.promoted = append(m.promoted, userID)
	return nil
}

func applicant() *users.User {
	return &users.User{ID: "u1", FullName: "Ada", Email: "ada@example.com", Role: users.RoleUser}
}

func sampleInput() SubmitInput {
	return SubmitInput{
		IDCardURL: "https://cdn.example.com/id.jpg",
		SelfieURL: "https://cdn.example.com/selfie.jpg",
		Address:   "12 Herbert Macaulay Way, Yaba",
	}
}

func TestSubmit(t *testing.T) {
	promoter := &mockPromoter{}
	svc := NewService(NewMemoryStore(), promoter)
	ctx := context.Background()

	r, err := svc.Submit(ctx, applicant(), sampleInput())
	require.NoError(t, err)
	assert.Equal(t, StatusPending, r.Status)
	assert.Equal(t, "Ada", r.UserName)
	assert.Equal(t, "ada@example.com", r.UserEmail)
	assert.Nil(t, r.ReviewedAt)
}

func TestSubmit_Duplicate(t *testing.T) {
	svc := NewService(NewMemoryStore(), &mockPromoter{})
	ctx := context.Background()

	_, err := svc.Submit(ctx, applicant(), sampleInput())
	require.NoError(t, err)

	_, err = svc.Submit(ctx, applicant(), sampleInput())
	assert.ErrorIs(t, err, ErrDuplicateRequest)
}

func TestSubmit_OnlyUsers(t *testing.T) {
	svc := NewService(NewMemoryStore(), &mockPromoter{})
	ctx := context.Background()

	agent := &users.User{ID: "a1", Role: users.RoleAgent}
	_, err := svc.Submit(ctx, agent, sampleInput())
	assert.ErrorIs(t, err, ErrNotEligible)

	adm := &users.User{ID: "adm1", Role: users.RoleAdmin}
	_, err = svc.Submit(ctx, adm, sampleInput())
	assert.ErrorIs(t, err, ErrNotEligible)
}

func TestReview_Approve(t *testing.T) {
	promoter := &mockPromoter{}
	svc := NewService(NewMemoryStore(), promoter)
	ctx := context.Background()

	r, err := svc.Submit(ctx, applicant(), sampleInput())
	require.NoError(t, err)

	reviewed, err := svc.Review(ctx, r.ID, StatusApproved, "adm1")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, reviewed.Status)
	assert.Equal(t, "adm1", reviewed.ReviewedByAdminID)
	require.NotNil(t, reviewed.ReviewedAt)
	assert.Equal(t, []string{"u1"}, promoter.promoted)
}

func TestReview_Reject(t *testing.T) {
	promoter := &mockPromoter{}
	svc := NewService(NewMemoryStore(), promoter)
	ctx := context.Background()

	r, err := svc.Submit(ctx, applicant(), sampleInput())
	require.NoError(t, err)

	reviewed, err := svc.Review(ctx, r.ID, StatusRejected, "adm1")
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, reviewed.Status)
	assert.Empty(t, promoter.promoted)
}

func TestReview_Invalid(t *testing.T) {
	svc := NewService(NewMemoryStore(), &mockPromoter{})
	ctx := context.Background()

	_, err := svc.Review(ctx, "missing", StatusApproved, "adm1")
	assert.ErrorIs(t, err, ErrNotFound)

	r, err := svc.Submit(ctx, applicant(), sampleInput())
	require.NoError(t, err)

	_, err = svc.Review(ctx, r.ID, Status("pending"), "adm1")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestResubmitAfterRejection(t *testing.T) {
	svc := NewService(NewMemoryStore(), &mockPromoter{})
	ctx := context.Background()

	r, err := svc.Submit(ctx, applicant(), sampleInput())
	require.NoError(t, err)
	_, err = svc.Review(ctx, r.ID, StatusRejected, "adm1")
	require.NoError(t, err)

	// A settled request no longer blocks a new one.
	r2, err := svc.Submit(ctx, applicant(), sampleInput())
	require.NoError(t, err)

	latest, err := svc.MyRequest(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, r2.ID, latest.ID)
}

func TestLists(t *testing.T) {
	svc := NewService(NewMemoryStore(), &mockPromoter{})
	ctx := context.Background()

	u2 := &users.User{ID: "u2", FullName: "Grace", Role: users.RoleUser}
	r1, err := svc.Submit(ctx, applicant(), sampleInput())
	require.NoError(t, err)
	_, err = svc.Submit(ctx, u2, sampleInput())
	require.NoError(t, err)

	_, err = svc.Review(ctx, r1.ID, StatusApproved, "adm1")
	require.NoError(t, err)

	pending, err := svc.ListPending(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	n, err := svc.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
