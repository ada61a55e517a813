package users

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockWallets struct {
	created []string
}

func (m *mockWallets) EnsureWallet(ctx context.Context, userID string) error {
	m.created = append(m.created, userID)
	return nil
}

func newTestService() (*Service, *mockWallets) {
	wallets := &mockWallets{}
	return NewService(NewMemoryStore(), wallets, "test-secret", time.Hour), wallets
}

func TestRegister(t *testing.T) {
	svc, wallets := newTestService()
	ctx := context.Background()

	token, u, err := svc.Register(ctx, "Ada@Example.com", "password1", "Ada Lovelace")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.Equal(t, RoleUser, u.Role)
	assert.False(t, u.Suspended)
	assert.NotEqual(t, "password1", u.PasswordHash)
	require.Len(t, wallets.created, 1)
	assert.Equal(t, u.ID, wallets.created[0])
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "ada@example.com", "password1", "Ada")
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, "ADA@example.com", "password2", "Other Ada")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, registered, err := svc.Register(ctx, "ada@example.com", "password1", "Ada")
	require.NoError(t, err)

	token, u, err := svc.Login(ctx, "ada@example.com", "password1")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, registered.ID, u.ID)

	_, _, err = svc.Login(ctx, "ada@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody@example.com", "password1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_Suspended(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, u, err := svc.Register(ctx, "ada@example.com", "password1", "Ada")
	require.NoError(t, err)

	_, err = svc.SetSuspended(ctx, u.ID, true)
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "ada@example.com", "password1")
	assert.ErrorIs(t, err, ErrSuspended)
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	token, registered, err := svc.Register(ctx, "ada@example.com", "password1", "Ada")
	require.NoError(t, err)

	u, err := svc.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, u.ID)

	_, err = svc.Authenticate(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthenticate_WrongSecret(t *testing.T) {
	svc, _ := newTestService()
	other := NewService(NewMemoryStore(), &mockWallets{}, "other-secret", time.Hour)
	ctx := context.Background()

	token, _, err := other.Register(ctx, "ada@example.com", "password1", "Ada")
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthenticate_Expired(t *testing.T) {
	wallets := &mockWallets{}
	svc := NewService(NewMemoryStore(), wallets, "test-secret", -time.Minute)
	ctx := context.Background()

	token, _, err := svc.Register(ctx, "ada@example.com", "password1", "Ada")
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthenticate_SuspendedAfterIssue(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	token, u, err := svc.Register(ctx, "ada@example.com", "password1", "Ada")
	require.NoError(t, err)

	_, err = svc.SetSuspended(ctx, u.ID, true)
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, token)
	assert.ErrorIs(t, err, ErrSuspended)
}

func TestAuthenticate_RoleFromStoreNotToken(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	token, u, err := svc.Register(ctx, "ada@example.com", "password1", "Ada")
	require.NoError(t, err)

	_, err = svc.SetRole(ctx, u.ID, RoleAgent)
	require.NoError(t, err)

	// Token was minted with role "user" but the store says agent now.
	current, err := svc.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, RoleAgent, current.Role)
}

func TestSetRole(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, u, err := svc.Register(ctx, "ada@example.com", "password1", "Ada")
	require.NoError(t, err)

	updated, err := svc.SetRole(ctx, u.ID, RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, updated.Role)

	_, err = svc.SetRole(ctx, u.ID, Role("landlord"))
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = svc.SetRole(ctx, "missing", RoleAgent)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPromoteToAgent(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, u, err := svc.Register(ctx, "ada@example.com", "password1", "Ada")
	require.NoError(t, err)

	require.NoError(t, svc.PromoteToAgent(ctx, u.ID))

	current, err := svc.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, RoleAgent, current.Role)
}

func TestRoleValid(t *testing.T) {
	tests := []struct {
		role  Role
		valid bool
	}{
		{RoleUser, true},
		{RoleAgent, true},
		{RoleAdmin, true},
		{Role(""), false},
		{Role("superuser"), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.valid, tt.role.Valid(), "role %q", tt.role)
	}
}
