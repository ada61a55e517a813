// Package users provides accounts, roles and request authentication for Rentora.
//
// Every authenticated request passes through this package's middleware: the
// bearer token is resolved to a stored user record, suspended accounts are
// rejected, and role-gated routes declare their allowed role set once via
// RequireRoles instead of checking inline.
package users

import (
	"context"
	"errors"
	"time"
)

// Errors
var (
	ErrNotFound           = errors.New("users: not found")
	ErrEmailTaken         = errors.New("users: email already registered")
	ErrInvalidCredentials = errors.New("users: invalid credentials")
	ErrInvalidToken       = errors.New("users: invalid or expired token")
	ErrSuspended          = errors.New("users: account suspended")
	ErrInvalidRole        = errors.New("users: invalid role")
)

// Role is the closed set of account roles.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAgent, RoleAdmin:
		return true
	}
	return false
}

// User represents an account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"full_name"`
	Role         Role      `json:"role"`
	Suspended    bool      `json:"suspended"`
	CreatedAt    time.Time `json:"created_at"`
}

// Store persists user records.
type Store interface {
	Create(ctx context.Context, u *User) error
	Get(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error
	List(ctx context.Context) ([]*User, error)
	Count(ctx context.Context) (int, error)
	CountByRole(ctx context.Context, role Role) (int, error)
}
