package users

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/ayotona/rentora/internal/idgen"
)

// WalletCreator provisions a zero-balance wallet for a new account.
type WalletCreator interface {
	EnsureWallet(ctx context.Context, userID string) error
}

// Claims are the JWT claims carried by a Rentora bearer token.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// Service provides registration, login and token verification.
type Service struct {
	store   Store
	wallets WalletCreator
	secret  []byte
	ttl     time.Duration
}

// NewService creates a new user service.
func NewService(store Store, wallets WalletCreator, jwtSecret string, ttl time.Duration) *Service {
	return &Service{
		store:   store,
		wallets: wallets,
		secret:  []byte(jwtSecret),
		ttl:     ttl,
	}
}

// Register creates a new account with role "user" and a zero-balance wallet,
// and returns a signed token for it.
func (s *Service) Register(ctx context.Context, email, password, fullName string) (string, *User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{
		ID:           idgen.New(),
		Email:        email,
		PasswordHash: string(hash),
		FullName:     fullName,
		Role:         RoleUser,
		Suspended:    false,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.store.Create(ctx, u); err != nil {
		return "", nil, err
	}

	if err := s.wallets.EnsureWallet(ctx, u.ID); err != nil {
		return "", nil, fmt.Errorf("create wallet: %w", err)
	}

	token, err := s.generateToken(u)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

// Login authenticates email/password credentials and returns a signed token.
func (s *Service) Login(ctx context.Context, email, password string) (string, *User, error) {
	u, err := s.store.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}
	if u.Suspended {
		return "", nil, ErrSuspended
	}

	token, err := s.generateToken(u)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

// Authenticate resolves a bearer token to the current user record.
// The stored record is the source of truth for role and suspension, not
// the token claims.
func (s *Service) Authenticate(ctx context.Context, tokenString string) (*User, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	u, err := s.store.Get(ctx, claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if u.Suspended {
		return nil, ErrSuspended
	}
	return u, nil
}

// Get returns a user by ID.
func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	return s.store.Get(ctx, id)
}

// List returns all users.
func (s *Service) List(ctx context.Context) ([]*User, error) {
	return s.store.List(ctx)
}

// SetRole updates a user's role. Any transition is allowed for admins.
func (s *Service) SetRole(ctx context.Context, userID string, role Role) (*User, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	u, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	u.Role = role
	if err := s.store.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// SetSuspended flips a user's suspension flag.
func (s *Service) SetSuspended(ctx context.Context, userID string, suspended bool) (*User, error) {
	u, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	u.Suspended = suspended
	if err := s.store.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// PromoteToAgent flips a user's role to agent. Used by verification review.
func (s *Service) PromoteToAgent(ctx context.Context, userID string) error {
	_, err := s.SetRole(ctx, userID, RoleAgent)
	return err
}

func (s *Service) generateToken(u *User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		UserID: u.ID,
		Role:   string(u.Role),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
