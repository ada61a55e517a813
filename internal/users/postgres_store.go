package users

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// Compile-time check that PostgresStore implements Store.
var _ Store = (*PostgresStore)(nil)

// PostgresStore implements Store backed by PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL-backed user store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the users table if it doesn't exist.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id            VARCHAR(36) PRIMARY KEY,
			email         VARCHAR(255) NOT NULL UNIQUE,
			password_hash VARCHAR(100) NOT NULL,
			full_name     VARCHAR(200) NOT NULL,
			role          VARCHAR(20) NOT NULL DEFAULT 'user',
			suspended     BOOLEAN NOT NULL DEFAULT FALSE,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_users_role ON users(role);
	`)
	return err
}

// Create inserts a new user.
func (p *PostgresStore) Create(ctx context.Context, u *User) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, full_name, role, suspended, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, u.ID, u.Email, u.PasswordHash, u.FullName, string(u.Role), u.Suspended, u.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// Get returns a user by ID.
func (p *PostgresStore) Get(ctx context.Context, id string) (*User, error) {
	return p.scanOne(p.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, full_name, role, suspended, created_at
		FROM users WHERE id = $1
	`, id))
}

// GetByEmail returns a user by email.
func (p *PostgresStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	return p.scanOne(p.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, full_name, role, suspended, created_at
		FROM users WHERE email = $1
	`, email))
}

// Update rewrites a user's mutable fields.
func (p *PostgresStore) Update(ctx context.Context, u *User) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE users SET email = $2, full_name = $3, role = $4, suspended = $5
		WHERE id = $1
	`, u.ID, u.Email, u.FullName, string(u.Role), u.Suspended)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns all users, newest first.
func (p *PostgresStore) List(ctx context.Context) ([]*User, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, email, password_hash, full_name, role, suspended, created_at
		FROM users ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u := &User{}
		var role string
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &role, &u.Suspended, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		u.Role = Role(role)
		users = append(users, u)
	}
	return users, rows.Err()
}

// Count returns the total number of users.
func (p *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

// CountByRole returns the number of users holding a role.
func (p *PostgresStore) CountByRole(ctx context.Context, role Role) (int, error) {
	var n int
	err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE role = $1`, string(role)).Scan(&n)
	return n, err
}

func (p *PostgresStore) scanOne(row *sql.Row) (*User, error) {
	u := &User{}
	var role string
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &role, &u.Suspended, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.Role = Role(role)
	return u, nil
}
