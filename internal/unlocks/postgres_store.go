package unlocks

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

// NewPostgresStore creates a new PostgreSQL-backed unlock store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the unlocks table if it doesn't exist.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS unlocks (
			id          VARCHAR(36) PRIMARY KEY,
			user_id     VARCHAR(36) NOT NULL,
			property_id VARCHAR(36) NOT NULL,
			unlocked_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (user_id, property_id)
		);
		CREATE INDEX IF NOT EXISTS idx_unlocks_user ON unlocks(user_id);
	`)
	return err
}

// Create inserts an unlock record. The unique constraint on the pair
// catches a concurrent duplicate.
func (p *PostgresStore) Create(ctx context.Context, u *Unlock) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO unlocks (id, user_id, property_id, unlocked_at)
		VALUES ($1, $2, $3, $4)
	`, u.ID, u.UserID, u.PropertyID, u.UnlockedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrAlreadyUnlocked
		}
		return fmt.Errorf("insert unlock: %w", err)
	}
	return nil
}

// Exists reports whether the (user, property) pair is unlocked.
func (p *PostgresStore) Exists(ctx context.Context, userID, propertyID string) (bool, error) {
	var exists bool
	err := p.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM unlocks WHERE user_id = $1 AND property_id = $2)
	`, userID, propertyID).Scan(&exists)
	return exists, err
}

// ListByUser returns a user's unlocks, newest first.
func (p *PostgresStore) ListByUser(ctx context.Context, userID string) ([]*Unlock, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, user_id, property_id, unlocked_at
		FROM unlocks WHERE user_id = $1 ORDER BY unlocked_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query unlocks: %w", err)
	}
	defer rows.Close()

	var out []*Unlock
	for rows.Next() {
		u := &Unlock{}
		if err := rows.Scan(&u.ID, &u.UserID, &u.PropertyID, &u.UnlockedAt); err != nil {
			return nil, fmt.Errorf("scan unlock: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Count returns the total number of unlocks.
func (p *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM unlocks`).Scan(&n)
	return n, err
}
