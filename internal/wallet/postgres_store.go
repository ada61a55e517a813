package wallet

import (
	"context"
	"database/sql"
	"fmt"
)

// Compile-time check that PostgresStore implements Store.
var _ Store = (*PostgresStore)(nil)

// PostgresStore implements Store backed by PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL-backed wallet store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the wallets table if it doesn't exist.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS wallets (
			user_id       VARCHAR(36) PRIMARY KEY,
			token_balance BIGINT NOT NULL DEFAULT 0 CHECK (token_balance >= 0),
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

// GetOrCreate returns the user's wallet, creating a zero-balance one if needed.
func (p *PostgresStore) GetOrCreate(ctx context.Context, userID string) (*Wallet, error) {
	w := &Wallet{}
	err := p.db.QueryRowContext(ctx, `
		INSERT INTO wallets (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING user_id, token_balance, updated_at
	`, userID).Scan(&w.UserID, &w.TokenBalance, &w.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert wallet: %w", err)
	}
	return w, nil
}

// Get returns the user's wallet.
func (p *PostgresStore) Get(ctx context.Context, userID string) (*Wallet, error) {
	w := &Wallet{}
	err := p.db.QueryRowContext(ctx, `
		SELECT user_id, token_balance, updated_at FROM wallets WHERE user_id = $1
	`, userID).Scan(&w.UserID, &w.TokenBalance, &w.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query wallet: %w", err)
	}
	return w, nil
}

// Credit adds tokens to the user's wallet, creating it if needed.
func (p *PostgresStore) Credit(ctx context.Context, userID string, amount int64) (*Wallet, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	w := &Wallet{}
	err := p.db.QueryRowContext(ctx, `
		INSERT INTO wallets (user_id, token_balance, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE
			SET token_balance = wallets.token_balance + EXCLUDED.token_balance,
			    updated_at = NOW()
		RETURNING user_id, token_balance, updated_at
	`, userID, amount).Scan(&w.UserID, &w.TokenBalance, &w.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("credit wallet: %w", err)
	}
	return w, nil
}

// DebitOne removes exactly one token. The conditional UPDATE makes the
// balance check and decrement a single atomic statement.
func (p *PostgresStore) DebitOne(ctx context.Context, userID string) (*Wallet, error) {
	w := &Wallet{}
	err := p.db.QueryRowContext(ctx, `
		UPDATE wallets
		SET token_balance = token_balance - 1, updated_at = NOW()
		WHERE user_id = $1 AND token_balance >= 1
		RETURNING user_id, token_balance, updated_at
	`, userID).Scan(&w.UserID, &w.TokenBalance, &w.UpdatedAt)
	if err == sql.ErrNoRows {
		// Either no wallet or an empty one; distinguish for the caller.
		var exists bool
		if checkErr := p.db.QueryRowContext(ctx, `
			SELECT EXISTS (SELECT 1 FROM wallets WHERE user_id = $1)
		`, userID).Scan(&exists); checkErr != nil {
			return nil, fmt.Errorf("check wallet: %w", checkErr)
		}
		if !exists {
			return nil, ErrNotFound
		}
		return nil, ErrInsufficientBalance
	}
	if err != nil {
		return nil, fmt.Errorf("debit wallet: %w", err)
	}
	return w, nil
}
