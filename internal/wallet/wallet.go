// Package wallet tracks per-user inspection token balances.
//
// Tokens are the unit of spend for contact unlocks. Balances only move
// through webhook-confirmed purchases (credit) and unlock operations
// (debit); there is no free minting path outside admin simulation in
// development.
package wallet

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when no wallet exists for a user.
	ErrNotFound = errors.New("wallet: not found")
	// ErrInsufficientBalance is returned when a debit would take the
	// balance below zero.
	ErrInsufficientBalance = errors.New("wallet: insufficient balance")
	// ErrInvalidAmount is returned for non-positive credit amounts.
	ErrInvalidAmount = errors.New("wallet: amount must be positive")
)

// Wallet is a user's token balance.
type Wallet struct {
	UserID       string    `json:"user_id"`
	TokenBalance int64     `json:"token_balance"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Store persists wallets. DebitOne must be atomic: it either decrements
// a positive balance by one or returns ErrInsufficientBalance, never
// leaving a negative balance under concurrent callers.
type Store interface {
	GetOrCreate(ctx context.Context, userID string) (*Wallet, error)
	Get(ctx context.Context, userID string) (*Wallet, error)
	Credit(ctx context.Context, userID string, amount int64) (*Wallet, error)
	DebitOne(ctx context.Context, userID string) (*Wallet, error)
}
