package wallet

import (
	"context"

	"github.com/ayotona/rentora/internal/logging"
	"github.com/ayotona/rentora/internal/metrics"
)

// Service provides wallet operations over a Store.
type Service struct {
	store Store
}

// NewService creates a new wallet service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// EnsureWallet provisions a zero-balance wallet for a new account.
// Satisfies users.WalletCreator.
func (s *Service) EnsureWallet(ctx context.Context, userID string) error {
	_, err := s.store.GetOrCreate(ctx, userID)
	return err
}

// Balance returns the user's token balance, treating a missing wallet
// as zero. Satisfies users.BalanceProvider.
func (s *Service) Balance(ctx context.Context, userID string) (int64, error) {
	w, err := s.store.Get(ctx, userID)
	if err == ErrNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return w.TokenBalance, nil
}

// Get returns the user's wallet, creating it on first access.
func (s *Service) Get(ctx context.Context, userID string) (*Wallet, error) {
	return s.store.GetOrCreate(ctx, userID)
}

// Credit adds purchased tokens to a wallet.
func (s *Service) Credit(ctx context.Context, userID string, amount int64) (*Wallet, error) {
	w, err := s.store.Credit(ctx, userID, amount)
	if err != nil {
		return nil, err
	}
	metrics.TokensCreditedTotal.Add(float64(amount))
	logging.L(ctx).Info("wallet credited",
		"user_id", userID,
		"amount", amount,
		"balance", w.TokenBalance)
	return w, nil
}

// DebitOne spends a single token.
func (s *Service) DebitOne(ctx context.Context, userID string) (*Wallet, error) {
	w, err := s.store.DebitOne(ctx, userID)
	if err != nil {
		return nil, err
	}
	logging.L(ctx).Info("wallet debited",
		"user_id", userID,
		"balance", w.TokenBalance)
	return w, nil
}
