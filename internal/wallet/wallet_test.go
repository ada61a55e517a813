package wallet

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreate(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	w, err := store.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", w.UserID)
	assert.Equal(t, int64(0), w.TokenBalance)

	// Idempotent: a second call returns the same wallet.
	_, err = store.Credit(ctx, "u1", 3)
	require.NoError(t, err)
	w, err = store.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), w.TokenBalance)
}

func TestCredit(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	w, err := store.Credit(ctx, "u1", 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), w.TokenBalance)

	w, err = store.Credit(ctx, "u1", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(7), w.TokenBalance)

	_, err = store.Credit(ctx, "u1", 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = store.Credit(ctx, "u1", -1)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestDebitOne(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.DebitOne(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	_, err = store.DebitOne(ctx, "u1")
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	_, err = store.Credit(ctx, "u1", 2)
	require.NoError(t, err)

	w, err := store.DebitOne(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), w.TokenBalance)

	w, err = store.DebitOne(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), w.TokenBalance)

	_, err = store.DebitOne(ctx, "u1")
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestDebitOne_Concurrent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Credit(ctx, "u1", 10)
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.DebitOne(ctx, "u1"); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded)
	w, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), w.TokenBalance)
}

func TestServiceBalance(t *testing.T) {
	svc := NewService(NewMemoryStore())
	ctx := context.Background()

	// Missing wallet reads as zero.
	balance, err := svc.Balance(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)

	_, err = svc.Credit(ctx, "u1", 4)
	require.NoError(t, err)

	balance, err = svc.Balance(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(4), balance)
}

func TestServiceEnsureWallet(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store)
	ctx := context.Background()

	require.NoError(t, svc.EnsureWallet(ctx, "u1"))

	w, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), w.TokenBalance)
}
