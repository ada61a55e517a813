package wallet

import (
	"context"
	"errors"
	"testing"

	"github.com/ayotona/rentora/internal/testutil"
)

func TestPostgresDebitOne(t *testing.T) {
	db, cleanup := testutil.PGTest(t)
	defer cleanup()

	ctx := context.Background()
	store := NewPostgresStore(db)

	if _, err := store.Credit(ctx, "user-1", 2); err != nil {
		t.Fatalf("Credit failed: %v", err)
	}

	w, err := store.DebitOne(ctx, "user-1")
	if err != nil {
		t.Fatalf("DebitOne failed: %v", err)
	}
	if w.TokenBalance != 1 {
		t.Errorf("Expected balance 1, got %d", w.TokenBalance)
	}

	if _, err := store.DebitOne(ctx, "user-1"); err != nil {
		t.Fatalf("second DebitOne failed: %v", err)
	}

	_, err = store.DebitOne(ctx, "user-1")
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Errorf("Expected ErrInsufficientBalance on empty wallet, got %v", err)
	}

	_, err = store.DebitOne(ctx, "no-such-user")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing wallet, got %v", err)
	}
}
