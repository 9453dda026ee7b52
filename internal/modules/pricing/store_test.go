package pricing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"farmlink/internal/testutil"
)

func TestStore_SaveAndGetQuote(t *testing.T) {
	db := testutil.Postgres(t, "fare_quotes")
	store := NewStore(db)
	ctx := context.Background()

	fare, err := NewEstimator(nil, nil, nil, DefaultPolicy()).Compute("comfort", 10, 15, 1.2)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	q := &Quote{
		ID: "q-1", UserID: "buyer-1", Pickup: farmGate, Destination: market,
		Fare: fare, Currency: "USD", CreatedAt: time.Date(2026, 5, 1, 7, 30, 0, 0, time.UTC),
	}
	if err := store.SaveQuote(ctx, q); err != nil {
		t.Fatalf("SaveQuote: %v", err)
	}

	got, err := store.GetQuote(ctx, "q-1")
	if err != nil {
		t.Fatalf("GetQuote: %v", err)
	}
	if diff := cmp.Diff(q.Fare, got.Fare); diff != "" {
		t.Errorf("fare mismatch (-want +got):\n%s", diff)
	}
	if !got.CreatedAt.Equal(q.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, q.CreatedAt)
	}

	if _, err := store.GetQuote(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetQuote(missing) error = %v, want ErrNotFound", err)
	}
}
