package surge

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// Requires a reachable Redis; skipped unless FARMLINK_TEST_REDIS is set.
func TestStore_IncrAndCounts(t *testing.T) {
	addr := os.Getenv("FARMLINK_TEST_REDIS")
	if addr == "" {
		t.Skip("FARMLINK_TEST_REDIS not set; skipping Redis-backed tests")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	store := NewStore(client, time.Minute)
	bucket := time.Now().UnixNano()
	cell := "kzf0tq"

	for i := 0; i < 3; i++ {
		if err := store.Incr(ctx, KindDemand, cell, bucket); err != nil {
			t.Fatalf("Incr() error = %v", err)
		}
	}
	if err := store.Incr(ctx, KindSupply, cell, bucket); err != nil {
		t.Fatalf("Incr() error = %v", err)
	}

	got, err := store.Counts(ctx, cell, bucket)
	if err != nil {
		t.Fatalf("Counts() error = %v", err)
	}
	if got.Demand != 3 || got.Supply != 1 {
		t.Errorf("Counts() = %+v, want {3 1}", got)
	}

	empty, err := store.Counts(ctx, cell, bucket+1)
	if err != nil || empty != (Counts{}) {
		t.Errorf("Counts() on empty bucket = %+v, %v", empty, err)
	}
}
