package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRateCache(t *testing.T) (*RedisRateCache, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisRateCache(client, time.Hour), srv
}

func TestRateCacheRoundTrip(t *testing.T) {
	c, _ := newTestRateCache(t)
	ctx := context.Background()

	if _, ok, err := c.Get(ctx, "USD", "VND"); err != nil || ok {
		t.Fatalf("empty cache: got ok=%v err=%v", ok, err)
	}

	if err := c.Put(ctx, "USD", "VND", 25000); err != nil {
		t.Fatalf("put: %v", err)
	}

	rate, ok, err := c.Get(ctx, "USD", "VND")
	if err != nil || !ok {
		t.Fatalf("get after put: ok=%v err=%v", ok, err)
	}
	if rate != 25000 {
		t.Fatalf("got rate %v, want 25000", rate)
	}

	// The reverse pair is a distinct key.
	if _, ok, _ := c.Get(ctx, "VND", "USD"); ok {
		t.Fatalf("reverse pair should not be cached")
	}
}

func TestRateCacheEntriesExpire(t *testing.T) {
	c, srv := newTestRateCache(t)
	ctx := context.Background()

	if err := c.Put(ctx, "EUR", "USD", 1.1); err != nil {
		t.Fatalf("put: %v", err)
	}

	srv.FastForward(2 * time.Hour)

	if _, ok, err := c.Get(ctx, "EUR", "USD"); err != nil || ok {
		t.Fatalf("expired entry: got ok=%v err=%v", ok, err)
	}
}
