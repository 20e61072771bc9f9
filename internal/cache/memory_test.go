package cache

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMemoryCache_IncrWithExpiry(t *testing.T) {
	c := NewMemoryCache()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := c.IncrWithExpiry(ctx, "k", time.Minute)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != want {
			t.Fatalf("expected %d, got %d", want, got)
		}
	}

	other, _ := c.IncrWithExpiry(ctx, "other", time.Minute)
	if other != 1 {
		t.Errorf("expected independent counter, got %d", other)
	}
}

func TestMemoryCache_Expires(t *testing.T) {
	c := NewMemoryCache()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	c.IncrWithExpiry(ctx, "k", time.Minute)
	c.IncrWithExpiry(ctx, "k", time.Minute)

	now = now.Add(61 * time.Second)
	got, _ := c.IncrWithExpiry(ctx, "k", time.Minute)
	if got != 1 {
		t.Errorf("expected counter to restart at 1, got %d", got)
	}
	if len(c.counters) != 1 {
		t.Errorf("expected expired counters to be swept, have %d", len(c.counters))
	}
}

func TestMemoryCache_Concurrent(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.IncrWithExpiry(ctx, "k", time.Minute)
		}()
	}
	wg.Wait()

	got, _ := c.IncrWithExpiry(ctx, "k", time.Minute)
	if got != 51 {
		t.Errorf("expected 51, got %d", got)
	}
}

func TestMemoryCache_PingClose(t *testing.T) {
	c := NewMemoryCache()
	if err := c.Ping(context.Background()); err != nil {
		t.Errorf("unexpected ping error: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("unexpected close error: %v", err)
	}
}
