package memory

import (
	"context"
	"testing"
	"time"
)

func TestCache_TTLExpiry(t *testing.T) {
	now := time.Unix(1000, 0)
	c := NewWithClock(func() time.Time { return now })
	ctx := context.Background()

	if err := c.Set(ctx, "cooldown:a-1", "12", time.Minute); err != nil {
		t.Fatalf("set error: %v", err)
	}
	if v, ok, _ := c.Get(ctx, "cooldown:a-1"); !ok || v != "12" {
		t.Fatalf("expected hit before expiry, got ok=%v v=%q", ok, v)
	}

	now = now.Add(2 * time.Minute)
	if _, ok, _ := c.Get(ctx, "cooldown:a-1"); ok {
		t.Fatalf("expected miss after expiry")
	}
}

func TestCache_ZeroTTLNeverExpires(t *testing.T) {
	now := time.Unix(1000, 0)
	c := NewWithClock(func() time.Time { return now })
	ctx := context.Background()

	_ = c.Set(ctx, "salience:a-1", "warm", 0)
	now = now.Add(1000 * time.Hour)
	if _, ok, _ := c.Get(ctx, "salience:a-1"); !ok {
		t.Fatalf("zero ttl must not expire")
	}
}
