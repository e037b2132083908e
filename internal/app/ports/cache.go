package ports

import (
	"context"
	"time"
)

// Cache is the non-authoritative layer. Callers treat any error (or a miss)
// as a transparent fallthrough to the store: its absence may change latency,
// never outcomes.
type Cache interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}

// Cache key families.
const (
	CacheKeyCooldown  = "cooldown:"  // + agent id, short TTL
	CacheKeySalience  = "salience:"  // + agent id
	CacheKeyNarrative = "narrative:" // + agent id + ":" + event hash
)
