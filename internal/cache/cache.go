package cache

import (
	"context"
	"time"
)

// Cache is a best-effort TTL key-value store. It is never authoritative:
// callers must treat every error and every miss as "recompute from the
// store". A miss is reported as (nil, nil).
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
