package cache

import (
	"context"
	"time"
)

// NullCache discards everything: every Get misses and Set is a no-op. It
// backs --no-cache runs so the pipeline always has a cache to talk to and
// re-parses the notebook on every invocation.
type NullCache struct{}

// NewNullCache creates the discarding cache.
func NewNullCache() Cache {
	return &NullCache{}
}

// Get always misses.
func (c *NullCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set discards the value.
func (c *NullCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return nil
}

// Delete does nothing.
func (c *NullCache) Delete(ctx context.Context, key string) error {
	return nil
}

// Close does nothing.
func (c *NullCache) Close() error {
	return nil
}

var _ Cache = (*NullCache)(nil)
