package cache

import (
	"context"
	"time"
)

// NoopCache is used when Redis is not configured; every lookup misses.
type NoopCache struct{}

func NewNoopCache() *NoopCache {
	return &NoopCache{}
}

func (NoopCache) Get(ctx context.Context, key string) (string, error) {
	return "", ErrCacheMiss
}

func (NoopCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return nil
}

func (NoopCache) Close() error {
	return nil
}
