package cache

import (
	"context"
	"sync"
	"time"
)

// VerdictCache remembers which candidate an ambiguous match was resolved to, keyed
// by the target event plus the set of tied candidates.
type VerdictCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, candidateID string) error
	Close() error
}

type RedisVerdictCache struct {
	*redisStore
}

func NewRedisVerdictCache(cfg RedisConfig) (*RedisVerdictCache, error) {
	store, err := newRedisStore(cfg, 72*time.Hour, "match_verdict")
	if err != nil {
		return nil, err
	}
	return &RedisVerdictCache{store}, nil
}

func (c *RedisVerdictCache) Get(ctx context.Context, key string) (string, bool, error) {
	raw, err := c.get(ctx, key)
	if err != nil || raw == nil {
		return "", false, err
	}
	return string(raw), true, nil
}

func (c *RedisVerdictCache) Set(ctx context.Context, key string, candidateID string) error {
	return c.set(ctx, key, []byte(candidateID))
}

// MemoryVerdictCache is an in-process VerdictCache for single runs and tests.
type MemoryVerdictCache struct {
	mu      sync.Mutex
	entries map[string]string
}

func NewMemoryVerdictCache() *MemoryVerdictCache {
	return &MemoryVerdictCache{entries: make(map[string]string)}
}

func (c *MemoryVerdictCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *MemoryVerdictCache) Set(_ context.Context, key string, candidateID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = candidateID
	return nil
}

func (c *MemoryVerdictCache) Close() error { return nil }
