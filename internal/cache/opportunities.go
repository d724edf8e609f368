package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// OpportunityRecord captures the best profitable result seen for a pair.
type OpportunityRecord struct {
	ProfitPercent float64   `json:"profit_percent"`
	CombinedCost  float64   `json:"combined_cost"`
	Direction     string    `json:"direction"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// OpportunityCache stores the last announced opportunity per pair ID.
type OpportunityCache interface {
	Get(ctx context.Context, pairID string) (*OpportunityRecord, bool, error)
	Set(ctx context.Context, pairID string, record OpportunityRecord) error
	Close() error
}

// minImprovement is how much a repeat sighting must beat the cached profit (in
// percentage points) before it is announced again.
const minImprovement = 0.05

// ShouldAnnounce reports whether next is new or materially better than prev, or the
// direction flipped.
func ShouldAnnounce(prev *OpportunityRecord, next OpportunityRecord) bool {
	if prev == nil {
		return true
	}
	if prev.Direction != next.Direction {
		return true
	}
	return next.ProfitPercent > prev.ProfitPercent+minImprovement
}

// RedisOpportunityCache stores records as JSON under "<prefix>:<pairID>".
type RedisOpportunityCache struct {
	*redisStore
}

func NewRedisOpportunityCache(cfg RedisConfig) (*RedisOpportunityCache, error) {
	store, err := newRedisStore(cfg, 24*time.Hour, "arb_best")
	if err != nil {
		return nil, err
	}
	return &RedisOpportunityCache{store}, nil
}

func (c *RedisOpportunityCache) Get(ctx context.Context, pairID string) (*OpportunityRecord, bool, error) {
	raw, err := c.get(ctx, pairID)
	if err != nil || raw == nil {
		return nil, false, err
	}
	var record OpportunityRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, false, err
	}
	return &record, true, nil
}

func (c *RedisOpportunityCache) Set(ctx context.Context, pairID string, record OpportunityRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return c.set(ctx, pairID, payload)
}

// MemoryOpportunityCache is an in-process OpportunityCache.
type MemoryOpportunityCache struct {
	mu      sync.Mutex
	records map[string]OpportunityRecord
}

func NewMemoryOpportunityCache() *MemoryOpportunityCache {
	return &MemoryOpportunityCache{records: make(map[string]OpportunityRecord)}
}

func (c *MemoryOpportunityCache) Get(_ context.Context, pairID string) (*OpportunityRecord, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.records[pairID]
	if !ok {
		return nil, false, nil
	}
	return &rec, true, nil
}

func (c *MemoryOpportunityCache) Set(_ context.Context, pairID string, record OpportunityRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records[pairID] = record
	return nil
}

func (c *MemoryOpportunityCache) Close() error { return nil }
