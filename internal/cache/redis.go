package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig locates a redis instance. Zero TTL and empty Prefix take the
// per-cache defaults.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	Prefix   string
}

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func newRedisStore(cfg RedisConfig, defaultTTL time.Duration, defaultPrefix string) (*redisStore, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis addr is required")
	}
	s := &redisStore{ttl: cfg.TTL, prefix: cfg.Prefix}
	if s.ttl <= 0 {
		s.ttl = defaultTTL
	}
	if s.prefix == "" {
		s.prefix = defaultPrefix
	}
	s.client = redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return s, nil
}

func (s *redisStore) key(id string) string {
	return s.prefix + ":" + id
}

// get returns (nil, nil) on a miss.
func (s *redisStore) get(ctx context.Context, id string) ([]byte, error) {
	if s == nil || s.client == nil {
		return nil, nil
	}
	raw, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return raw, err
}

func (s *redisStore) set(ctx context.Context, id string, value []byte) error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Set(ctx, s.key(id), value, s.ttl).Err()
}

// Ping checks the connection.
func (s *redisStore) Ping(ctx context.Context) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("redis client not configured")
	}
	return s.client.Ping(ctx).Err()
}

func (s *redisStore) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

// OpenOpportunityCache returns the in-memory cache when no address is configured,
// otherwise a redis cache that has answered a ping.
func OpenOpportunityCache(ctx context.Context, cfg RedisConfig) (OpportunityCache, error) {
	if cfg.Addr == "" {
		return NewMemoryOpportunityCache(), nil
	}
	c, err := NewRedisOpportunityCache(cfg)
	if err != nil {
		return nil, err
	}
	if err := c.Ping(ctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return c, nil
}

// OpenVerdictCache is OpenOpportunityCache for match verdicts.
func OpenVerdictCache(ctx context.Context, cfg RedisConfig) (VerdictCache, error) {
	if cfg.Addr == "" {
		return NewMemoryVerdictCache(), nil
	}
	c, err := NewRedisVerdictCache(cfg)
	if err != nil {
		return nil, err
	}
	if err := c.Ping(ctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return c, nil
}
