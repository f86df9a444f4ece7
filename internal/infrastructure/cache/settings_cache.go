// Package cache provides Redis-backed caching of hot configuration reads.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"

	"retailpos/internal/domain/settings"
	"retailpos/pkg/logger"
)

// SettingsKey is the Redis key holding the cached settings row.
const SettingsKey = "retailpos:settings"

// SettingsCache decorates a settings.Repository with a Redis read-through cache.
// Redis failures never fail a request: reads fall back to the repository.
type SettingsCache struct {
	client *redis.Client
	repo   settings.Repository
	ttl    time.Duration
}

var _ settings.Repository = (*SettingsCache)(nil)

// NewRedisClient parses a redis:// URL and returns a client.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opts), nil
}

// NewSettingsCache wraps repo.
func NewSettingsCache(client *redis.Client, repo settings.Repository, ttl time.Duration) *SettingsCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &SettingsCache{client: client, repo: repo, ttl: ttl}
}

// Get returns cached settings or loads and caches them.
func (c *SettingsCache) Get(ctx context.Context) (*settings.Settings, error) {
	val, err := c.client.Get(ctx, SettingsKey).Bytes()
	switch {
	case err == nil:
		var s settings.Settings
		if err := json.Unmarshal(val, &s); err == nil {
			return &s, nil
		}
		logger.Warn(ctx, "settings cache entry corrupt, reloading")
	case errors.Is(err, redis.Nil):
	default:
		logger.Warn(ctx, "settings cache unavailable", "error", err)
	}

	s, err := c.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, s)
	return s, nil
}

// Save writes through to the repository and drops the cached copy.
func (c *SettingsCache) Save(ctx context.Context, s *settings.Settings) error {
	if err := c.repo.Save(ctx, s); err != nil {
		return err
	}
	c.Invalidate(ctx)
	return nil
}

// Invalidate removes the cached settings.
func (c *SettingsCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, SettingsKey).Err(); err != nil {
		logger.Warn(ctx, "settings cache invalidate failed", "error", err)
	}
}

// Ping checks the Redis connection.
func (c *SettingsCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *SettingsCache) store(ctx context.Context, s *settings.Settings) {
	payload, err := json.Marshal(s)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, SettingsKey, payload, c.ttl).Err(); err != nil {
		logger.Warn(ctx, "settings cache write failed", "error", err)
	}
}
