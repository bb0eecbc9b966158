// Package cache stores department performance summaries in Redis.
//
// Entries are namespaced by a generation counter: invalidation increments the
// counter, which orphans every entry of the previous generation until its TTL
// expires.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "smartraise:summary:"

type SummaryCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewSummaryCache(client *redis.Client, ttl time.Duration) *SummaryCache {
	return &SummaryCache{client: client, prefix: defaultPrefix, ttl: ttl}
}

func (c *SummaryCache) generationKey() string {
	return c.prefix + "gen"
}

func (c *SummaryCache) entryKey(generation, department string) string {
	return c.prefix + generation + ":" + department
}

func (c *SummaryCache) generation(ctx context.Context) (string, error) {
	gen, err := c.client.Get(ctx, c.generationKey()).Result()
	if errors.Is(err, redis.Nil) {
		return "0", nil
	}
	if err != nil {
		return "", err
	}
	return gen, nil
}

// GetSummary decodes the cached summary for department into dst. hit is
// false on a miss. generation is the one the lookup ran under; a fill for the
// miss must be stored under it.
func (c *SummaryCache) GetSummary(ctx context.Context, department string, dst any) (generation string, hit bool, err error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return "", false, err
	}
	raw, err := c.client.Get(ctx, c.entryKey(gen, department)).Result()
	if errors.Is(err, redis.Nil) {
		return gen, false, nil
	}
	if err != nil {
		return "", false, err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return gen, false, err
	}
	return gen, true, nil
}

func (c *SummaryCache) SetSummary(ctx context.Context, generation, department string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.entryKey(generation, department), payload, c.ttl).Err()
}

func (c *SummaryCache) InvalidateSummaries(ctx context.Context) error {
	return c.client.Incr(ctx, c.generationKey()).Err()
}

func (c *SummaryCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *SummaryCache) Close() error {
	return c.client.Close()
}
