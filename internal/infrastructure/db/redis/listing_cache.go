package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hiretrack/hiretrack-api/internal/core/domain"
)

// ListingCache stores JSON-encoded listing pages with a TTL.
type ListingCache struct {
	client    redis.Cmdable
	opTimeout time.Duration
}

// NewListingCache creates a ListingCache wrapping the given Redis client.
func NewListingCache(client redis.Cmdable, opTimeout time.Duration) *ListingCache {
	return &ListingCache{client: client, opTimeout: opTimeout}
}

// Get decodes the value at key into dst.
func (c *ListingCache) Get(ctx context.Context, key string, dst any) error {
	ctx, cancel := withOpTimeout(ctx, c.opTimeout)
	defer cancel()

	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("listing cache get: %w: %v", domain.ErrCacheUnavailable, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		// A corrupt entry is as good as absent.
		return domain.ErrCacheMiss
	}
	return nil
}

// Put stores value at key for ttl.
func (c *ListingCache) Put(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("listing cache put: encode: %w", err)
	}

	ctx, cancel := withOpTimeout(ctx, c.opTimeout)
	defer cancel()

	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("listing cache put: %w: %v", domain.ErrCacheUnavailable, err)
	}
	return nil
}

// InvalidateAll deletes every key starting with prefix using SCAN, so it
// never blocks Redis the way KEYS would. Matching keys are collected over
// the whole cursor walk before any DEL, since deleting mid-walk can make
// some servers skip keys.
func (c *ListingCache) InvalidateAll(ctx context.Context, prefix string) error {
	ctx, cancel := withOpTimeout(ctx, c.opTimeout)
	defer cancel()

	var (
		cursor  uint64
		matched []string
	)
	for {
		keys, next, err := c.client.Scan(ctx, cursor, prefix+"*", scanBatch).Result()
		if err != nil {
			return fmt.Errorf("listing cache invalidate: %w: %v", domain.ErrCacheUnavailable, err)
		}
		matched = append(matched, keys...)
		cursor = next
		if cursor == 0 {
			break
		}
	}

	for start := 0; start < len(matched); start += scanBatch {
		end := min(start+scanBatch, len(matched))
		if err := c.client.Del(ctx, matched[start:end]...).Err(); err != nil {
			return fmt.Errorf("listing cache invalidate: %w: %v", domain.ErrCacheUnavailable, err)
		}
	}
	return nil
}
