package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hiretrack/hiretrack-api/internal/core/domain"
)

// IdempotencyStore binds submission keys to application ids.
// Key format: idem:<applicant_id>:<idempotency_key>
type IdempotencyStore struct {
	client    redis.Cmdable
	opTimeout time.Duration
}

// NewIdempotencyStore creates an IdempotencyStore wrapping the given Redis client.
func NewIdempotencyStore(client redis.Cmdable, opTimeout time.Duration) *IdempotencyStore {
	return &IdempotencyStore{client: client, opTimeout: opTimeout}
}

// Lookup returns the application id bound to key, or "" when none is.
func (s *IdempotencyStore) Lookup(ctx context.Context, scope, key string) (string, error) {
	ctx, cancel := withOpTimeout(ctx, s.opTimeout)
	defer cancel()

	id, err := s.client.Get(ctx, idempotencyKey(scope, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("idempotency lookup: %w: %v", domain.ErrCacheUnavailable, err)
	}
	return id, nil
}

// Remember binds key to applicationID for ttl.
func (s *IdempotencyStore) Remember(ctx context.Context, scope, key, applicationID string, ttl time.Duration) error {
	ctx, cancel := withOpTimeout(ctx, s.opTimeout)
	defer cancel()

	if err := s.client.Set(ctx, idempotencyKey(scope, key), applicationID, ttl).Err(); err != nil {
		return fmt.Errorf("idempotency remember: %w: %v", domain.ErrCacheUnavailable, err)
	}
	return nil
}
