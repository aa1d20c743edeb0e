package ports

import (
	"context"
	"time"
)

// IdempotencyStore memoizes which application a submission key produced.
// It is non-authoritative: errors wrap domain.ErrCacheUnavailable and callers
// treat them as a miss.
type IdempotencyStore interface {
	// Lookup returns the stored application id, or "" on a miss.
	Lookup(ctx context.Context, scope, key string) (string, error)
	// Remember stores the mapping with ttl.
	Remember(ctx context.Context, scope, key, applicationID string, ttl time.Duration) error
}

// ListingCache is a best-effort key/value cache for rendered listings.
//
// Get returns nil on a hit (dst populated), domain.ErrCacheMiss on a miss and
// an error wrapping domain.ErrCacheUnavailable when the substrate fails.
// Callers map both errors to a miss.
type ListingCache interface {
	Get(ctx context.Context, key string, dst any) error
	Put(ctx context.Context, key string, value any, ttl time.Duration) error
	// InvalidateAll removes every key starting with prefix.
	InvalidateAll(ctx context.Context, prefix string) error
}
