package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/hiretrack/hiretrack-api/internal/core/ports"
	"github.com/hiretrack/hiretrack-api/internal/metrics"
)

// DefaultIdempotencyTTL is how long a submission key stays bound to its application.
const DefaultIdempotencyTTL = 24 * time.Hour

// IdempotencyOutcome reports what ReserveOrFetch did.
type IdempotencyOutcome struct {
	ApplicationID string
	// Created is false when the id came from an earlier submission.
	Created bool
}

// CreateFunc performs the guarded creation and returns the new application id.
type CreateFunc func(ctx context.Context) (string, error)

// IdempotencyGuard maps (scope, key) to the application a submission produced.
// The store is advisory: when it is unreachable every call behaves as a miss
// and the persistent store's uniqueness constraint settles duplicates.
type IdempotencyGuard struct {
	store   ports.IdempotencyStore
	ttl     time.Duration
	metrics *metrics.Metrics
	log     zerolog.Logger
}

// NewIdempotencyGuard returns a guard over store. ttl <= 0 selects DefaultIdempotencyTTL.
func NewIdempotencyGuard(store ports.IdempotencyStore, ttl time.Duration, m *metrics.Metrics, log zerolog.Logger) *IdempotencyGuard {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	return &IdempotencyGuard{store: store, ttl: ttl, metrics: m, log: log}
}

// ReserveOrFetch returns the id bound to key, or runs create and binds its
// result. Errors from create are returned unchanged and nothing is stored.
func (g *IdempotencyGuard) ReserveOrFetch(ctx context.Context, scope, key string, create CreateFunc) (IdempotencyOutcome, error) {
	id, err := g.store.Lookup(ctx, scope, key)
	switch {
	case err != nil:
		g.metrics.IdempotencyLookup("unavailable")
		g.log.Warn().Err(err).Str("scope", scope).Msg("idempotency lookup failed, treating as miss")
	case id != "":
		g.metrics.IdempotencyLookup("hit")
		return IdempotencyOutcome{ApplicationID: id}, nil
	default:
		g.metrics.IdempotencyLookup("miss")
	}

	return g.CreateAndRemember(ctx, scope, key, create)
}

// CreateAndRemember skips the lookup. It is used when a remembered id turned
// out to be stale.
func (g *IdempotencyGuard) CreateAndRemember(ctx context.Context, scope, key string, create CreateFunc) (IdempotencyOutcome, error) {
	id, err := create(ctx)
	if err != nil {
		return IdempotencyOutcome{}, err
	}

	if err := g.store.Remember(ctx, scope, key, id, g.ttl); err != nil {
		g.log.Warn().Err(err).Str("scope", scope).Str("application_id", id).Msg("failed to store idempotency key")
	}
	return IdempotencyOutcome{ApplicationID: id, Created: true}, nil
}
