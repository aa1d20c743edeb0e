package domain

import "errors"

// Validation errors: caller fault, never retried.
var (
	ErrMissingIdempotencyKey = errors.New("idempotency key required")
	ErrInvalidStatus         = errors.New("invalid application status")
	ErrInvalidInput          = errors.New("invalid input")
)

// Not found / forbidden.
var (
	ErrJobNotFound         = errors.New("job not found")
	ErrApplicationNotFound = errors.New("application not found")
	ErrForbidden           = errors.New("access forbidden")
)

// Business-rule conflicts.
var (
	ErrJobArchived          = errors.New("job is archived")
	ErrDuplicateApplication = errors.New("application already exists")
	ErrInvalidTransition    = errors.New("invalid status transition")
)

// Cache substrate results. Callers always treat both as a miss.
var (
	ErrCacheMiss        = errors.New("cache miss")
	ErrCacheUnavailable = errors.New("cache unavailable")
)

// ErrDuplicateEntry is returned by sinks when a record with the same id was
// already written. Idempotent writers treat it as success.
var ErrDuplicateEntry = errors.New("duplicate entry")
