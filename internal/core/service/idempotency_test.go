package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/hiretrack/hiretrack-api/internal/core/domain"
)

func TestIdempotencyGuard_MissCreatesAndRemembers(t *testing.T) {
	store := newStubIdemStore()
	g := NewIdempotencyGuard(store, 0, nil, zerolog.Nop())

	calls := 0
	out, err := g.ReserveOrFetch(context.Background(), "u1", "k", func(context.Context) (string, error) {
		calls++
		return "app-1", nil
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if !out.Created || out.ApplicationID != "app-1" || calls != 1 {
		t.Errorf("unexpected outcome %+v after %d calls", out, calls)
	}
	if store.data["u1:k"] != "app-1" {
		t.Error("expected mapping stored")
	}
}

func TestIdempotencyGuard_HitSkipsCreate(t *testing.T) {
	store := newStubIdemStore()
	store.data["u1:k"] = "app-1"
	g := NewIdempotencyGuard(store, 0, nil, zerolog.Nop())

	out, err := g.ReserveOrFetch(context.Background(), "u1", "k", func(context.Context) (string, error) {
		t.Fatal("create must not run on a hit")
		return "", nil
	})
	if err != nil || out.Created || out.ApplicationID != "app-1" {
		t.Fatalf("unexpected outcome %+v (%v)", out, err)
	}
}

func TestIdempotencyGuard_ScopedPerApplicant(t *testing.T) {
	store := newStubIdemStore()
	store.data["u1:k"] = "app-1"
	g := NewIdempotencyGuard(store, 0, nil, zerolog.Nop())

	out, err := g.ReserveOrFetch(context.Background(), "u2", "k", func(context.Context) (string, error) {
		return "app-2", nil
	})
	if err != nil || !out.Created || out.ApplicationID != "app-2" {
		t.Fatalf("same key from another applicant must not collide, got %+v (%v)", out, err)
	}
}

func TestIdempotencyGuard_StoreDownFailsOpen(t *testing.T) {
	store := newStubIdemStore()
	store.lookupErr = fmt.Errorf("lookup: %w", domain.ErrCacheUnavailable)
	store.rememberErr = fmt.Errorf("remember: %w", domain.ErrCacheUnavailable)
	g := NewIdempotencyGuard(store, 0, nil, zerolog.Nop())

	out, err := g.ReserveOrFetch(context.Background(), "u1", "k", func(context.Context) (string, error) {
		return "app-1", nil
	})
	if err != nil || !out.Created {
		t.Fatalf("expected creation despite store failures, got %+v (%v)", out, err)
	}
}

func TestIdempotencyGuard_CreateErrorNotRemembered(t *testing.T) {
	store := newStubIdemStore()
	g := NewIdempotencyGuard(store, 0, nil, zerolog.Nop())

	_, err := g.ReserveOrFetch(context.Background(), "u1", "k", func(context.Context) (string, error) {
		return "", domain.ErrJobNotFound
	})
	if !errors.Is(err, domain.ErrJobNotFound) {
		t.Fatalf("expected create error returned, got: %v", err)
	}
	if len(store.data) != 0 {
		t.Error("expected nothing stored")
	}
}
