// Package store opens the persistent store selected by configuration and
// exposes its repositories behind the core ports.
package store

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hiretrack/hiretrack-api/internal/core/ports"
	"github.com/hiretrack/hiretrack-api/internal/infrastructure/config"
	mongostore "github.com/hiretrack/hiretrack-api/internal/infrastructure/db/mongo"
	pgstore "github.com/hiretrack/hiretrack-api/internal/infrastructure/db/postgres"
)

// Store bundles the repositories of one backend.
type Store struct {
	Jobs         ports.JobRepository
	Applications ports.ApplicationRepository
	Audit        ports.AuditSink
	// Ping reports whether the backend is reachable.
	Ping  func(ctx context.Context) error
	Close func(ctx context.Context) error
}

// Open connects to the configured backend and prepares its schema: unique
// indexes on Mongo, migrations on Postgres.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Store, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		return openPostgres(ctx, cfg, log)
	case config.StoreMongo:
		return openMongo(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func openMongo(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Store, error) {
	client, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		return nil, err
	}
	if err := mongostore.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	log.Info().Str("driver", config.StoreMongo).Str("database", cfg.Mongo.Database).Msg("store ready")

	return &Store{
		Jobs:         mongostore.NewJobRepository(db),
		Applications: mongostore.NewApplicationRepository(db),
		Audit:        mongostore.NewAuditRepository(db),
		Ping:         func(ctx context.Context) error { return client.Ping(ctx, nil) },
		Close:        client.Disconnect,
	}, nil
}

func openPostgres(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Store, error) {
	db, err := pgstore.Connect(pgstore.Config{
		DSN:          cfg.Postgres.DSN,
		MaxOpenConns: cfg.Postgres.MaxOpenConns,
		LogQueries:   cfg.Postgres.LogQueries,
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("unwrap db: %w", err)
	}
	if err := pgstore.Migrate(db.WithContext(ctx)); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	log.Info().Str("driver", config.StorePostgres).Msg("store ready")

	return &Store{
		Jobs:         pgstore.NewJobRepository(db),
		Applications: pgstore.NewApplicationRepository(db),
		Audit:        pgstore.NewAuditRepository(db),
		Ping:         sqlDB.PingContext,
		Close:        func(context.Context) error { return sqlDB.Close() },
	}, nil
}
