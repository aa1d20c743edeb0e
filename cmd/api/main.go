// Command api serves the HireTrack HTTP API. With EMBEDDED_WORKER=true it
// also consumes the task queue in-process.
//
// @title                       HireTrack API
// @version                     1.0
// @description                 Job applications with idempotent submission and a status lifecycle.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/hiretrack/hiretrack-api/internal/api"
	"github.com/hiretrack/hiretrack-api/internal/core/service"
	"github.com/hiretrack/hiretrack-api/internal/infrastructure/config"
	redisstore "github.com/hiretrack/hiretrack-api/internal/infrastructure/db/redis"
	"github.com/hiretrack/hiretrack-api/internal/infrastructure/notify"
	"github.com/hiretrack/hiretrack-api/internal/infrastructure/queue"
	"github.com/hiretrack/hiretrack-api/internal/infrastructure/store"
	"github.com/hiretrack/hiretrack-api/internal/metrics"
	"github.com/hiretrack/hiretrack-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad(ctx)
	log := logger.New(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty, Service: "hiretrack-api"})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("api stopped")
	}
	log.Info().Msg("api stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	st, err := store.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close(context.Background())

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	tasks := redisstore.NewTaskQueue(rdb, cfg.Redis.OpTimeout)
	jobs := service.NewJobService(st.Jobs, redisstore.NewListingCache(rdb, cfg.Redis.OpTimeout), cfg.Cache.ListingTTL, m, log)
	guard := service.NewIdempotencyGuard(redisstore.NewIdempotencyStore(rdb, cfg.Redis.OpTimeout), cfg.Cache.IdempotencyTTL, m, log)
	apps := service.NewApplicationService(st.Jobs, st.Applications, guard, jobs, tasks, m, log)

	e := api.NewRouter(api.Dependencies{
		Applications: apps,
		Jobs:         jobs,
		Queue:        tasks,
		DBCheck:      st.Ping,
		RedisCheck:   tasks.Ping,
		Registry:     reg,
		JWTSecret:    cfg.JWTSecret,
		Log:          log,
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Str("store", cfg.StoreDriver).Msg("api listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	if cfg.EmbeddedWorker {
		handlers := service.NewTaskHandlers(st.Audit, notify.New(cfg.Notify.WebhookURL, cfg.Notify.WebhookSecret, nil, log), log)
		w := queue.NewWorker(tasks, handlers.Registry(), queue.Config{
			PollTimeout: cfg.Worker.PollTimeout,
			TaskTimeout: cfg.Worker.TaskTimeout,
		}, m, log)
		g.Go(func() error { return w.Run(gctx) })
	}

	return g.Wait()
}
