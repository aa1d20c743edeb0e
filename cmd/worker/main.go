// Command worker consumes the task queue: it writes audit entries, sends
// notifications, retries failures with backoff and dead-letters tasks that
// keep failing. Prometheus metrics are served on WORKER_METRICS_PORT.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

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
	log := logger.New(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty, Service: "hiretrack-worker"})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("worker stopped")
	}
	log.Info().Msg("worker stopped")
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
	notifier := notify.New(cfg.Notify.WebhookURL, cfg.Notify.WebhookSecret, nil, log)
	handlers := service.NewTaskHandlers(st.Audit, notifier, log)
	w := queue.NewWorker(tasks, handlers.Registry(), queue.Config{
		PollTimeout: cfg.Worker.PollTimeout,
		TaskTimeout: cfg.Worker.TaskTimeout,
	}, m, log)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg}))
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("port", cfg.Worker.MetricsPort).Msg("worker metrics listening")
		if err := e.Start(":" + cfg.Worker.MetricsPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

	g.Go(func() error {
		log.Info().Str("store", cfg.StoreDriver).Msg("worker started")
		return w.Run(gctx)
	})

	return g.Wait()
}
