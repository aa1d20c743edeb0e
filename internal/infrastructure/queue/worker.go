package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hiretrack/hiretrack-api/internal/core/domain"
	"github.com/hiretrack/hiretrack-api/internal/core/ports"
	"github.com/hiretrack/hiretrack-api/internal/metrics"
)

const (
	// MaxRetries is the number of failed attempts after which a task is dead-lettered.
	MaxRetries = 3

	defaultPollTimeout = 5 * time.Second
	defaultTaskTimeout = 30 * time.Second
)

// Backoff is the delay before re-queueing a task after its n-th failure
// (index n-1). Failures beyond the table reuse the last entry.
var Backoff = []time.Duration{1 * time.Second, 4 * time.Second, 10 * time.Second}

// ErrUnknownTaskType is recorded on tasks whose type has no handler.
var ErrUnknownTaskType = errors.New("unknown task type")

// Sleeper waits for d or until ctx is done, reporting whether the full
// duration elapsed.
type Sleeper func(ctx context.Context, d time.Duration) bool

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Config tunes the worker loop.
type Config struct {
	PollTimeout time.Duration
	TaskTimeout time.Duration
}

// Worker is the single consumer of the task queue. Tasks are handled one at a
// time in dequeue order; a failing task is retried with backoff and finally
// moved to the dead-letter queue.
type Worker struct {
	queue    ports.TaskQueue
	handlers map[string]ports.TaskHandlerFunc
	cfg      Config
	metrics  *metrics.Metrics
	log      zerolog.Logger
	sleep    Sleeper
}

// NewWorker creates a Worker dispatching by task type to handlers.
func NewWorker(q ports.TaskQueue, handlers map[string]ports.TaskHandlerFunc, cfg Config, m *metrics.Metrics, log zerolog.Logger) *Worker {
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = defaultPollTimeout
	}
	if cfg.TaskTimeout <= 0 {
		cfg.TaskTimeout = defaultTaskTimeout
	}
	return &Worker{
		queue:    q,
		handlers: handlers,
		cfg:      cfg,
		metrics:  m,
		log:      log.With().Str("component", "worker").Logger(),
		sleep:    sleepCtx,
	}
}

// WithSleeper replaces the backoff sleeper. Intended for tests.
func (w *Worker) WithSleeper(s Sleeper) *Worker {
	w.sleep = s
	return w
}

// Run consumes tasks until ctx is cancelled. It always returns nil once ctx is done.
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info().Dur("poll_timeout", w.cfg.PollTimeout).Msg("worker started")
	for {
		if ctx.Err() != nil {
			w.log.Info().Msg("worker stopped")
			return nil
		}
		if _, err := w.ProcessOnce(ctx); err != nil && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("queue unavailable, pausing")
			w.sleep(ctx, w.cfg.PollTimeout)
		}
	}
}

// ProcessOnce dequeues and handles at most one task. It reports whether a task
// was dequeued. The error is non-nil only for queue substrate failures.
func (w *Worker) ProcessOnce(ctx context.Context) (bool, error) {
	w.refreshDepth(ctx)

	task, err := w.queue.Dequeue(ctx, w.cfg.PollTimeout)
	if err != nil {
		return false, err
	}
	if task == nil {
		return false, nil
	}

	start := time.Now()
	herr := w.handle(ctx, task)
	if herr == nil {
		w.metrics.TaskHandled(task.Type, "processed", time.Since(start))
		w.log.Debug().Str("task_id", task.ID).Str("type", task.Type).Msg("task processed")
		return true, nil
	}

	w.fail(ctx, task, herr, time.Since(start))
	return true, nil
}

func (w *Worker) handle(ctx context.Context, task *domain.Task) error {
	h, ok := w.handlers[task.Type]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTaskType, task.Type)
	}

	tctx, cancel := context.WithTimeout(ctx, w.cfg.TaskTimeout)
	defer cancel()
	return h(tctx, task)
}

// fail records the failure on the task and either schedules a retry or moves
// the task to the DLQ.
func (w *Worker) fail(ctx context.Context, task *domain.Task, herr error, took time.Duration) {
	task.Attempts++
	task.Error = herr.Error()

	if task.Attempts >= MaxRetries {
		w.metrics.TaskHandled(task.Type, "dead_lettered", took)
		if err := w.queue.PushDLQ(context.WithoutCancel(ctx), task); err != nil {
			w.log.Error().Err(err).Str("task_id", task.ID).Msg("failed to dead-letter task")
			return
		}
		w.log.Error().
			Str("task_id", task.ID).
			Str("type", task.Type).
			Int("attempts", task.Attempts).
			Str("error", task.Error).
			Msg("task failed permanently")
		return
	}

	delay := BackoffFor(task.Attempts)
	w.metrics.TaskHandled(task.Type, "retried", took)
	w.log.Warn().
		Str("task_id", task.ID).
		Str("type", task.Type).
		Int("attempts", task.Attempts).
		Dur("delay", delay).
		Str("error", task.Error).
		Msg("task retry scheduled")

	if !w.sleep(ctx, delay) {
		w.log.Info().Str("task_id", task.ID).Msg("shutting down, re-queueing task without delay")
	}
	if err := w.queue.Requeue(context.WithoutCancel(ctx), task); err != nil {
		w.log.Error().Err(err).Str("task_id", task.ID).Msg("failed to re-queue task")
	}
}

// BackoffFor returns the delay after the given number of failed attempts.
func BackoffFor(attempts int) time.Duration {
	i := attempts - 1
	if i < 0 {
		i = 0
	}
	if i >= len(Backoff) {
		i = len(Backoff) - 1
	}
	return Backoff[i]
}

func (w *Worker) refreshDepth(ctx context.Context) {
	if w.metrics == nil {
		return
	}
	depth, err := w.queue.Depth(ctx)
	if err != nil {
		return
	}
	dlq, err := w.queue.DLQSize(ctx)
	if err != nil {
		return
	}
	w.metrics.QueueDepth(depth, dlq)
}
