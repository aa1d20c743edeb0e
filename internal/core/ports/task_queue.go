package ports

import (
	"context"
	"time"

	"github.com/hiretrack/hiretrack-api/internal/core/domain"
)

// TaskEnqueuer is the producer side of the task queue.
type TaskEnqueuer interface {
	// Enqueue appends a new task with attempts = 0 at the tail of the queue.
	Enqueue(ctx context.Context, taskType string, payload any) (*domain.Task, error)
}

// TaskQueue is a durable FIFO with a dead-letter list.
type TaskQueue interface {
	TaskEnqueuer
	// Dequeue blocks up to timeout for the next task. It returns (nil, nil)
	// when nothing arrived in time.
	Dequeue(ctx context.Context, timeout time.Duration) (*domain.Task, error)
	// Requeue appends an existing task (attempts preserved) at the tail.
	Requeue(ctx context.Context, task *domain.Task) error
	// PushDLQ moves a task verbatim into the dead-letter list.
	PushDLQ(ctx context.Context, task *domain.Task) error
	Depth(ctx context.Context) (int64, error)
	DLQSize(ctx context.Context) (int64, error)
	// ListDLQ returns dead-lettered tasks in arrival order for operator inspection.
	ListDLQ(ctx context.Context, offset, limit int64) ([]*domain.Task, error)
}

// Notifier delivers user-facing notifications produced by task handlers.
type Notifier interface {
	Notify(ctx context.Context, event string, payload any) error
}

// TaskHandlerFunc processes one task. A non-nil error makes the worker retry
// the task or dead-letter it.
type TaskHandlerFunc func(ctx context.Context, task *domain.Task) error
