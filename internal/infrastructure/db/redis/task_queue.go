package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/hiretrack/hiretrack-api/internal/core/domain"
)

// TaskQueue is a FIFO of JSON tasks on a Redis list plus a dead-letter list.
// Producers RPUSH, the single consumer BLPOPs.
// Every call except Dequeue is bounded by opTimeout.
type TaskQueue struct {
	client    redis.Cmdable
	opTimeout time.Duration
}

// NewTaskQueue creates a TaskQueue wrapping the given Redis client.
func NewTaskQueue(client redis.Cmdable, opTimeout time.Duration) *TaskQueue {
	return &TaskQueue{client: client, opTimeout: opTimeout}
}

// Enqueue appends a fresh task to the queue.
func (q *TaskQueue) Enqueue(ctx context.Context, taskType string, payload any) (*domain.Task, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("enqueue %s: encode payload: %w", taskType, err)
	}

	task := &domain.Task{
		ID:      uuid.NewString(),
		Type:    taskType,
		Payload: raw,
	}
	if err := q.push(ctx, TasksKey, task); err != nil {
		return nil, fmt.Errorf("enqueue %s: %w", taskType, err)
	}
	return task, nil
}

// Dequeue waits up to timeout for the next task. It returns (nil, nil) when
// the wait expires, and also when the popped entry is not a valid task; such
// entries are dead-lettered as they are found.
func (q *TaskQueue) Dequeue(ctx context.Context, timeout time.Duration) (*domain.Task, error) {
	res, err := q.client.BLPop(ctx, timeout, TasksKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("dequeue: %w", err)
	}
	// res is [key, value].
	if len(res) != 2 {
		return nil, fmt.Errorf("dequeue: unexpected BLPOP reply of %d elements", len(res))
	}

	var task domain.Task
	if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
		if dlqErr := q.deadLetterRaw(ctx, res[1], err); dlqErr != nil {
			return nil, fmt.Errorf("dequeue: decode task: %w (dead-letter failed: %v)", err, dlqErr)
		}
		return nil, nil
	}
	return &task, nil
}

// deadLetterRaw moves an entry that is not a task onto the DLQ. The raw text
// is kept as a JSON string payload so the DLQ stays decodable.
func (q *TaskQueue) deadLetterRaw(ctx context.Context, raw string, decodeErr error) error {
	payload, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	task := &domain.Task{
		Payload: payload,
		Error:   "decode: " + decodeErr.Error(),
	}
	// The entry is already popped; finish the push even if ctx is ending.
	return q.push(context.WithoutCancel(ctx), DLQKey, task)
}

// Requeue appends task, attempts preserved, at the tail of the queue.
func (q *TaskQueue) Requeue(ctx context.Context, task *domain.Task) error {
	if err := q.push(ctx, TasksKey, task); err != nil {
		return fmt.Errorf("requeue %s: %w", task.ID, err)
	}
	return nil
}

// PushDLQ appends task verbatim to the dead-letter list.
func (q *TaskQueue) PushDLQ(ctx context.Context, task *domain.Task) error {
	if err := q.push(ctx, DLQKey, task); err != nil {
		return fmt.Errorf("push dlq %s: %w", task.ID, err)
	}
	return nil
}

// Depth returns the number of tasks waiting in the main queue.
func (q *TaskQueue) Depth(ctx context.Context) (int64, error) {
	ctx, cancel := withOpTimeout(ctx, q.opTimeout)
	defer cancel()

	n, err := q.client.LLen(ctx, TasksKey).Result()
	if err != nil {
		return 0, fmt.Errorf("queue depth: %w", err)
	}
	return n, nil
}

// DLQSize returns the number of dead-lettered tasks.
func (q *TaskQueue) DLQSize(ctx context.Context) (int64, error) {
	ctx, cancel := withOpTimeout(ctx, q.opTimeout)
	defer cancel()

	n, err := q.client.LLen(ctx, DLQKey).Result()
	if err != nil {
		return 0, fmt.Errorf("dlq size: %w", err)
	}
	return n, nil
}

// ListDLQ returns up to limit dead-lettered tasks starting at offset, oldest first.
// Entries that fail to decode are skipped.
func (q *TaskQueue) ListDLQ(ctx context.Context, offset, limit int64) ([]*domain.Task, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		return []*domain.Task{}, nil
	}

	ctx, cancel := withOpTimeout(ctx, q.opTimeout)
	defer cancel()

	raws, err := q.client.LRange(ctx, DLQKey, offset, offset+limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("list dlq: %w", err)
	}

	tasks := make([]*domain.Task, 0, len(raws))
	for _, raw := range raws {
		var t domain.Task
		if err := json.Unmarshal([]byte(raw), &t); err != nil {
			continue
		}
		tasks = append(tasks, &t)
	}
	return tasks, nil
}

// Ping checks connectivity of the underlying client.
func (q *TaskQueue) Ping(ctx context.Context) error {
	ctx, cancel := withOpTimeout(ctx, q.opTimeout)
	defer cancel()
	return q.client.Ping(ctx).Err()
}

func (q *TaskQueue) push(ctx context.Context, key string, task *domain.Task) error {
	raw, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("encode task: %w", err)
	}

	ctx, cancel := withOpTimeout(ctx, q.opTimeout)
	defer cancel()
	return q.client.RPush(ctx, key, raw).Err()
}
