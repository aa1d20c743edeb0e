package redis

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/hiretrack/hiretrack-api/internal/core/domain"
)

func TestTaskQueue_EnqueueWireFormat(t *testing.T) {
	mr, client := newTestClient(t)
	q := NewTaskQueue(client, 0)

	task, err := q.Enqueue(context.Background(), domain.TaskApplicationSubmitted, domain.ApplicationSubmittedPayload{
		ApplicationID: "app-1", JobID: "job-1", ApplicantID: "u1",
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if task.ID == "" || task.Attempts != 0 {
		t.Errorf("unexpected task %+v", task)
	}

	items, err := mr.List(TasksKey)
	if err != nil || len(items) != 1 {
		t.Fatalf("expected one item in %s, got %v (%v)", TasksKey, items, err)
	}
	var wire map[string]any
	if err := json.Unmarshal([]byte(items[0]), &wire); err != nil {
		t.Fatalf("decode wire: %v", err)
	}
	for _, k := range []string{"id", "type", "payload", "attempts"} {
		if _, ok := wire[k]; !ok {
			t.Errorf("wire form missing %q: %s", k, items[0])
		}
	}
	if _, ok := wire["error"]; ok {
		t.Errorf("fresh task must not carry an error field: %s", items[0])
	}
	payload := wire["payload"].(map[string]any)
	if payload["applicationId"] != "app-1" {
		t.Errorf("unexpected payload %v", payload)
	}
}

func TestTaskQueue_FIFOAndRequeue(t *testing.T) {
	_, client := newTestClient(t)
	q := NewTaskQueue(client, 0)
	ctx := context.Background()

	first, _ := q.Enqueue(ctx, "a", map[string]string{})
	second, _ := q.Enqueue(ctx, "b", map[string]string{})

	got, err := q.Dequeue(ctx, time.Second)
	if err != nil || got == nil || got.ID != first.ID {
		t.Fatalf("expected first task, got %+v (%v)", got, err)
	}

	got.Attempts = 2
	got.Error = "boom"
	if err := q.Requeue(ctx, got); err != nil {
		t.Fatalf("requeue: %v", err)
	}

	next, _ := q.Dequeue(ctx, time.Second)
	if next.ID != second.ID {
		t.Fatalf("requeued task must go to the tail, got %s", next.ID)
	}
	last, _ := q.Dequeue(ctx, time.Second)
	if last.ID != first.ID || last.Attempts != 2 || last.Error != "boom" {
		t.Errorf("expected attempts and error preserved, got %+v", last)
	}
}

func TestTaskQueue_DequeueEmpty(t *testing.T) {
	_, client := newTestClient(t)
	q := NewTaskQueue(client, 0)

	got, err := q.Dequeue(context.Background(), time.Second)
	if err != nil || got != nil {
		t.Fatalf("expected (nil, nil) on timeout, got %+v (%v)", got, err)
	}
}

func TestTaskQueue_DLQ(t *testing.T) {
	_, client := newTestClient(t)
	q := NewTaskQueue(client, 0)
	ctx := context.Background()

	for i, id := range []string{"t1", "t2", "t3"} {
		task := &domain.Task{ID: id, Type: "x", Payload: json.RawMessage(`{}`), Attempts: 3, Error: "fail"}
		if err := q.PushDLQ(ctx, task); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}

	n, err := q.DLQSize(ctx)
	if err != nil || n != 3 {
		t.Fatalf("expected dlq size 3, got %d (%v)", n, err)
	}
	depth, _ := q.Depth(ctx)
	if depth != 0 {
		t.Errorf("dead-lettered tasks must not be in the main queue, depth %d", depth)
	}

	tasks, err := q.ListDLQ(ctx, 1, 5)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 2 || tasks[0].ID != "t2" || tasks[1].Attempts != 3 {
		t.Errorf("unexpected dlq page %+v", tasks)
	}
}

func TestTaskQueue_MalformedEntryIsDeadLettered(t *testing.T) {
	mr, client := newTestClient(t)
	q := NewTaskQueue(client, 0)
	ctx := context.Background()

	_, _ = mr.Push(TasksKey, "{not json")

	got, err := q.Dequeue(ctx, time.Second)
	if err != nil || got != nil {
		t.Fatalf("expected (nil, nil) for a malformed entry, got %+v (%v)", got, err)
	}
	if depth, _ := q.Depth(ctx); depth != 0 {
		t.Errorf("malformed entry left in queue, depth %d", depth)
	}
	if n, _ := q.DLQSize(ctx); n != 1 {
		t.Fatalf("expected malformed entry on the dlq, size %d", n)
	}

	tasks, err := q.ListDLQ(ctx, 0, 10)
	if err != nil || len(tasks) != 1 {
		t.Fatalf("list dlq: %v (%d tasks)", err, len(tasks))
	}
	if !strings.HasPrefix(tasks[0].Error, "decode: ") {
		t.Errorf("unexpected error %q", tasks[0].Error)
	}
	var raw string
	if err := json.Unmarshal(tasks[0].Payload, &raw); err != nil || raw != "{not json" {
		t.Errorf("raw entry not preserved: %s (%v)", tasks[0].Payload, err)
	}

	// A valid task behind it is still served.
	if _, err := q.Enqueue(ctx, "x", map[string]string{}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if next, err := q.Dequeue(ctx, time.Second); err != nil || next == nil || next.Type != "x" {
		t.Errorf("expected the valid task, got %+v (%v)", next, err)
	}
}
