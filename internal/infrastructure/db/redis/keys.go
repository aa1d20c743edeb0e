package redis

// Redis key naming. These namespaces are shared with other producers and
// consumers of the same Redis instance and must not change.

// ── Idempotency ──

// idempotencyKey returns idem:{scope}:{key}.
func idempotencyKey(scope, key string) string { return "idem:" + scope + ":" + key }

// ── Queue ──

const (
	// TasksKey is the main task list (RPUSH producers, BLPOP consumer).
	TasksKey = "queue:tasks"
	// DLQKey holds tasks that exhausted their retries.
	DLQKey = "queue:dlq"
)

// scanBatch is the COUNT hint for SCAN during prefix invalidation.
const scanBatch = 200
