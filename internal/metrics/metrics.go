// Package metrics defines all custom Prometheus metrics for HireTrack. It is
// the single source of truth for metric names, labels, and help strings.
//
// Collectors are registered on the registry handed to New, so tests can use a
// fresh prometheus.NewRegistry() per case. A nil *Metrics is valid and
// records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "hiretrack"

// Metrics groups every collector used by the core and the worker.
type Metrics struct {
	applicationsSubmitted *prometheus.CounterVec
	statusTransitions     *prometheus.CounterVec
	idempotency           *prometheus.CounterVec
	listingCache          *prometheus.CounterVec
	tasksEnqueued         *prometheus.CounterVec
	tasksProcessed        *prometheus.CounterVec
	taskDuration          *prometheus.HistogramVec
	queueDepth            *prometheus.GaugeVec
}

// New builds and registers all collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		// ── Application metrics ──────────────────────────────────────────────
		// result: "created", "replayed", "duplicate", "rejected"
		applicationsSubmitted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "applications_submitted_total",
			Help:      "Application submissions, labelled by outcome.",
		}, []string{"result"}),
		statusTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "application_status_transitions_total",
			Help:      "Committed application status transitions.",
		}, []string{"from", "to"}),

		// ── Cache metrics ────────────────────────────────────────────────────
		// result: "hit", "miss", "unavailable"
		idempotency: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "idempotency_lookups_total",
			Help:      "Idempotency key lookups, labelled by result.",
		}, []string{"result"}),
		listingCache: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listing_cache_lookups_total",
			Help:      "Job listing cache lookups, labelled by result.",
		}, []string{"result"}),

		// ── Task queue metrics ───────────────────────────────────────────────
		tasksEnqueued: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_enqueued_total",
			Help:      "Tasks appended to the queue by producers.",
		}, []string{"type"}),
		// outcome: "processed", "retried", "dead_lettered"
		tasksProcessed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_handled_total",
			Help:      "Tasks handled by the worker, labelled by type and outcome.",
		}, []string{"type", "outcome"}),
		taskDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "task_duration_seconds",
			Help:      "Duration of a single task handler invocation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"type"}),
		// queue: "tasks" or "dlq"
		queueDepth: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_depth",
			Help:      "Current length of the task queue and the dead-letter queue.",
		}, []string{"queue"}),
	}
}

func (m *Metrics) ApplicationSubmitted(result string) {
	if m == nil {
		return
	}
	m.applicationsSubmitted.WithLabelValues(result).Inc()
}

func (m *Metrics) StatusTransition(from, to string) {
	if m == nil {
		return
	}
	m.statusTransitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) IdempotencyLookup(result string) {
	if m == nil {
		return
	}
	m.idempotency.WithLabelValues(result).Inc()
}

func (m *Metrics) ListingCacheLookup(result string) {
	if m == nil {
		return
	}
	m.listingCache.WithLabelValues(result).Inc()
}

func (m *Metrics) TaskEnqueued(taskType string) {
	if m == nil {
		return
	}
	m.tasksEnqueued.WithLabelValues(taskType).Inc()
}

// TaskHandled records the outcome of one handler invocation and its duration.
func (m *Metrics) TaskHandled(taskType, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.tasksProcessed.WithLabelValues(taskType, outcome).Inc()
	m.taskDuration.WithLabelValues(taskType).Observe(d.Seconds())
}

// QueueDepth sets the gauges for the main queue and the DLQ.
func (m *Metrics) QueueDepth(tasks, dlq int64) {
	if m == nil {
		return
	}
	m.queueDepth.WithLabelValues("tasks").Set(float64(tasks))
	m.queueDepth.WithLabelValues("dlq").Set(float64(dlq))
}
