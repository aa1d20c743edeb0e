package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hiretrack/hiretrack-api/internal/core/domain"
	"github.com/hiretrack/hiretrack-api/internal/core/ports"
)

// TaskHandlers implements the worker-side handling of the built-in task types.
// Every handler is safe to run more than once for the same task.
type TaskHandlers struct {
	audit    ports.AuditSink
	notifier ports.Notifier
	log      zerolog.Logger
	now      func() time.Time
}

// NewTaskHandlers returns handlers writing to audit and notifying through notifier.
func NewTaskHandlers(audit ports.AuditSink, notifier ports.Notifier, log zerolog.Logger) *TaskHandlers {
	return &TaskHandlers{
		audit:    audit,
		notifier: notifier,
		log:      log.With().Str("component", "task_handlers").Logger(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Registry maps every known task type to its handler.
func (h *TaskHandlers) Registry() map[string]ports.TaskHandlerFunc {
	return map[string]ports.TaskHandlerFunc{
		domain.TaskApplicationSubmitted:     h.ApplicationSubmitted,
		domain.TaskApplicationStatusChanged: h.ApplicationStatusChanged,
	}
}

// ApplicationSubmitted records the asynchronous follow-up of a submission and
// notifies the applicant.
func (h *TaskHandlers) ApplicationSubmitted(ctx context.Context, task *domain.Task) error {
	var p domain.ApplicationSubmittedPayload
	if err := json.Unmarshal(task.Payload, &p); err != nil {
		return fmt.Errorf("decode %s payload: %w", task.Type, err)
	}
	if p.ApplicationID == "" {
		return fmt.Errorf("decode %s payload: %w: missing applicationId", task.Type, domain.ErrInvalidInput)
	}

	meta := map[string]any{"applicationId": p.ApplicationID, "async": true}
	if err := h.writeAudit(ctx, task, domain.AuditApplicationSubmittedAsync, p.ApplicationID, meta); err != nil {
		return err
	}
	return h.notifier.Notify(ctx, task.Type, p)
}

// ApplicationStatusChanged records the asynchronous follow-up of a status
// change and notifies the applicant.
func (h *TaskHandlers) ApplicationStatusChanged(ctx context.Context, task *domain.Task) error {
	var p domain.ApplicationStatusChangedPayload
	if err := json.Unmarshal(task.Payload, &p); err != nil {
		return fmt.Errorf("decode %s payload: %w", task.Type, err)
	}
	if p.ApplicationID == "" {
		return fmt.Errorf("decode %s payload: %w: missing applicationId", task.Type, domain.ErrInvalidInput)
	}

	meta := map[string]any{"applicationId": p.ApplicationID, "async": true, "status": string(p.Status)}
	if err := h.writeAudit(ctx, task, domain.AuditStatusChangedAsync, p.ApplicationID, meta); err != nil {
		return err
	}
	return h.notifier.Notify(ctx, task.Type, p)
}

// writeAudit derives the entry id from the task id so a redelivered task
// finds its own earlier entry instead of writing a second one.
func (h *TaskHandlers) writeAudit(ctx context.Context, task *domain.Task, action, applicationID string, meta map[string]any) error {
	entry := &domain.AuditEntry{
		ID:         TaskAuditID(task.ID, action),
		Action:     action,
		EntityType: domain.EntityApplication,
		EntityID:   applicationID,
		Metadata:   meta,
		CreatedAt:  h.now(),
	}

	err := h.audit.Insert(ctx, entry)
	if errors.Is(err, domain.ErrDuplicateEntry) {
		h.log.Debug().Str("task_id", task.ID).Str("action", action).Msg("audit entry already written")
		return nil
	}
	if err != nil {
		return fmt.Errorf("write audit %s: %w", action, err)
	}
	return nil
}

// TaskAuditID returns the deterministic audit entry id for (taskID, action).
func TaskAuditID(taskID, action string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(taskID+"/"+action)).String()
}
