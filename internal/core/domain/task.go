package domain

import "encoding/json"

// Task types produced by the core and consumed by the worker.
const (
	TaskApplicationSubmitted     = "application.submitted"
	TaskApplicationStatusChanged = "application.status_changed"
)

// Task is a unit of deferred work. Its JSON form is the wire format stored in
// the queue and DLQ lists and must stay stable.
type Task struct {
	ID       string          `json:"id"`
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
	Error    string          `json:"error,omitempty"`
}

// ApplicationSubmittedPayload is the payload of TaskApplicationSubmitted.
type ApplicationSubmittedPayload struct {
	ApplicationID string `json:"applicationId"`
	JobID         string `json:"jobId"`
	ApplicantID   string `json:"applicantId"`
}

// ApplicationStatusChangedPayload is the payload of TaskApplicationStatusChanged.
type ApplicationStatusChangedPayload struct {
	ApplicationID string            `json:"applicationId"`
	Status        ApplicationStatus `json:"status"`
	ChangedBy     string            `json:"changedBy"`
}
