package domain

import "time"

// Audit actions written by the core.
const (
	AuditApplicationCreated        = "application.created"
	AuditApplicationStatusChanged  = "application.status_changed"
	AuditApplicationSubmittedAsync = "application.submitted.async"
	AuditStatusChangedAsync        = "application.status_changed.async"
	AuditJobCreated                = "job.created"
	AuditJobUpdated                = "job.updated"
)

// Audit entity types.
const (
	EntityApplication = "application"
	EntityJob         = "job"
)

// AuditEntry is an append-only record of an action. ActorID is empty for
// actions performed by the system (e.g. the worker).
type AuditEntry struct {
	ID         string         `json:"id" bson:"_id"`
	ActorID    string         `json:"actor_id,omitempty" bson:"actor_id,omitempty"`
	Action     string         `json:"action" bson:"action"`
	EntityType string         `json:"entity_type" bson:"entity_type"`
	EntityID   string         `json:"entity_id,omitempty" bson:"entity_id,omitempty"`
	Metadata   map[string]any `json:"metadata" bson:"metadata"`
	CreatedAt  time.Time      `json:"created_at" bson:"created_at"`
}
