package domain

import (
	"fmt"
	"time"
)

// ApplicationStatus represents the lifecycle state of an application.
type ApplicationStatus string

const (
	StatusApplied   ApplicationStatus = "applied"
	StatusReviewed  ApplicationStatus = "reviewed"
	StatusInterview ApplicationStatus = "interview"
	StatusAccepted  ApplicationStatus = "accepted"
	StatusRejected  ApplicationStatus = "rejected"
)

// AllApplicationStatuses lists every variant of ApplicationStatus.
var AllApplicationStatuses = []ApplicationStatus{
	StatusApplied,
	StatusReviewed,
	StatusInterview,
	StatusAccepted,
	StatusRejected,
}

// validTransitions is the closed transition table. Every status has an entry;
// terminal statuses map to an empty set.
var validTransitions = map[ApplicationStatus][]ApplicationStatus{
	StatusApplied:   {StatusReviewed, StatusRejected},
	StatusReviewed:  {StatusInterview, StatusRejected},
	StatusInterview: {StatusAccepted, StatusRejected},
	StatusAccepted:  {},
	StatusRejected:  {},
}

// ParseApplicationStatus converts raw input into a known status.
func ParseApplicationStatus(s string) (ApplicationStatus, error) {
	st := ApplicationStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

// Valid reports whether s is a known variant.
func (s ApplicationStatus) Valid() bool {
	_, ok := validTransitions[s]
	return ok
}

// IsTerminal reports whether no transition may leave s.
func (s ApplicationStatus) IsTerminal() bool {
	return s.Valid() && len(validTransitions[s]) == 0
}

// CanTransitionTo reports whether a transition from current status to next is valid.
// Self transitions are never listed and therefore never valid.
func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// AllowedTransitions returns a copy of the destinations reachable from s.
func (s ApplicationStatus) AllowedTransitions() []ApplicationStatus {
	out := make([]ApplicationStatus, len(validTransitions[s]))
	copy(out, validTransitions[s])
	return out
}

// Application is a single candidacy of one applicant for one job.
// At most one exists per (JobID, ApplicantID).
type Application struct {
	ID             string            `json:"id" bson:"_id"`
	JobID          string            `json:"job_id" bson:"job_id"`
	ApplicantID    string            `json:"applicant_id" bson:"applicant_id"`
	ResumeText     string            `json:"resume_text" bson:"resume_text"`
	CoverLetter    string            `json:"cover_letter,omitempty" bson:"cover_letter,omitempty"`
	Status         ApplicationStatus `json:"status" bson:"status"`
	IdempotencyKey string            `json:"-" bson:"idempotency_key"`
	CreatedAt      time.Time         `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at" bson:"updated_at"`
}

// StatusHistoryEntry records a single status an application entered.
type StatusHistoryEntry struct {
	ID            string            `json:"id" bson:"_id"`
	ApplicationID string            `json:"application_id" bson:"application_id"`
	Status        ApplicationStatus `json:"status" bson:"status"`
	ChangedAt     time.Time         `json:"changed_at" bson:"changed_at"`
	ChangedBy     string            `json:"changed_by" bson:"changed_by"`
}
