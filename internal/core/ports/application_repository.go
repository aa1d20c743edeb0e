package ports

import (
	"context"

	"github.com/hiretrack/hiretrack-api/internal/core/domain"
)

// ListApplicationsFilter selects applications either by applicant or by job.
type ListApplicationsFilter struct {
	ApplicantID string
	JobID       string
	Status      domain.ApplicationStatus // optional
	Page        int
	PageSize    int
}

// ApplicationRepository is the only writer of applications and their status
// history. Every mutating method commits all of its writes as one unit.
type ApplicationRepository interface {
	// Create inserts the application, its initial history entry and the audit
	// entry in one transaction. A second application for the same
	// (job, applicant) returns domain.ErrDuplicateApplication.
	Create(ctx context.Context, app *domain.Application, history *domain.StatusHistoryEntry, audit *domain.AuditEntry) error

	// UpdateStatus moves the application from `from` to history.Status,
	// appends history and writes audit in one transaction. If the stored
	// status is no longer `from` nothing is written and
	// domain.ErrInvalidTransition is returned.
	UpdateStatus(ctx context.Context, id string, from domain.ApplicationStatus, history *domain.StatusHistoryEntry, audit *domain.AuditEntry) (*domain.Application, error)

	FindByID(ctx context.Context, id string) (*domain.Application, error)
	FindByJobAndApplicant(ctx context.Context, jobID, applicantID string) (*domain.Application, error)
	// History returns the status history ordered by ChangedAt ascending.
	History(ctx context.Context, applicationID string) ([]domain.StatusHistoryEntry, error)
	// List returns a page of applications (newest first) and the total count.
	List(ctx context.Context, filter ListApplicationsFilter) ([]*domain.Application, int64, error)
}

// AuditSink is the write-only audit log used outside of repository transactions.
type AuditSink interface {
	// Insert writes the entry. Writing an entry whose ID already exists
	// returns domain.ErrDuplicateEntry.
	Insert(ctx context.Context, entry *domain.AuditEntry) error
}
