package ports

import (
	"context"

	"github.com/hiretrack/hiretrack-api/internal/core/domain"
)

// ListJobsFilter carries all query parameters for listing jobs.
// Visibility (EmployerID / ActiveOnly) is always set by the service layer.
type ListJobsFilter struct {
	EmployerID string // non-empty = only jobs owned by this employer
	ActiveOnly bool   // applicants only see active jobs
	Query      string // optional: partial match on title or description
	Location   string // optional: partial match on location
	Company    string // optional: partial match on company
	Page       int    // 1-based
	PageSize   int
}

// JobRepository defines persistence operations for jobs.
type JobRepository interface {
	// Create inserts the job and its audit entry atomically.
	Create(ctx context.Context, job *domain.Job, audit *domain.AuditEntry) error
	// Update replaces the mutable fields of the job and writes the audit entry atomically.
	Update(ctx context.Context, job *domain.Job, audit *domain.AuditEntry) error
	FindByID(ctx context.Context, id string) (*domain.Job, error)
	// List returns a page of jobs matching filter (newest first) and the total count.
	List(ctx context.Context, filter ListJobsFilter) ([]*domain.Job, int64, error)
}
