package ports

import (
	"context"

	"github.com/hiretrack/hiretrack-api/internal/core/domain"
)

// ListJobsInput carries the raw listing query of a caller.
type ListJobsInput struct {
	Query    string
	Location string
	Company  string
	Page     int
	PageSize int
}

// JobInput carries the writable fields of a job. Nil pointers leave the
// stored value untouched on update.
type JobInput struct {
	Title          *string
	Company        *string
	Location       *string
	Description    *string
	EmploymentType *domain.EmploymentType
	Remote         *bool
	Status         *domain.JobStatus
}

// JobService defines job listing (read-through cached) and the minimal write
// paths that must invalidate that cache.
type JobService interface {
	List(ctx context.Context, actor domain.Actor, in ListJobsInput) (*domain.JobPage, error)
	Get(ctx context.Context, actor domain.Actor, jobID string) (*domain.Job, error)
	Create(ctx context.Context, actor domain.Actor, in JobInput) (*domain.Job, error)
	Update(ctx context.Context, actor domain.Actor, jobID string, in JobInput) (*domain.Job, error)
	// InvalidateListings drops every cached listing. Failures are swallowed.
	InvalidateListings(ctx context.Context)
}
