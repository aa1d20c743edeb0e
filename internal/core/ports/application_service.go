package ports

import (
	"context"

	"github.com/hiretrack/hiretrack-api/internal/core/domain"
)

// SubmitApplicationInput carries everything needed to file an application.
type SubmitApplicationInput struct {
	ApplicantID    string
	JobID          string
	ResumeText     string
	CoverLetter    string
	IdempotencyKey string
}

// SubmitResult is returned by Submit.
type SubmitResult struct {
	Application *domain.Application
	// Replayed is true when the idempotency key matched an earlier submission.
	Replayed bool
}

// JobSummary is the job view embedded in application details.
type JobSummary struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Company  string `json:"company"`
	Location string `json:"location"`
}

// ApplicationDetail is the full application view including its history.
type ApplicationDetail struct {
	Application *domain.Application
	Job         JobSummary
	History     []domain.StatusHistoryEntry
}

// ApplicationPage is one page of applications.
type ApplicationPage struct {
	Items    []*domain.Application
	Page     int
	PageSize int
	Total    int64
}

// ApplicationService defines the use cases of the application lifecycle.
type ApplicationService interface {
	Submit(ctx context.Context, in SubmitApplicationInput) (*SubmitResult, error)
	ChangeStatus(ctx context.Context, actor domain.Actor, applicationID string, status domain.ApplicationStatus) (*domain.Application, error)
	Get(ctx context.Context, actor domain.Actor, applicationID string) (*ApplicationDetail, error)
	ListMine(ctx context.Context, actor domain.Actor, page, pageSize int) (*ApplicationPage, error)
	ListForJob(ctx context.Context, actor domain.Actor, jobID string, status domain.ApplicationStatus, page, pageSize int) (*ApplicationPage, error)
}
