package handler

import (
	"time"

	"github.com/hiretrack/hiretrack-api/internal/core/domain"
	"github.com/hiretrack/hiretrack-api/internal/core/ports"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Applications ---

type submitApplicationRequest struct {
	JobID       string `json:"job_id"       validate:"required"`
	ResumeText  string `json:"resume_text"  validate:"required,max=20000"`
	CoverLetter string `json:"cover_letter" validate:"max=5000"`
}

type changeStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type applicationLinks struct {
	Self string `json:"self"`
	Job  string `json:"job"`
}

type applicationResponse struct {
	ID          string                   `json:"id"`
	JobID       string                   `json:"job_id"`
	ApplicantID string                   `json:"applicant_id"`
	ResumeText  string                   `json:"resume_text"`
	CoverLetter string                   `json:"cover_letter,omitempty"`
	Status      domain.ApplicationStatus `json:"status"`
	CreatedAt   time.Time                `json:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at"`
	Links       applicationLinks         `json:"_links"`
}

type historyItem struct {
	Status    domain.ApplicationStatus `json:"status"`
	ChangedAt time.Time                `json:"changed_at"`
	ChangedBy string                   `json:"changed_by"`
}

type applicationDetailResponse struct {
	applicationResponse
	Job           ports.JobSummary `json:"job"`
	StatusHistory []historyItem    `json:"status_history"`
}

// pageResponse is the listing envelope shared by every paginated endpoint.
type pageResponse[T any] struct {
	Items    []T   `json:"items"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}

// --- Jobs ---

type createJobRequest struct {
	Title          string  `json:"title"           validate:"required,max=200"`
	Company        string  `json:"company"         validate:"required,max=200"`
	Location       string  `json:"location"        validate:"required,max=200"`
	Description    string  `json:"description"     validate:"required,max=20000"`
	EmploymentType *string `json:"employment_type" validate:"omitempty,oneof=full_time part_time contract"`
	Remote         *bool   `json:"remote"`
	Status         *string `json:"status"          validate:"omitempty,oneof=active archived"`
}

type updateJobRequest struct {
	Title          *string `json:"title"           validate:"omitempty,max=200"`
	Company        *string `json:"company"         validate:"omitempty,max=200"`
	Location       *string `json:"location"        validate:"omitempty,max=200"`
	Description    *string `json:"description"     validate:"omitempty,max=20000"`
	EmploymentType *string `json:"employment_type" validate:"omitempty,oneof=full_time part_time contract"`
	Remote         *bool   `json:"remote"`
	Status         *string `json:"status"          validate:"omitempty,oneof=active archived"`
}

// --- Admin ---

type queueStatsResponse struct {
	QueueDepth int64 `json:"queue_depth"`
	DLQSize    int64 `json:"dlq_size"`
}

type healthComponent struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type healthResponse struct {
	Status     string            `json:"status"`
	Components []healthComponent `json:"components"`
}
