package postgres

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/hiretrack/hiretrack-api/internal/core/domain"
)

type jobModel struct {
	ID             string    `gorm:"primaryKey;size:36"`
	EmployerID     string    `gorm:"size:36;index:idx_jobs_employer_created,priority:1"`
	Title          string    `gorm:"size:255"`
	Company        string    `gorm:"size:255"`
	Location       string    `gorm:"size:255"`
	Description    string    `gorm:"type:text"`
	EmploymentType string    `gorm:"size:32"`
	Remote         bool      `gorm:"default:false"`
	Status         string    `gorm:"size:16;index:idx_jobs_status_created,priority:1"`
	CreatedAt      time.Time `gorm:"index:idx_jobs_employer_created,priority:2;index:idx_jobs_status_created,priority:2"`
	UpdatedAt      time.Time
}

func (jobModel) TableName() string { return "jobs" }

type applicationModel struct {
	ID             string    `gorm:"primaryKey;size:36"`
	JobID          string    `gorm:"size:36;not null;uniqueIndex:uniq_job_applicant,priority:1"`
	ApplicantID    string    `gorm:"size:36;not null;uniqueIndex:uniq_job_applicant,priority:2;index:idx_applications_applicant"`
	ResumeText     string    `gorm:"type:text"`
	CoverLetter    string    `gorm:"type:text"`
	Status         string    `gorm:"size:16;not null"`
	IdempotencyKey string    `gorm:"size:255"`
	CreatedAt      time.Time `gorm:"index"`
	UpdatedAt      time.Time
}

func (applicationModel) TableName() string { return "applications" }

type statusHistoryModel struct {
	ID            string    `gorm:"primaryKey;size:36"`
	ApplicationID string    `gorm:"size:36;not null;index:idx_history_application_changed,priority:1"`
	Status        string    `gorm:"size:16;not null"`
	ChangedAt     time.Time `gorm:"index:idx_history_application_changed,priority:2"`
	ChangedBy     string    `gorm:"size:36"`
}

func (statusHistoryModel) TableName() string { return "status_history" }

type auditLogModel struct {
	ID         string         `gorm:"primaryKey;size:36"`
	ActorID    *string        `gorm:"size:36;index"`
	Action     string         `gorm:"size:64;not null"`
	EntityType string         `gorm:"size:32;not null"`
	EntityID   string         `gorm:"size:36;index"`
	Metadata   datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt  time.Time
}

func (auditLogModel) TableName() string { return "audit_logs" }

// ── Mapping ──

func toJobModel(j *domain.Job) *jobModel {
	return &jobModel{
		ID:             j.ID,
		EmployerID:     j.EmployerID,
		Title:          j.Title,
		Company:        j.Company,
		Location:       j.Location,
		Description:    j.Description,
		EmploymentType: string(j.EmploymentType),
		Remote:         j.Remote,
		Status:         string(j.Status),
		CreatedAt:      j.CreatedAt,
		UpdatedAt:      j.UpdatedAt,
	}
}

func (m *jobModel) toDomain() *domain.Job {
	return &domain.Job{
		ID:             m.ID,
		EmployerID:     m.EmployerID,
		Title:          m.Title,
		Company:        m.Company,
		Location:       m.Location,
		Description:    m.Description,
		EmploymentType: domain.EmploymentType(m.EmploymentType),
		Remote:         m.Remote,
		Status:         domain.JobStatus(m.Status),
		CreatedAt:      m.CreatedAt.UTC(),
		UpdatedAt:      m.UpdatedAt.UTC(),
	}
}

func toApplicationModel(a *domain.Application) *applicationModel {
	return &applicationModel{
		ID:             a.ID,
		JobID:          a.JobID,
		ApplicantID:    a.ApplicantID,
		ResumeText:     a.ResumeText,
		CoverLetter:    a.CoverLetter,
		Status:         string(a.Status),
		IdempotencyKey: a.IdempotencyKey,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

func (m *applicationModel) toDomain() *domain.Application {
	return &domain.Application{
		ID:             m.ID,
		JobID:          m.JobID,
		ApplicantID:    m.ApplicantID,
		ResumeText:     m.ResumeText,
		CoverLetter:    m.CoverLetter,
		Status:         domain.ApplicationStatus(m.Status),
		IdempotencyKey: m.IdempotencyKey,
		CreatedAt:      m.CreatedAt.UTC(),
		UpdatedAt:      m.UpdatedAt.UTC(),
	}
}

func toHistoryModel(h *domain.StatusHistoryEntry) *statusHistoryModel {
	return &statusHistoryModel{
		ID:            h.ID,
		ApplicationID: h.ApplicationID,
		Status:        string(h.Status),
		ChangedAt:     h.ChangedAt,
		ChangedBy:     h.ChangedBy,
	}
}

func (m *statusHistoryModel) toDomain() domain.StatusHistoryEntry {
	return domain.StatusHistoryEntry{
		ID:            m.ID,
		ApplicationID: m.ApplicationID,
		Status:        domain.ApplicationStatus(m.Status),
		ChangedAt:     m.ChangedAt.UTC(),
		ChangedBy:     m.ChangedBy,
	}
}

func toAuditModel(e *domain.AuditEntry) (*auditLogModel, error) {
	meta := e.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return nil, err
	}

	m := &auditLogModel{
		ID:         e.ID,
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Metadata:   datatypes.JSON(raw),
		CreatedAt:  e.CreatedAt,
	}
	if e.ActorID != "" {
		actor := e.ActorID
		m.ActorID = &actor
	}
	return m, nil
}
