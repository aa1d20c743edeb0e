package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/hiretrack/hiretrack-api/internal/core/domain"
	"github.com/hiretrack/hiretrack-api/internal/core/ports"
)

// JobRepository implements ports.JobRepository with gorm.
type JobRepository struct {
	db *gorm.DB
}

// NewJobRepository creates a new JobRepository.
func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create inserts the job and its audit entry in one transaction.
func (r *JobRepository) Create(ctx context.Context, job *domain.Job, audit *domain.AuditEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(toJobModel(job)).Error; err != nil {
			return fmt.Errorf("insert job: %w", err)
		}
		return insertAudit(tx, audit)
	})
}

// Update saves every column of the job and writes the audit entry in one transaction.
func (r *JobRepository) Update(ctx context.Context, job *domain.Job, audit *domain.AuditEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m := toJobModel(job)
		res := tx.Model(&jobModel{}).Where("id = ?", job.ID).Select("*").Omit("id", "created_at").Updates(m)
		if res.Error != nil {
			return fmt.Errorf("update job: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrJobNotFound
		}
		return insertAudit(tx, audit)
	})
}

// FindByID retrieves a job by id.
func (r *JobRepository) FindByID(ctx context.Context, id string) (*domain.Job, error) {
	var m jobModel
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find job: %w", err)
	}
	return m.toDomain(), nil
}

// List returns a page of jobs matching the filter, newest first, and the total count.
func (r *JobRepository) List(ctx context.Context, f ports.ListJobsFilter) ([]*domain.Job, int64, error) {
	query := func() *gorm.DB { return applyJobFilter(r.db.WithContext(ctx).Model(&jobModel{}), f) }

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count jobs: %w", err)
	}

	var rows []jobModel
	if err := paginate(query(), f.Page, f.PageSize).Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("find jobs: %w", err)
	}

	jobs := make([]*domain.Job, 0, len(rows))
	for i := range rows {
		jobs = append(jobs, rows[i].toDomain())
	}
	return jobs, total, nil
}
