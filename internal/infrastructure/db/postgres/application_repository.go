package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/hiretrack/hiretrack-api/internal/core/domain"
	"github.com/hiretrack/hiretrack-api/internal/core/ports"
)

// ApplicationRepository implements ports.ApplicationRepository with gorm.
type ApplicationRepository struct {
	db *gorm.DB
}

// NewApplicationRepository creates a new ApplicationRepository.
func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Create inserts the application with its first history row and audit entry.
// The unique (job_id, applicant_id) index rejects a second application.
func (r *ApplicationRepository) Create(ctx context.Context, app *domain.Application, h *domain.StatusHistoryEntry, audit *domain.AuditEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Create(toApplicationModel(app)).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicateApplication
		}
		if err != nil {
			return fmt.Errorf("insert application: %w", err)
		}
		if err := tx.Create(toHistoryModel(h)).Error; err != nil {
			return fmt.Errorf("insert status history: %w", err)
		}
		return insertAudit(tx, audit)
	})
}

// UpdateStatus sets the new status only if the stored status still equals from.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id string, from domain.ApplicationStatus, h *domain.StatusHistoryEntry, audit *domain.AuditEntry) (*domain.Application, error) {
	var updated applicationModel

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&applicationModel{}).
			Where("id = ? AND status = ?", id, string(from)).
			Updates(map[string]any{"status": string(h.Status), "updated_at": h.ChangedAt})
		if res.Error != nil {
			return fmt.Errorf("update application status: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			var n int64
			if err := tx.Model(&applicationModel{}).Where("id = ?", id).Count(&n).Error; err != nil {
				return fmt.Errorf("check application: %w", err)
			}
			if n == 0 {
				return domain.ErrApplicationNotFound
			}
			return domain.ErrInvalidTransition
		}

		if err := tx.Create(toHistoryModel(h)).Error; err != nil {
			return fmt.Errorf("insert status history: %w", err)
		}
		if err := insertAudit(tx, audit); err != nil {
			return err
		}
		return tx.Where("id = ?", id).Take(&updated).Error
	})
	if err != nil {
		return nil, err
	}
	return updated.toDomain(), nil
}

// FindByID retrieves an application by id.
func (r *ApplicationRepository) FindByID(ctx context.Context, id string) (*domain.Application, error) {
	return r.take(r.db.WithContext(ctx).Where("id = ?", id))
}

// FindByJobAndApplicant retrieves the single application of applicantID to jobID.
func (r *ApplicationRepository) FindByJobAndApplicant(ctx context.Context, jobID, applicantID string) (*domain.Application, error) {
	return r.take(r.db.WithContext(ctx).Where("job_id = ? AND applicant_id = ?", jobID, applicantID))
}

func (r *ApplicationRepository) take(q *gorm.DB) (*domain.Application, error) {
	var m applicationModel
	err := q.Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrApplicationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find application: %w", err)
	}
	return m.toDomain(), nil
}

// History returns every status the application entered, oldest first.
func (r *ApplicationRepository) History(ctx context.Context, applicationID string) ([]domain.StatusHistoryEntry, error) {
	var rows []statusHistoryModel
	err := r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("changed_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("find status history: %w", err)
	}

	out := make([]domain.StatusHistoryEntry, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

// List returns a page of applications, newest first, and the total count.
func (r *ApplicationRepository) List(ctx context.Context, f ports.ListApplicationsFilter) ([]*domain.Application, int64, error) {
	query := func() *gorm.DB { return applyApplicationFilter(r.db.WithContext(ctx).Model(&applicationModel{}), f) }

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count applications: %w", err)
	}

	var rows []applicationModel
	if err := paginate(query(), f.Page, f.PageSize).Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("find applications: %w", err)
	}

	apps := make([]*domain.Application, 0, len(rows))
	for i := range rows {
		apps = append(apps, rows[i].toDomain())
	}
	return apps, total, nil
}
