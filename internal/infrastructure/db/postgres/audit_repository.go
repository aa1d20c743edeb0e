package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/hiretrack/hiretrack-api/internal/core/domain"
)

// AuditRepository is the write-only audit sink.
type AuditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Insert writes entry. An entry whose id already exists yields domain.ErrDuplicateEntry.
func (r *AuditRepository) Insert(ctx context.Context, entry *domain.AuditEntry) error {
	return insertAudit(r.db.WithContext(ctx), entry)
}

func insertAudit(tx *gorm.DB, entry *domain.AuditEntry) error {
	m, err := toAuditModel(entry)
	if err != nil {
		return fmt.Errorf("encode audit metadata: %w", err)
	}
	err = tx.Create(m).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrDuplicateEntry
	}
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}
