package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/hiretrack/hiretrack-api/internal/core/domain"
)

// AuditRepository is the write-only audit sink.
type AuditRepository struct {
	db *mongo.Database
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{db: db}
}

// Insert writes entry outside of any transaction. An entry whose id already
// exists yields domain.ErrDuplicateEntry.
func (r *AuditRepository) Insert(ctx context.Context, entry *domain.AuditEntry) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	return insertAudit(ctx, r.db, entry)
}

func insertAudit(ctx context.Context, db *mongo.Database, entry *domain.AuditEntry) error {
	if entry.Metadata == nil {
		entry.Metadata = map[string]any{}
	}
	_, err := db.Collection(collectionAuditLogs).InsertOne(ctx, entry)
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrDuplicateEntry
	}
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}
