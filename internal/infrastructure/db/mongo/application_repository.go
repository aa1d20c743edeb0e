package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hiretrack/hiretrack-api/internal/core/domain"
	"github.com/hiretrack/hiretrack-api/internal/core/ports"
)

// ApplicationRepository implements ports.ApplicationRepository using MongoDB.
// Applications, their status history and the matching audit entries are
// written together in one multi-document transaction.
type ApplicationRepository struct {
	db      *mongo.Database
	apps    *mongo.Collection
	history *mongo.Collection
}

// NewApplicationRepository creates a new ApplicationRepository.
func NewApplicationRepository(db *mongo.Database) *ApplicationRepository {
	return &ApplicationRepository{
		db:      db,
		apps:    db.Collection(collectionApplications),
		history: db.Collection(collectionStatusHistory),
	}
}

// Create inserts the application with its first history entry and audit entry.
func (r *ApplicationRepository) Create(ctx context.Context, app *domain.Application, h *domain.StatusHistoryEntry, audit *domain.AuditEntry) error {
	return inTransaction(ctx, r.db, func(sc mongo.SessionContext) error {
		if _, err := r.apps.InsertOne(sc, app); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return domain.ErrDuplicateApplication
			}
			return fmt.Errorf("insert application: %w", err)
		}
		if _, err := r.history.InsertOne(sc, h); err != nil {
			return fmt.Errorf("insert status history: %w", err)
		}
		return insertAudit(sc, r.db, audit)
	})
}

// UpdateStatus sets the new status only if the stored status still equals from.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id string, from domain.ApplicationStatus, h *domain.StatusHistoryEntry, audit *domain.AuditEntry) (*domain.Application, error) {
	var updated domain.Application

	err := inTransaction(ctx, r.db, func(sc mongo.SessionContext) error {
		filter := bson.M{"_id": id, "status": string(from)}
		update := bson.M{"$set": bson.M{"status": string(h.Status), "updated_at": h.ChangedAt}}
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

		err := r.apps.FindOneAndUpdate(sc, filter, update, opts).Decode(&updated)
		if errors.Is(err, mongo.ErrNoDocuments) {
			n, countErr := r.apps.CountDocuments(sc, bson.M{"_id": id})
			if countErr != nil {
				return fmt.Errorf("check application: %w", countErr)
			}
			if n == 0 {
				return domain.ErrApplicationNotFound
			}
			return domain.ErrInvalidTransition
		}
		if err != nil {
			return fmt.Errorf("update application status: %w", err)
		}

		if _, err := r.history.InsertOne(sc, h); err != nil {
			return fmt.Errorf("insert status history: %w", err)
		}
		return insertAudit(sc, r.db, audit)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// FindByID retrieves an application by id.
func (r *ApplicationRepository) FindByID(ctx context.Context, id string) (*domain.Application, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByJobAndApplicant retrieves the single application of applicantID to jobID.
func (r *ApplicationRepository) FindByJobAndApplicant(ctx context.Context, jobID, applicantID string) (*domain.Application, error) {
	return r.findOne(ctx, bson.M{"job_id": jobID, "applicant_id": applicantID})
}

func (r *ApplicationRepository) findOne(ctx context.Context, filter bson.M) (*domain.Application, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var app domain.Application
	err := r.apps.FindOne(ctx, filter).Decode(&app)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrApplicationNotFound
		}
		return nil, err
	}
	return &app, nil
}

// History returns every status the application entered, oldest first.
func (r *ApplicationRepository) History(ctx context.Context, applicationID string) ([]domain.StatusHistoryEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "changed_at", Value: 1}})
	cur, err := r.history.Find(ctx, bson.M{"application_id": applicationID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find status history: %w", err)
	}
	entries := []domain.StatusHistoryEntry{}
	if err := cur.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("decode status history: %w", err)
	}
	return entries, nil
}

// List returns a page of applications, newest first, and the total count.
func (r *ApplicationRepository) List(ctx context.Context, f ports.ListApplicationsFilter) ([]*domain.Application, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := applicationFilter(f)
	total, err := r.apps.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count applications: %w", err)
	}

	cur, err := r.apps.Find(ctx, filter, pageOptions(f.Page, f.PageSize))
	if err != nil {
		return nil, 0, fmt.Errorf("find applications: %w", err)
	}
	apps := []*domain.Application{}
	if err := cur.All(ctx, &apps); err != nil {
		return nil, 0, fmt.Errorf("decode applications: %w", err)
	}
	return apps, total, nil
}
