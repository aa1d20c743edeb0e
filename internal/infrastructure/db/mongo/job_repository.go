package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/hiretrack/hiretrack-api/internal/core/domain"
	"github.com/hiretrack/hiretrack-api/internal/core/ports"
)

// JobRepository implements ports.JobRepository using MongoDB.
type JobRepository struct {
	db  *mongo.Database
	col *mongo.Collection
}

// NewJobRepository creates a new JobRepository.
func NewJobRepository(db *mongo.Database) *JobRepository {
	return &JobRepository{db: db, col: db.Collection(collectionJobs)}
}

// Create inserts the job and its audit entry in one transaction.
func (r *JobRepository) Create(ctx context.Context, job *domain.Job, audit *domain.AuditEntry) error {
	return inTransaction(ctx, r.db, func(sc mongo.SessionContext) error {
		if _, err := r.col.InsertOne(sc, job); err != nil {
			return fmt.Errorf("insert job: %w", err)
		}
		return insertAudit(sc, r.db, audit)
	})
}

// Update replaces the job document and writes the audit entry in one transaction.
func (r *JobRepository) Update(ctx context.Context, job *domain.Job, audit *domain.AuditEntry) error {
	return inTransaction(ctx, r.db, func(sc mongo.SessionContext) error {
		res, err := r.col.ReplaceOne(sc, bson.M{"_id": job.ID}, job)
		if err != nil {
			return fmt.Errorf("replace job: %w", err)
		}
		if res.MatchedCount == 0 {
			return domain.ErrJobNotFound
		}
		return insertAudit(sc, r.db, audit)
	})
}

// FindByID retrieves a job by id.
func (r *JobRepository) FindByID(ctx context.Context, id string) (*domain.Job, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var job domain.Job
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&job)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrJobNotFound
		}
		return nil, err
	}
	return &job, nil
}

// List returns a page of jobs matching the filter, newest first, and the total count.
func (r *JobRepository) List(ctx context.Context, f ports.ListJobsFilter) ([]*domain.Job, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := jobFilter(f)
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count jobs: %w", err)
	}

	cur, err := r.col.Find(ctx, filter, pageOptions(f.Page, f.PageSize))
	if err != nil {
		return nil, 0, fmt.Errorf("find jobs: %w", err)
	}
	jobs := []*domain.Job{}
	if err := cur.All(ctx, &jobs); err != nil {
		return nil, 0, fmt.Errorf("decode jobs: %w", err)
	}
	return jobs, total, nil
}
