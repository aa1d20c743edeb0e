package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultTimeout = 10 * time.Second

// Collection names.
const (
	collectionJobs          = "jobs"
	collectionApplications  = "applications"
	collectionStatusHistory = "status_history"
	collectionAuditLogs     = "audit_logs"
)

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database. A default timeout is
// applied when none is provided.
//
// Multi-document transactions require the server to run as a replica set.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(cfg.Database)
	return client, db, nil
}

// inTransaction runs fn inside a multi-document transaction. Cancelling ctx
// before commit aborts it.
func inTransaction(ctx context.Context, db *mongo.Database, fn func(sc mongo.SessionContext) error) error {
	sess, err := db.Client().StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// EnsureIndexes creates the indexes every repository relies on, including the
// unique (job_id, applicant_id) index that arbitrates concurrent submissions.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	specs := map[string][]mongo.IndexModel{
		collectionJobs: {
			{Keys: bsonKeys("employer_id", 1, "created_at", -1)},
			{Keys: bsonKeys("status", 1, "created_at", -1)},
		},
		collectionApplications: {
			{
				Keys:    bsonKeys("job_id", 1, "applicant_id", 1),
				Options: options.Index().SetUnique(true).SetName("uniq_job_applicant"),
			},
			{Keys: bsonKeys("applicant_id", 1, "created_at", -1)},
		},
		collectionStatusHistory: {
			{Keys: bsonKeys("application_id", 1, "changed_at", 1)},
		},
		collectionAuditLogs: {
			{Keys: bsonKeys("entity_id", 1)},
			{Keys: bsonKeys("actor_id", 1, "created_at", -1)},
		},
	}

	for coll, models := range specs {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("ensure indexes on %s: %w", coll, err)
		}
	}
	return nil
}
