package mongo

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hiretrack/hiretrack-api/internal/core/ports"
)

// bsonKeys builds an ordered index key document from name/order pairs.
func bsonKeys(pairs ...interface{}) bson.D {
	keys := make(bson.D, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		keys = append(keys, bson.E{Key: pairs[i].(string), Value: pairs[i+1]})
	}
	return keys
}

// containsCI matches s anywhere in the field, case-insensitively.
func containsCI(s string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(s), "$options": "i"}
}

// jobFilter translates a listing filter into a MongoDB query.
func jobFilter(f ports.ListJobsFilter) bson.M {
	filter := bson.M{}
	if f.EmployerID != "" {
		filter["employer_id"] = f.EmployerID
	}
	if f.ActiveOnly {
		filter["status"] = "active"
	}
	if f.Query != "" {
		filter["$or"] = bson.A{
			bson.M{"title": containsCI(f.Query)},
			bson.M{"description": containsCI(f.Query)},
		}
	}
	if f.Location != "" {
		filter["location"] = containsCI(f.Location)
	}
	if f.Company != "" {
		filter["company"] = containsCI(f.Company)
	}
	return filter
}

// applicationFilter translates an application listing filter into a MongoDB query.
func applicationFilter(f ports.ListApplicationsFilter) bson.M {
	filter := bson.M{}
	if f.ApplicantID != "" {
		filter["applicant_id"] = f.ApplicantID
	}
	if f.JobID != "" {
		filter["job_id"] = f.JobID
	}
	if f.Status != "" {
		filter["status"] = string(f.Status)
	}
	return filter
}

// pageOptions returns newest-first find options for a 1-based page.
func pageOptions(page, pageSize int) *options.FindOptions {
	return options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))
}
