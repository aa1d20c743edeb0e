package domain

import "time"

// JobStatus is the publication state of a job posting.
type JobStatus string

const (
	JobStatusActive   JobStatus = "active"
	JobStatusArchived JobStatus = "archived"
)

// EmploymentType describes the contract kind offered by a job.
type EmploymentType string

const (
	EmploymentFullTime EmploymentType = "full_time"
	EmploymentPartTime EmploymentType = "part_time"
	EmploymentContract EmploymentType = "contract"
)

// Job is a posting owned by a single employer.
type Job struct {
	ID             string         `json:"id" bson:"_id"`
	EmployerID     string         `json:"employer_id" bson:"employer_id"`
	Title          string         `json:"title" bson:"title"`
	Company        string         `json:"company" bson:"company"`
	Location       string         `json:"location" bson:"location"`
	Description    string         `json:"description" bson:"description"`
	EmploymentType EmploymentType `json:"employment_type" bson:"employment_type"`
	Remote         bool           `json:"remote" bson:"remote"`
	Status         JobStatus      `json:"status" bson:"status"`
	CreatedAt      time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at" bson:"updated_at"`
}

// AcceptsApplications reports whether new applications may be filed against the job.
func (j *Job) AcceptsApplications() bool {
	return j.Status == JobStatusActive
}

// OwnedBy reports whether the given user is the employer that posted the job.
func (j *Job) OwnedBy(userID string) bool {
	return j.EmployerID == userID
}

// JobPage is one page of a job listing, as served to callers and stored in
// the listing cache.
type JobPage struct {
	Items    []*Job `json:"items"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Total    int64  `json:"total"`
}
