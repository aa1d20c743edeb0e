package postgres

import (
	"strings"

	"gorm.io/gorm"

	"github.com/hiretrack/hiretrack-api/internal/core/ports"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern returns a LIKE pattern matching s anywhere, for use against
// LOWER(column).
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

func applyJobFilter(q *gorm.DB, f ports.ListJobsFilter) *gorm.DB {
	if f.EmployerID != "" {
		q = q.Where("employer_id = ?", f.EmployerID)
	}
	if f.ActiveOnly {
		q = q.Where("status = ?", "active")
	}
	if f.Query != "" {
		p := containsPattern(f.Query)
		q = q.Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`, p, p)
	}
	if f.Location != "" {
		q = q.Where(`LOWER(location) LIKE ? ESCAPE '\'`, containsPattern(f.Location))
	}
	if f.Company != "" {
		q = q.Where(`LOWER(company) LIKE ? ESCAPE '\'`, containsPattern(f.Company))
	}
	return q
}

func applyApplicationFilter(q *gorm.DB, f ports.ListApplicationsFilter) *gorm.DB {
	if f.ApplicantID != "" {
		q = q.Where("applicant_id = ?", f.ApplicantID)
	}
	if f.JobID != "" {
		q = q.Where("job_id = ?", f.JobID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	return q
}

// paginate orders newest first and selects one 1-based page.
func paginate(q *gorm.DB, page, pageSize int) *gorm.DB {
	return q.Order("created_at DESC").Offset((page - 1) * pageSize).Limit(pageSize)
}
