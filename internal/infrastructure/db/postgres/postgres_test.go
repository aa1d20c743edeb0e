package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hiretrack/hiretrack-api/internal/core/domain"
	"github.com/hiretrack/hiretrack-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), GormConfig(false))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func testJob(id, employer string, status domain.JobStatus, created time.Time) *domain.Job {
	return &domain.Job{
		ID:             id,
		EmployerID:     employer,
		Title:          "Go Developer " + id,
		Company:        "Acme 100%",
		Location:       "Berlin",
		Description:    "build services",
		EmploymentType: domain.EmploymentFullTime,
		Status:         status,
		CreatedAt:      created,
		UpdatedAt:      created,
	}
}

func testAudit(id, action string) *domain.AuditEntry {
	return &domain.AuditEntry{
		ID:         id,
		ActorID:    "u1",
		Action:     action,
		EntityType: domain.EntityApplication,
		Metadata:   map[string]any{"k": "v"},
		CreatedAt:  time.Now().UTC(),
	}
}

func testApplication(id, jobID, applicant, key string) (*domain.Application, *domain.StatusHistoryEntry) {
	now := time.Now().UTC()
	app := &domain.Application{
		ID:             id,
		JobID:          jobID,
		ApplicantID:    applicant,
		ResumeText:     "resume",
		Status:         domain.StatusApplied,
		IdempotencyKey: key,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	h := &domain.StatusHistoryEntry{
		ID:            "h-" + id,
		ApplicationID: id,
		Status:        domain.StatusApplied,
		ChangedAt:     now,
		ChangedBy:     applicant,
	}
	return app, h
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

// ---------------------------------------------------------------------------
// Applications
// ---------------------------------------------------------------------------

func TestApplicationRepository_CreateWritesAllRows(t *testing.T) {
	db := newTestDB(t)
	repo := NewApplicationRepository(db)
	ctx := context.Background()

	app, h := testApplication("a1", "j1", "u1", "k1")
	if err := repo.Create(ctx, app, h, testAudit("audit-1", domain.AuditApplicationCreated)); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.FindByJobAndApplicant(ctx, "j1", "u1")
	if err != nil || got.ID != "a1" || got.IdempotencyKey != "k1" {
		t.Fatalf("expected a1 with its key, got %+v (%v)", got, err)
	}
	if countRows(t, db, &statusHistoryModel{}) != 1 || countRows(t, db, &auditLogModel{}) != 1 {
		t.Error("expected one history row and one audit row")
	}
}

func TestApplicationRepository_DuplicateRollsBack(t *testing.T) {
	db := newTestDB(t)
	repo := NewApplicationRepository(db)
	ctx := context.Background()

	app, h := testApplication("a1", "j1", "u1", "k1")
	if err := repo.Create(ctx, app, h, testAudit("audit-1", domain.AuditApplicationCreated)); err != nil {
		t.Fatalf("create: %v", err)
	}

	dup, dh := testApplication("a2", "j1", "u1", "k2")
	err := repo.Create(ctx, dup, dh, testAudit("audit-2", domain.AuditApplicationCreated))
	if !errors.Is(err, domain.ErrDuplicateApplication) {
		t.Fatalf("expected ErrDuplicateApplication, got: %v", err)
	}
	if countRows(t, db, &applicationModel{}) != 1 || countRows(t, db, &statusHistoryModel{}) != 1 || countRows(t, db, &auditLogModel{}) != 1 {
		t.Error("a rejected create must leave no partial rows")
	}
}

func TestApplicationRepository_UpdateStatusCompareAndSet(t *testing.T) {
	db := newTestDB(t)
	repo := NewApplicationRepository(db)
	ctx := context.Background()

	app, h := testApplication("a1", "j1", "u1", "k1")
	if err := repo.Create(ctx, app, h, testAudit("audit-1", domain.AuditApplicationCreated)); err != nil {
		t.Fatalf("create: %v", err)
	}

	entry := &domain.StatusHistoryEntry{ID: "h2", ApplicationID: "a1", Status: domain.StatusReviewed, ChangedAt: time.Now().UTC().Add(time.Second), ChangedBy: "e1"}
	updated, err := repo.UpdateStatus(ctx, "a1", domain.StatusApplied, entry, testAudit("audit-2", domain.AuditApplicationStatusChanged))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != domain.StatusReviewed {
		t.Errorf("expected reviewed, got %s", updated.Status)
	}

	// Stale prior status: nothing written.
	stale := &domain.StatusHistoryEntry{ID: "h3", ApplicationID: "a1", Status: domain.StatusRejected, ChangedAt: time.Now().UTC(), ChangedBy: "e1"}
	_, err = repo.UpdateStatus(ctx, "a1", domain.StatusApplied, stale, testAudit("audit-3", domain.AuditApplicationStatusChanged))
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got: %v", err)
	}

	history, err := repo.History(ctx, "a1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 || history[0].Status != domain.StatusApplied || history[1].Status != domain.StatusReviewed {
		t.Errorf("expected [applied reviewed], got %+v", history)
	}
	if countRows(t, db, &auditLogModel{}) != 2 {
		t.Error("expected the failed update to write no audit entry")
	}

	_, err = repo.UpdateStatus(ctx, "missing", domain.StatusApplied, stale, testAudit("audit-4", "x"))
	if !errors.Is(err, domain.ErrApplicationNotFound) {
		t.Errorf("expected ErrApplicationNotFound, got: %v", err)
	}
}

func TestApplicationRepository_List(t *testing.T) {
	db := newTestDB(t)
	repo := NewApplicationRepository(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		app, h := testApplication(fmt.Sprintf("a%d", i), fmt.Sprintf("j%d", i), "u1", "k")
		app.CreatedAt = app.CreatedAt.Add(time.Duration(i) * time.Minute)
		if err := repo.Create(ctx, app, h, testAudit(fmt.Sprintf("audit-%d", i), "x")); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	apps, total, err := repo.List(ctx, ports.ListApplicationsFilter{ApplicantID: "u1", Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 || len(apps) != 2 || apps[0].ID != "a2" {
		t.Errorf("expected newest first page of 2 out of 3, got %d items, total %d", len(apps), total)
	}
}

// ---------------------------------------------------------------------------
// Jobs and audit
// ---------------------------------------------------------------------------

func TestJobRepository_ListFilters(t *testing.T) {
	db := newTestDB(t)
	repo := NewJobRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	jobs := []*domain.Job{
		testJob("j1", "e1", domain.JobStatusActive, now.Add(-time.Hour)),
		testJob("j2", "e2", domain.JobStatusActive, now),
		testJob("j3", "e1", domain.JobStatusArchived, now.Add(time.Hour)),
	}
	jobs[1].Company = "Globex"
	for i, j := range jobs {
		if err := repo.Create(ctx, j, testAudit(fmt.Sprintf("ja-%d", i), domain.AuditJobCreated)); err != nil {
			t.Fatalf("create %s: %v", j.ID, err)
		}
	}

	cases := []struct {
		name   string
		filter ports.ListJobsFilter
		want   []string
	}{
		{"active only", ports.ListJobsFilter{ActiveOnly: true}, []string{"j2", "j1"}},
		{"employer", ports.ListJobsFilter{EmployerID: "e1"}, []string{"j3", "j1"}},
		{"company case-insensitive", ports.ListJobsFilter{Company: "glob"}, []string{"j2"}},
		{"percent is literal", ports.ListJobsFilter{Company: "100%"}, []string{"j3", "j1"}},
		{"query matches title", ports.ListJobsFilter{Query: "developer j3"}, []string{"j3"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			c.filter.Page, c.filter.PageSize = 1, 10
			got, total, err := repo.List(ctx, c.filter)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if int(total) != len(c.want) || len(got) != len(c.want) {
				t.Fatalf("expected %v, got %d items (total %d)", c.want, len(got), total)
			}
			for i, id := range c.want {
				if got[i].ID != id {
					t.Errorf("position %d: expected %s, got %s", i, id, got[i].ID)
				}
			}
		})
	}
}

func TestJobRepository_UpdateAndFind(t *testing.T) {
	db := newTestDB(t)
	repo := NewJobRepository(db)
	ctx := context.Background()

	job := testJob("j1", "e1", domain.JobStatusActive, time.Now().UTC())
	if err := repo.Create(ctx, job, testAudit("ja-1", domain.AuditJobCreated)); err != nil {
		t.Fatalf("create: %v", err)
	}

	job.Status = domain.JobStatusArchived
	job.Remote = false
	if err := repo.Update(ctx, job, testAudit("ja-2", domain.AuditJobUpdated)); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := repo.FindByID(ctx, "j1")
	if err != nil || got.Status != domain.JobStatusArchived {
		t.Fatalf("expected archived job, got %+v (%v)", got, err)
	}

	if _, err := repo.FindByID(ctx, "missing"); !errors.Is(err, domain.ErrJobNotFound) {
		t.Errorf("expected ErrJobNotFound, got %v", err)
	}
	missing := testJob("nope", "e1", domain.JobStatusActive, time.Now())
	if err := repo.Update(ctx, missing, testAudit("ja-3", domain.AuditJobUpdated)); !errors.Is(err, domain.ErrJobNotFound) {
		t.Errorf("expected ErrJobNotFound on update, got %v", err)
	}
}

func TestAuditRepository_DuplicateID(t *testing.T) {
	db := newTestDB(t)
	repo := NewAuditRepository(db)
	ctx := context.Background()

	entry := testAudit("same-id", domain.AuditApplicationSubmittedAsync)
	entry.ActorID = ""
	if err := repo.Insert(ctx, entry); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if err := repo.Insert(ctx, entry); !errors.Is(err, domain.ErrDuplicateEntry) {
		t.Fatalf("expected ErrDuplicateEntry, got: %v", err)
	}

	var m auditLogModel
	if err := db.Where("id = ?", "same-id").Take(&m).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if m.ActorID != nil {
		t.Errorf("system entries must have no actor, got %v", *m.ActorID)
	}
}
