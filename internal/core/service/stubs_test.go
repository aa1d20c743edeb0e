package service

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hiretrack/hiretrack-api/internal/core/domain"
	"github.com/hiretrack/hiretrack-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubJobRepo struct {
	mu     sync.Mutex
	byID   map[string]*domain.Job
	audits []*domain.AuditEntry
	finds  int
	err    error // if set, every call returns this error
}

func newStubJobRepo(jobs ...*domain.Job) *stubJobRepo {
	r := &stubJobRepo{byID: make(map[string]*domain.Job)}
	for _, j := range jobs {
		r.byID[j.ID] = j
	}
	return r
}

func (r *stubJobRepo) Create(_ context.Context, job *domain.Job, audit *domain.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	clone := *job
	r.byID[job.ID] = &clone
	r.audits = append(r.audits, audit)
	return nil
}

func (r *stubJobRepo) Update(_ context.Context, job *domain.Job, audit *domain.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if _, ok := r.byID[job.ID]; !ok {
		return domain.ErrJobNotFound
	}
	clone := *job
	r.byID[job.ID] = &clone
	r.audits = append(r.audits, audit)
	return nil
}

func (r *stubJobRepo) FindByID(_ context.Context, id string) (*domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finds++
	if r.err != nil {
		return nil, r.err
	}
	j, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	clone := *j
	return &clone, nil
}

// List applies the same filters the real repositories use.
func (r *stubJobRepo) List(_ context.Context, f ports.ListJobsFilter) ([]*domain.Job, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finds++
	if r.err != nil {
		return nil, 0, r.err
	}

	var matched []*domain.Job
	for _, j := range r.byID {
		if f.EmployerID != "" && j.EmployerID != f.EmployerID {
			continue
		}
		if f.ActiveOnly && j.Status != domain.JobStatusActive {
			continue
		}
		if f.Query != "" && !strings.Contains(strings.ToLower(j.Title+" "+j.Description), f.Query) {
			continue
		}
		if f.Location != "" && !strings.Contains(strings.ToLower(j.Location), f.Location) {
			continue
		}
		if f.Company != "" && !strings.Contains(strings.ToLower(j.Company), f.Company) {
			continue
		}
		clone := *j
		matched = append(matched, &clone)
	}
	sort.Slice(matched, func(a, b int) bool { return matched[a].CreatedAt.After(matched[b].CreatedAt) })

	total := int64(len(matched))
	start := (f.Page - 1) * f.PageSize
	if start > len(matched) {
		start = len(matched)
	}
	end := start + f.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

// stubAppRepo enforces (job, applicant) uniqueness under a mutex like a
// database unique index would.
type stubAppRepo struct {
	mu        sync.Mutex
	byID      map[string]*domain.Application
	history   map[string][]domain.StatusHistoryEntry
	audits    []*domain.AuditEntry
	createErr error
	updateErr error
	creates   int
	// beforeUpdate runs inside UpdateStatus before the compare-and-set.
	beforeUpdate func(app *domain.Application)
}

func newStubAppRepo() *stubAppRepo {
	return &stubAppRepo{
		byID:    make(map[string]*domain.Application),
		history: make(map[string][]domain.StatusHistoryEntry),
	}
}

func (r *stubAppRepo) seed(app *domain.Application) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *app
	r.byID[app.ID] = &clone
}

func (r *stubAppRepo) Create(_ context.Context, app *domain.Application, h *domain.StatusHistoryEntry, audit *domain.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.byID {
		if existing.JobID == app.JobID && existing.ApplicantID == app.ApplicantID {
			return domain.ErrDuplicateApplication
		}
	}
	clone := *app
	r.byID[app.ID] = &clone
	r.history[app.ID] = append(r.history[app.ID], *h)
	r.audits = append(r.audits, audit)
	return nil
}

func (r *stubAppRepo) UpdateStatus(_ context.Context, id string, from domain.ApplicationStatus, h *domain.StatusHistoryEntry, audit *domain.AuditEntry) (*domain.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	app, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrApplicationNotFound
	}
	if r.beforeUpdate != nil {
		r.beforeUpdate(app)
	}
	if app.Status != from {
		return nil, domain.ErrInvalidTransition
	}
	app.Status = h.Status
	app.UpdatedAt = h.ChangedAt
	r.history[id] = append(r.history[id], *h)
	r.audits = append(r.audits, audit)
	clone := *app
	return &clone, nil
}

func (r *stubAppRepo) FindByID(_ context.Context, id string) (*domain.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrApplicationNotFound
	}
	clone := *app
	return &clone, nil
}

func (r *stubAppRepo) FindByJobAndApplicant(_ context.Context, jobID, applicantID string) (*domain.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, app := range r.byID {
		if app.JobID == jobID && app.ApplicantID == applicantID {
			clone := *app
			return &clone, nil
		}
	}
	return nil, domain.ErrApplicationNotFound
}

func (r *stubAppRepo) History(_ context.Context, applicationID string) ([]domain.StatusHistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.StatusHistoryEntry(nil), r.history[applicationID]...), nil
}

func (r *stubAppRepo) List(_ context.Context, f ports.ListApplicationsFilter) ([]*domain.Application, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*domain.Application
	for _, app := range r.byID {
		if f.ApplicantID != "" && app.ApplicantID != f.ApplicantID {
			continue
		}
		if f.JobID != "" && app.JobID != f.JobID {
			continue
		}
		if f.Status != "" && app.Status != f.Status {
			continue
		}
		clone := *app
		matched = append(matched, &clone)
	}
	return matched, int64(len(matched)), nil
}

func (r *stubAppRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// ---------------------------------------------------------------------------
// Cache, queue, audit and notifier stubs
// ---------------------------------------------------------------------------

type stubIdemStore struct {
	mu          sync.Mutex
	data        map[string]string
	lookupErr   error
	rememberErr error
}

func newStubIdemStore() *stubIdemStore {
	return &stubIdemStore{data: make(map[string]string)}
}

func (s *stubIdemStore) Lookup(_ context.Context, scope, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lookupErr != nil {
		return "", s.lookupErr
	}
	return s.data[scope+":"+key], nil
}

func (s *stubIdemStore) Remember(_ context.Context, scope, key, id string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rememberErr != nil {
		return s.rememberErr
	}
	s.data[scope+":"+key] = id
	return nil
}

type stubCache struct {
	mu          sync.Mutex
	data        map[string][]byte
	getErr      error
	putErr      error
	invalidErr  error
	puts        int
	invalidated []string
}

func newStubCache() *stubCache {
	return &stubCache{data: make(map[string][]byte)}
}

func (c *stubCache) Get(_ context.Context, key string, dst any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return c.getErr
	}
	raw, ok := c.data[key]
	if !ok {
		return domain.ErrCacheMiss
	}
	return json.Unmarshal(raw, dst)
}

func (c *stubCache) Put(_ context.Context, key string, v any, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.puts++
	if c.putErr != nil {
		return c.putErr
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

func (c *stubCache) InvalidateAll(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, prefix)
	if c.invalidErr != nil {
		return c.invalidErr
	}
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	return nil
}

type stubInvalidator struct {
	mu    sync.Mutex
	calls int
}

func (i *stubInvalidator) InvalidateListings(context.Context) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.calls++
}

type stubEnqueuer struct {
	mu    sync.Mutex
	tasks []*domain.Task
	err   error
}

func (q *stubEnqueuer) Enqueue(_ context.Context, taskType string, payload any) (*domain.Task, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return nil, q.err
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	t := &domain.Task{ID: uuid.NewString(), Type: taskType, Payload: raw}
	q.tasks = append(q.tasks, t)
	return t, nil
}

func (q *stubEnqueuer) types() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]string, 0, len(q.tasks))
	for _, t := range q.tasks {
		out = append(out, t.Type)
	}
	return out
}

type stubAuditSink struct {
	byID map[string]*domain.AuditEntry
	err  error
}

func newStubAuditSink() *stubAuditSink {
	return &stubAuditSink{byID: make(map[string]*domain.AuditEntry)}
}

func (a *stubAuditSink) Insert(_ context.Context, e *domain.AuditEntry) error {
	if a.err != nil {
		return a.err
	}
	if _, ok := a.byID[e.ID]; ok {
		return domain.ErrDuplicateEntry
	}
	a.byID[e.ID] = e
	return nil
}

type stubNotifier struct {
	events []string
	err    error
}

func (n *stubNotifier) Notify(_ context.Context, event string, _ any) error {
	if n.err != nil {
		return n.err
	}
	n.events = append(n.events, event)
	return nil
}
