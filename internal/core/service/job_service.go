package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hiretrack/hiretrack-api/internal/core/domain"
	"github.com/hiretrack/hiretrack-api/internal/core/ports"
	"github.com/hiretrack/hiretrack-api/internal/metrics"
)

const (
	// ListingKeyPrefix is the namespace of every cached job listing and detail.
	ListingKeyPrefix = "jobs:"
	// DefaultListingTTL bounds how stale a cached listing may be.
	DefaultListingTTL = 60 * time.Second

	globalScope = "global"
)

type jobService struct {
	repo    ports.JobRepository
	cache   ports.ListingCache
	ttl     time.Duration
	metrics *metrics.Metrics
	log     zerolog.Logger
	now     func() time.Time
}

// NewJobService returns a JobService serving reads through cache.
// ttl <= 0 selects DefaultListingTTL.
func NewJobService(repo ports.JobRepository, cache ports.ListingCache, ttl time.Duration, m *metrics.Metrics, log zerolog.Logger) ports.JobService {
	if ttl <= 0 {
		ttl = DefaultListingTTL
	}
	return &jobService{
		repo:    repo,
		cache:   cache,
		ttl:     ttl,
		metrics: m,
		log:     log.With().Str("component", "job_service").Logger(),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// listingScope is the employer id for employers and "global" for everyone
// else, matching the visibility rules applied by filterFor.
func listingScope(actor domain.Actor) string {
	if actor.Role == domain.RoleEmployer {
		return actor.ID
	}
	return globalScope
}

func normalizeFilterValue(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ListingKey builds the cache key of one listing page. Inputs must already be
// normalised so that logically identical queries share a key. Filter values
// are query-escaped so a ':' inside one cannot shift the key segments.
func ListingKey(actor domain.Actor, query, location, company string, page, pageSize int) string {
	return fmt.Sprintf("%slist:%s:%s:%s:%s:%s:%d:%d",
		ListingKeyPrefix, actor.Role, listingScope(actor),
		url.QueryEscape(query), url.QueryEscape(location), url.QueryEscape(company), page, pageSize)
}

// DetailKey builds the cache key of one job as seen by actor.
func DetailKey(actor domain.Actor, jobID string) string {
	return fmt.Sprintf("%sdetail:%s:%s:%s", ListingKeyPrefix, actor.Role, listingScope(actor), jobID)
}

func (s *jobService) filterFor(actor domain.Actor) ports.ListJobsFilter {
	var f ports.ListJobsFilter
	switch actor.Role {
	case domain.RoleApplicant:
		f.ActiveOnly = true
	case domain.RoleEmployer:
		f.EmployerID = actor.ID
	}
	return f
}

// visible applies the same rules as filterFor to a single job.
func visible(actor domain.Actor, job *domain.Job) bool {
	switch actor.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleEmployer:
		return job.OwnedBy(actor.ID)
	default:
		return job.Status == domain.JobStatusActive
	}
}

// cacheGet reports whether dst was populated from the cache. Substrate errors
// count as misses.
func (s *jobService) cacheGet(ctx context.Context, key string, dst any) bool {
	err := s.cache.Get(ctx, key, dst)
	switch {
	case err == nil:
		s.metrics.ListingCacheLookup("hit")
		return true
	case errors.Is(err, domain.ErrCacheMiss):
		s.metrics.ListingCacheLookup("miss")
	default:
		s.metrics.ListingCacheLookup("unavailable")
		s.log.Warn().Err(err).Str("key", key).Msg("listing cache read failed")
	}
	return false
}

func (s *jobService) cachePut(ctx context.Context, key string, v any) {
	if err := s.cache.Put(ctx, key, v, s.ttl); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("listing cache write failed")
	}
}

// List returns one page of jobs visible to actor, served from the cache when possible.
func (s *jobService) List(ctx context.Context, actor domain.Actor, in ports.ListJobsInput) (*domain.JobPage, error) {
	filter := s.filterFor(actor)
	filter.Query = normalizeFilterValue(in.Query)
	filter.Location = normalizeFilterValue(in.Location)
	filter.Company = normalizeFilterValue(in.Company)
	filter.Page, filter.PageSize = domain.NormalizePage(in.Page, in.PageSize)

	key := ListingKey(actor, filter.Query, filter.Location, filter.Company, filter.Page, filter.PageSize)

	var cached domain.JobPage
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	if items == nil {
		items = []*domain.Job{}
	}
	page := &domain.JobPage{Items: items, Page: filter.Page, PageSize: filter.PageSize, Total: total}

	s.cachePut(ctx, key, page)
	return page, nil
}

// Get returns a single job visible to actor. Jobs the actor may not see are
// reported as not found.
func (s *jobService) Get(ctx context.Context, actor domain.Actor, jobID string) (*domain.Job, error) {
	key := DetailKey(actor, jobID)

	var cached domain.Job
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	job, err := s.repo.FindByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	if !visible(actor, job) {
		return nil, fmt.Errorf("get job: %w", domain.ErrJobNotFound)
	}

	s.cachePut(ctx, key, job)
	return job, nil
}

// Create posts a new job owned by actor.
func (s *jobService) Create(ctx context.Context, actor domain.Actor, in ports.JobInput) (*domain.Job, error) {
	if actor.Role != domain.RoleEmployer && actor.Role != domain.RoleAdmin {
		return nil, fmt.Errorf("create job: %w", domain.ErrForbidden)
	}

	now := s.now()
	job := &domain.Job{
		ID:             uuid.NewString(),
		EmployerID:     actor.ID,
		EmploymentType: domain.EmploymentFullTime,
		Status:         domain.JobStatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	applyJobInput(job, in)
	if err := validateJob(job); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	audit := jobAudit(actor, job, domain.AuditJobCreated, now)
	if err := s.repo.Create(ctx, job, audit); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	s.InvalidateListings(ctx)
	s.log.Info().Str("job_id", job.ID).Str("employer_id", job.EmployerID).Msg("job created")
	return job, nil
}

// Update changes the provided fields of a job. Only the owning employer or an
// admin may update it.
func (s *jobService) Update(ctx context.Context, actor domain.Actor, jobID string, in ports.JobInput) (*domain.Job, error) {
	job, err := s.repo.FindByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("update job: %w", err)
	}
	if !actor.IsAdmin() && !(actor.Role == domain.RoleEmployer && job.OwnedBy(actor.ID)) {
		return nil, fmt.Errorf("update job: %w", domain.ErrForbidden)
	}

	applyJobInput(job, in)
	if err := validateJob(job); err != nil {
		return nil, fmt.Errorf("update job: %w", err)
	}
	job.UpdatedAt = s.now()

	audit := jobAudit(actor, job, domain.AuditJobUpdated, job.UpdatedAt)
	if err := s.repo.Update(ctx, job, audit); err != nil {
		return nil, fmt.Errorf("update job: %w", err)
	}

	s.InvalidateListings(ctx)
	s.log.Info().Str("job_id", job.ID).Msg("job updated")
	return job, nil
}

// InvalidateListings drops every cached listing and detail entry.
func (s *jobService) InvalidateListings(ctx context.Context) {
	if err := s.cache.InvalidateAll(ctx, ListingKeyPrefix); err != nil {
		s.log.Warn().Err(err).Msg("listing cache invalidation failed")
	}
}

func applyJobInput(job *domain.Job, in ports.JobInput) {
	if in.Title != nil {
		job.Title = strings.TrimSpace(*in.Title)
	}
	if in.Company != nil {
		job.Company = strings.TrimSpace(*in.Company)
	}
	if in.Location != nil {
		job.Location = strings.TrimSpace(*in.Location)
	}
	if in.Description != nil {
		job.Description = *in.Description
	}
	if in.EmploymentType != nil {
		job.EmploymentType = *in.EmploymentType
	}
	if in.Remote != nil {
		job.Remote = *in.Remote
	}
	if in.Status != nil {
		job.Status = *in.Status
	}
}

func validateJob(job *domain.Job) error {
	if job.Title == "" || job.Company == "" || job.Location == "" || strings.TrimSpace(job.Description) == "" {
		return fmt.Errorf("%w: title, company, location and description are required", domain.ErrInvalidInput)
	}
	switch job.EmploymentType {
	case domain.EmploymentFullTime, domain.EmploymentPartTime, domain.EmploymentContract:
	default:
		return fmt.Errorf("%w: unknown employment type %q", domain.ErrInvalidInput, job.EmploymentType)
	}
	switch job.Status {
	case domain.JobStatusActive, domain.JobStatusArchived:
	default:
		return fmt.Errorf("%w: unknown job status %q", domain.ErrInvalidInput, job.Status)
	}
	return nil
}

func jobAudit(actor domain.Actor, job *domain.Job, action string, at time.Time) *domain.AuditEntry {
	return &domain.AuditEntry{
		ID:         uuid.NewString(),
		ActorID:    actor.ID,
		Action:     action,
		EntityType: domain.EntityJob,
		EntityID:   job.ID,
		Metadata:   map[string]any{"jobId": job.ID},
		CreatedAt:  at,
	}
}
