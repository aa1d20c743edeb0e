package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hiretrack/hiretrack-api/internal/core/domain"
	"github.com/hiretrack/hiretrack-api/internal/core/ports"
	"github.com/hiretrack/hiretrack-api/internal/metrics"
)

// ListingInvalidator drops cached job listings after a write that changes them.
type ListingInvalidator interface {
	InvalidateListings(ctx context.Context)
}

type applicationService struct {
	jobs        ports.JobRepository
	apps        ports.ApplicationRepository
	guard       *IdempotencyGuard
	invalidator ListingInvalidator
	tasks       ports.TaskEnqueuer
	metrics     *metrics.Metrics
	log         zerolog.Logger
	now         func() time.Time
}

// NewApplicationService returns an ApplicationService implementation.
func NewApplicationService(
	jobs ports.JobRepository,
	apps ports.ApplicationRepository,
	guard *IdempotencyGuard,
	invalidator ListingInvalidator,
	tasks ports.TaskEnqueuer,
	m *metrics.Metrics,
	log zerolog.Logger,
) ports.ApplicationService {
	return &applicationService{
		jobs:        jobs,
		apps:        apps,
		guard:       guard,
		invalidator: invalidator,
		tasks:       tasks,
		metrics:     m,
		log:         log.With().Str("component", "application_service").Logger(),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Submit files an application exactly once per (applicant, idempotency key).
func (s *applicationService) Submit(ctx context.Context, in ports.SubmitApplicationInput) (*ports.SubmitResult, error) {
	if strings.TrimSpace(in.IdempotencyKey) == "" {
		return nil, domain.ErrMissingIdempotencyKey
	}
	if in.JobID == "" || strings.TrimSpace(in.ResumeText) == "" {
		s.metrics.ApplicationSubmitted("rejected")
		return nil, fmt.Errorf("submit application: %w: job id and resume text are required", domain.ErrInvalidInput)
	}

	replayed := false
	create := func(ctx context.Context) (string, error) {
		id, replay, err := s.create(ctx, in)
		replayed = replay
		return id, err
	}

	outcome, err := s.guard.ReserveOrFetch(ctx, in.ApplicantID, in.IdempotencyKey, create)
	if err != nil {
		return nil, s.submitFailed(err)
	}

	app, err := s.apps.FindByID(ctx, outcome.ApplicationID)
	if errors.Is(err, domain.ErrApplicationNotFound) && !outcome.Created {
		// The remembered id points at a row that no longer exists.
		s.log.Warn().Str("application_id", outcome.ApplicationID).Msg("stale idempotency mapping, recreating")
		outcome, err = s.guard.CreateAndRemember(ctx, in.ApplicantID, in.IdempotencyKey, create)
		if err != nil {
			return nil, s.submitFailed(err)
		}
		app, err = s.apps.FindByID(ctx, outcome.ApplicationID)
	}
	if err != nil {
		return nil, fmt.Errorf("submit application: load: %w", err)
	}

	if !outcome.Created || replayed {
		s.metrics.ApplicationSubmitted("replayed")
		s.log.Debug().Str("application_id", app.ID).Str("applicant_id", in.ApplicantID).Msg("submission replayed")
		return &ports.SubmitResult{Application: app, Replayed: true}, nil
	}

	s.afterSubmit(ctx, app)
	s.metrics.ApplicationSubmitted("created")
	s.log.Info().
		Str("application_id", app.ID).
		Str("job_id", app.JobID).
		Str("applicant_id", app.ApplicantID).
		Msg("application submitted")

	return &ports.SubmitResult{Application: app}, nil
}

func (s *applicationService) submitFailed(err error) error {
	if errors.Is(err, domain.ErrDuplicateApplication) {
		s.metrics.ApplicationSubmitted("duplicate")
	} else {
		s.metrics.ApplicationSubmitted("rejected")
	}
	return fmt.Errorf("submit application: %w", err)
}

// create performs the guarded write. replay is true when a row committed by an
// earlier call with the same key was found instead.
func (s *applicationService) create(ctx context.Context, in ports.SubmitApplicationInput) (id string, replay bool, err error) {
	job, err := s.jobs.FindByID(ctx, in.JobID)
	if err != nil {
		return "", false, err
	}
	if !job.AcceptsApplications() {
		return "", false, domain.ErrJobArchived
	}

	existing, err := s.apps.FindByJobAndApplicant(ctx, in.JobID, in.ApplicantID)
	switch {
	case err == nil:
		return s.resolveExisting(existing, in.IdempotencyKey)
	case !errors.Is(err, domain.ErrApplicationNotFound):
		return "", false, err
	}

	now := s.now()
	app := &domain.Application{
		ID:             uuid.NewString(),
		JobID:          in.JobID,
		ApplicantID:    in.ApplicantID,
		ResumeText:     in.ResumeText,
		CoverLetter:    in.CoverLetter,
		Status:         domain.StatusApplied,
		IdempotencyKey: in.IdempotencyKey,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	history := &domain.StatusHistoryEntry{
		ID:            uuid.NewString(),
		ApplicationID: app.ID,
		Status:        domain.StatusApplied,
		ChangedAt:     now,
		ChangedBy:     in.ApplicantID,
	}
	audit := &domain.AuditEntry{
		ID:         uuid.NewString(),
		ActorID:    in.ApplicantID,
		Action:     domain.AuditApplicationCreated,
		EntityType: domain.EntityApplication,
		EntityID:   app.ID,
		Metadata:   map[string]any{"jobId": in.JobID, "applicationId": app.ID},
		CreatedAt:  now,
	}

	err = s.apps.Create(ctx, app, history, audit)
	if errors.Is(err, domain.ErrDuplicateApplication) {
		// Lost a race: another call committed first.
		existing, findErr := s.apps.FindByJobAndApplicant(ctx, in.JobID, in.ApplicantID)
		if findErr != nil {
			return "", false, err
		}
		return s.resolveExisting(existing, in.IdempotencyKey)
	}
	if err != nil {
		return "", false, err
	}
	return app.ID, false, nil
}

// resolveExisting decides whether an existing row for (job, applicant) is a
// replay of the caller's submission or a genuine duplicate.
func (s *applicationService) resolveExisting(existing *domain.Application, key string) (string, bool, error) {
	if existing.IdempotencyKey == key {
		return existing.ID, true, nil
	}
	return "", false, domain.ErrDuplicateApplication
}

// afterSubmit runs the post-commit side effects. Failures never fail the
// submission.
func (s *applicationService) afterSubmit(ctx context.Context, app *domain.Application) {
	s.invalidator.InvalidateListings(ctx)

	_, err := s.tasks.Enqueue(ctx, domain.TaskApplicationSubmitted, domain.ApplicationSubmittedPayload{
		ApplicationID: app.ID,
		JobID:         app.JobID,
		ApplicantID:   app.ApplicantID,
	})
	if err != nil {
		s.log.Error().Err(err).Str("application_id", app.ID).Msg("failed to enqueue submission task")
		return
	}
	s.metrics.TaskEnqueued(domain.TaskApplicationSubmitted)
}

// ChangeStatus moves an application along the state machine on behalf of the
// owning employer or an admin.
func (s *applicationService) ChangeStatus(ctx context.Context, actor domain.Actor, applicationID string, requested domain.ApplicationStatus) (*domain.Application, error) {
	if !requested.Valid() {
		return nil, fmt.Errorf("change status: %w: %q", domain.ErrInvalidStatus, requested)
	}

	app, err := s.apps.FindByID(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("change status: %w", err)
	}

	if err := s.authorizeEmployerAccess(ctx, actor, app); err != nil {
		return nil, fmt.Errorf("change status: %w", err)
	}

	from := app.Status
	if !from.CanTransitionTo(requested) {
		return nil, fmt.Errorf("change status: %w (from %s to %s)", domain.ErrInvalidTransition, from, requested)
	}

	now := s.now()
	entry := &domain.StatusHistoryEntry{
		ID:            uuid.NewString(),
		ApplicationID: app.ID,
		Status:        requested,
		ChangedAt:     now,
		ChangedBy:     actor.ID,
	}
	audit := &domain.AuditEntry{
		ID:         uuid.NewString(),
		ActorID:    actor.ID,
		Action:     domain.AuditApplicationStatusChanged,
		EntityType: domain.EntityApplication,
		EntityID:   app.ID,
		Metadata:   map[string]any{"applicationId": app.ID, "status": string(requested)},
		CreatedAt:  now,
	}

	updated, err := s.apps.UpdateStatus(ctx, app.ID, from, entry, audit)
	if err != nil {
		return nil, fmt.Errorf("change status: %w", err)
	}

	s.metrics.StatusTransition(string(from), string(requested))
	_, err = s.tasks.Enqueue(ctx, domain.TaskApplicationStatusChanged, domain.ApplicationStatusChangedPayload{
		ApplicationID: updated.ID,
		Status:        requested,
		ChangedBy:     actor.ID,
	})
	if err != nil {
		s.log.Error().Err(err).Str("application_id", updated.ID).Msg("failed to enqueue status change task")
	} else {
		s.metrics.TaskEnqueued(domain.TaskApplicationStatusChanged)
	}

	s.log.Info().
		Str("application_id", updated.ID).
		Str("from", string(from)).
		Str("to", string(requested)).
		Str("actor_id", actor.ID).
		Msg("application status changed")

	return updated, nil
}

// authorizeEmployerAccess allows admins and the employer owning the
// application's job. Applicants are always rejected.
func (s *applicationService) authorizeEmployerAccess(ctx context.Context, actor domain.Actor, app *domain.Application) error {
	switch actor.Role {
	case domain.RoleAdmin:
		return nil
	case domain.RoleEmployer:
		job, err := s.jobs.FindByID(ctx, app.JobID)
		if errors.Is(err, domain.ErrJobNotFound) {
			return domain.ErrForbidden
		}
		if err != nil {
			return err
		}
		if !job.OwnedBy(actor.ID) {
			return domain.ErrForbidden
		}
		return nil
	default:
		return domain.ErrForbidden
	}
}

// Get returns the application with its job summary and ordered history.
func (s *applicationService) Get(ctx context.Context, actor domain.Actor, applicationID string) (*ports.ApplicationDetail, error) {
	app, err := s.apps.FindByID(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	}

	if actor.Role == domain.RoleApplicant {
		if app.ApplicantID != actor.ID {
			return nil, fmt.Errorf("get application: %w", domain.ErrForbidden)
		}
	} else if err := s.authorizeEmployerAccess(ctx, actor, app); err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	}

	job, err := s.jobs.FindByID(ctx, app.JobID)
	if err != nil {
		return nil, fmt.Errorf("get application: job: %w", err)
	}

	history, err := s.apps.History(ctx, app.ID)
	if err != nil {
		return nil, fmt.Errorf("get application: history: %w", err)
	}

	return &ports.ApplicationDetail{
		Application: app,
		Job: ports.JobSummary{
			ID:       job.ID,
			Title:    job.Title,
			Company:  job.Company,
			Location: job.Location,
		},
		History: history,
	}, nil
}

// ListMine returns the caller's own applications, newest first.
func (s *applicationService) ListMine(ctx context.Context, actor domain.Actor, page, pageSize int) (*ports.ApplicationPage, error) {
	if actor.Role != domain.RoleApplicant {
		return nil, fmt.Errorf("list applications: %w", domain.ErrForbidden)
	}
	return s.list(ctx, ports.ListApplicationsFilter{ApplicantID: actor.ID, Page: page, PageSize: pageSize})
}

// ListForJob returns applications to one job. Employers may only see jobs they
// own; foreign jobs are reported as not found.
func (s *applicationService) ListForJob(ctx context.Context, actor domain.Actor, jobID string, status domain.ApplicationStatus, page, pageSize int) (*ports.ApplicationPage, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("list job applications: %w: %q", domain.ErrInvalidStatus, status)
	}

	switch actor.Role {
	case domain.RoleAdmin, domain.RoleEmployer:
	default:
		return nil, fmt.Errorf("list job applications: %w", domain.ErrForbidden)
	}

	job, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("list job applications: %w", err)
	}
	if actor.Role == domain.RoleEmployer && !job.OwnedBy(actor.ID) {
		return nil, fmt.Errorf("list job applications: %w", domain.ErrJobNotFound)
	}

	return s.list(ctx, ports.ListApplicationsFilter{JobID: jobID, Status: status, Page: page, PageSize: pageSize})
}

func (s *applicationService) list(ctx context.Context, filter ports.ListApplicationsFilter) (*ports.ApplicationPage, error) {
	filter.Page, filter.PageSize = domain.NormalizePage(filter.Page, filter.PageSize)

	items, total, err := s.apps.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	if items == nil {
		items = []*domain.Application{}
	}
	return &ports.ApplicationPage{Items: items, Page: filter.Page, PageSize: filter.PageSize, Total: total}, nil
}
