package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/hiretrack/hiretrack-api/internal/api/middleware"
	"github.com/hiretrack/hiretrack-api/internal/core/domain"
	"github.com/hiretrack/hiretrack-api/internal/core/ports"
)

// newContext builds an echo context for a request carrying the given actor,
// as the Auth middleware would have left it.
func newContext(method, target, body string, actor *domain.Actor) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if actor != nil {
		c.Set(middleware.ContextUserID, actor.ID)
		c.Set(middleware.ContextRole, actor.Role)
	}
	return c, rec
}

// ---- application service ----

type stubApplicationService struct {
	submitFn       func(ctx context.Context, in ports.SubmitApplicationInput) (*ports.SubmitResult, error)
	changeStatusFn func(ctx context.Context, actor domain.Actor, id string, status domain.ApplicationStatus) (*domain.Application, error)
	getFn          func(ctx context.Context, actor domain.Actor, id string) (*ports.ApplicationDetail, error)
	listMineFn     func(ctx context.Context, actor domain.Actor, page, size int) (*ports.ApplicationPage, error)
	listForJobFn   func(ctx context.Context, actor domain.Actor, jobID string, status domain.ApplicationStatus, page, size int) (*ports.ApplicationPage, error)
}

func (s *stubApplicationService) Submit(ctx context.Context, in ports.SubmitApplicationInput) (*ports.SubmitResult, error) {
	return s.submitFn(ctx, in)
}

func (s *stubApplicationService) ChangeStatus(ctx context.Context, actor domain.Actor, id string, status domain.ApplicationStatus) (*domain.Application, error) {
	return s.changeStatusFn(ctx, actor, id, status)
}

func (s *stubApplicationService) Get(ctx context.Context, actor domain.Actor, id string) (*ports.ApplicationDetail, error) {
	return s.getFn(ctx, actor, id)
}

func (s *stubApplicationService) ListMine(ctx context.Context, actor domain.Actor, page, size int) (*ports.ApplicationPage, error) {
	return s.listMineFn(ctx, actor, page, size)
}

func (s *stubApplicationService) ListForJob(ctx context.Context, actor domain.Actor, jobID string, status domain.ApplicationStatus, page, size int) (*ports.ApplicationPage, error) {
	return s.listForJobFn(ctx, actor, jobID, status, page, size)
}

// ---- job service ----

type stubJobService struct {
	listFn   func(ctx context.Context, actor domain.Actor, in ports.ListJobsInput) (*domain.JobPage, error)
	getFn    func(ctx context.Context, actor domain.Actor, id string) (*domain.Job, error)
	createFn func(ctx context.Context, actor domain.Actor, in ports.JobInput) (*domain.Job, error)
	updateFn func(ctx context.Context, actor domain.Actor, id string, in ports.JobInput) (*domain.Job, error)
}

func (s *stubJobService) List(ctx context.Context, actor domain.Actor, in ports.ListJobsInput) (*domain.JobPage, error) {
	return s.listFn(ctx, actor, in)
}

func (s *stubJobService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.Job, error) {
	return s.getFn(ctx, actor, id)
}

func (s *stubJobService) Create(ctx context.Context, actor domain.Actor, in ports.JobInput) (*domain.Job, error) {
	return s.createFn(ctx, actor, in)
}

func (s *stubJobService) Update(ctx context.Context, actor domain.Actor, id string, in ports.JobInput) (*domain.Job, error) {
	return s.updateFn(ctx, actor, id, in)
}

func (s *stubJobService) InvalidateListings(context.Context) {}

// ---- queue ----

type stubQueue struct {
	depth    int64
	dlq      []*domain.Task
	err      error
	gotRange [2]int64
}

func (q *stubQueue) Depth(context.Context) (int64, error) { return q.depth, q.err }

func (q *stubQueue) DLQSize(context.Context) (int64, error) { return int64(len(q.dlq)), q.err }

func (q *stubQueue) ListDLQ(_ context.Context, offset, limit int64) ([]*domain.Task, error) {
	q.gotRange = [2]int64{offset, limit}
	if q.err != nil {
		return nil, q.err
	}
	if offset >= int64(len(q.dlq)) {
		return nil, nil
	}
	end := min(offset+limit, int64(len(q.dlq)))
	return q.dlq[offset:end], nil
}
