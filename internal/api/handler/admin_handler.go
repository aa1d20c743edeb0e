package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hiretrack/hiretrack-api/internal/core/domain"
)

// queueInspector is the read side of the task queue used by operators.
type queueInspector interface {
	Depth(ctx context.Context) (int64, error)
	DLQSize(ctx context.Context) (int64, error)
	ListDLQ(ctx context.Context, offset, limit int64) ([]*domain.Task, error)
}

// Health component states.
const (
	componentOK       = "ok"
	componentDegraded = "degraded"
	componentDown     = "down"
)

// AdminHandler exposes queue and dependency state to administrators.
type AdminHandler struct {
	queue queueInspector
	db    Check
	redis Check
	log   zerolog.Logger
}

func NewAdminHandler(queue queueInspector, db, redis Check, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		queue: queue,
		db:    db,
		redis: redis,
		log:   log.With().Str("component", "admin_handler").Logger(),
	}
}

// QueueStats handles GET /v1/admin/queue.
//
// @Summary      Task queue depth and dead-letter size
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  queueStatsResponse
// @Router       /v1/admin/queue [get]
func (h *AdminHandler) QueueStats(c echo.Context) error {
	ctx := c.Request().Context()

	depth, err := h.queue.Depth(ctx)
	if err != nil {
		return fmt.Errorf("queue depth: %w", err)
	}
	dlq, err := h.queue.DLQSize(ctx)
	if err != nil {
		return fmt.Errorf("dlq size: %w", err)
	}
	return c.JSON(http.StatusOK, queueStatsResponse{QueueDepth: depth, DLQSize: dlq})
}

// DeadLetters handles GET /v1/admin/dlq.
//
// @Summary      Inspect dead-lettered tasks
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        page       query     int  false  "Page (1-based)"
// @Param        page_size  query     int  false  "Page size (max 100)"
// @Success      200        {object}  pageResponse[domain.Task]
// @Router       /v1/admin/dlq [get]
func (h *AdminHandler) DeadLetters(c echo.Context) error {
	page, size, err := pageParams(c)
	if err != nil {
		return err
	}
	page, size = domain.NormalizePage(page, size)
	ctx := c.Request().Context()

	total, err := h.queue.DLQSize(ctx)
	if err != nil {
		return fmt.Errorf("dlq size: %w", err)
	}
	tasks, err := h.queue.ListDLQ(ctx, int64((page-1)*size), int64(size))
	if err != nil {
		return fmt.Errorf("list dlq: %w", err)
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}
	return c.JSON(http.StatusOK, pageResponse[*domain.Task]{Items: tasks, Page: page, PageSize: size, Total: total})
}

// Health handles GET /v1/admin/health. The queue is degraded while any task
// sits in the DLQ; the service is down only when both stores are unreachable.
//
// @Summary      Component health
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  healthResponse
// @Router       /v1/admin/health [get]
func (h *AdminHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), probeTimeout)
	defer cancel()

	dbOK := h.probe(ctx, "db", h.db)
	redisOK := h.probe(ctx, "redis", h.redis)

	queueOK := false
	var dlq int64
	if redisOK {
		n, err := h.queue.DLQSize(ctx)
		if err != nil {
			h.log.Warn().Err(err).Msg("dlq size unavailable")
		}
		dlq, queueOK = n, err == nil && n == 0
	}

	components := []healthComponent{
		{Name: "db", Status: upOrDown(dbOK)},
		{Name: "redis", Status: upOrDown(redisOK)},
		{Name: "queue", Status: okOrDegraded(queueOK), Message: fmt.Sprintf("dlq_size=%d", dlq)},
	}

	overall := componentDegraded
	switch {
	case dbOK && redisOK:
		overall = okOrDegraded(queueOK)
	case !dbOK && !redisOK:
		overall = componentDown
	}
	return c.JSON(http.StatusOK, healthResponse{Status: overall, Components: components})
}

func (h *AdminHandler) probe(ctx context.Context, name string, check Check) bool {
	if check == nil {
		return false
	}
	if err := check(ctx); err != nil {
		h.log.Warn().Err(err).Str("dependency", name).Msg("health probe failed")
		return false
	}
	return true
}

func upOrDown(ok bool) string {
	if ok {
		return componentOK
	}
	return componentDown
}

func okOrDegraded(ok bool) string {
	if ok {
		return componentOK
	}
	return componentDegraded
}
