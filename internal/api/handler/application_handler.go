package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/hiretrack/hiretrack-api/internal/core/domain"
	"github.com/hiretrack/hiretrack-api/internal/core/ports"
)

// Idempotency headers.
const (
	HeaderIdempotencyKey     = "Idempotency-Key"
	HeaderIdempotentReplayed = "Idempotent-Replayed"
)

// ApplicationHandler handles HTTP requests for the application lifecycle.
type ApplicationHandler struct {
	service ports.ApplicationService
}

func NewApplicationHandler(service ports.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{service: service}
}

// Submit handles POST /v1/applications.
//
// @Summary      Apply to a job
// @Description  Submits exactly once per (applicant, Idempotency-Key). A replay returns the original application with Idempotent-Replayed: true.
// @Tags         applications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string                    true  "Client-chosen key, unique per submission intent"
// @Param        body             body      submitApplicationRequest  true  "Application"
// @Success      201              {object}  applicationResponse
// @Failure      400              {object}  errorResponse
// @Failure      403              {object}  errorResponse
// @Failure      404              {object}  errorResponse
// @Failure      409              {object}  errorResponse
// @Router       /v1/applications [post]
func (h *ApplicationHandler) Submit(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	key := strings.TrimSpace(c.Request().Header.Get(HeaderIdempotencyKey))
	if key == "" {
		return domain.ErrMissingIdempotencyKey
	}

	var req submitApplicationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.service.Submit(c.Request().Context(), ports.SubmitApplicationInput{
		ApplicantID:    actor.ID,
		JobID:          req.JobID,
		ResumeText:     req.ResumeText,
		CoverLetter:    req.CoverLetter,
		IdempotencyKey: key,
	})
	if err != nil {
		return err
	}

	if res.Replayed {
		c.Response().Header().Set(HeaderIdempotentReplayed, "true")
	}
	return c.JSON(http.StatusCreated, toApplicationResponse(res.Application))
}

// ListMine handles GET /v1/applications.
//
// @Summary      List the caller's applications
// @Tags         applications
// @Produce      json
// @Security     BearerAuth
// @Param        page       query     int  false  "Page (1-based)"
// @Param        page_size  query     int  false  "Page size (max 100)"
// @Success      200        {object}  pageResponse[applicationResponse]
// @Router       /v1/applications [get]
func (h *ApplicationHandler) ListMine(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	page, size, err := pageParams(c)
	if err != nil {
		return err
	}

	res, err := h.service.ListMine(c.Request().Context(), actor, page, size)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toApplicationPage(res))
}

// Get handles GET /v1/applications/:id.
//
// @Summary      Get an application with its status history
// @Tags         applications
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Application id"
// @Success      200  {object}  applicationDetailResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/applications/{id} [get]
func (h *ApplicationHandler) Get(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	detail, err := h.service.Get(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toApplicationDetailResponse(detail))
}

// ChangeStatus handles PATCH /v1/applications/:id/status.
//
// @Summary      Move an application to its next status
// @Tags         applications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Application id"
// @Param        body  body      changeStatusRequest  true  "Target status"
// @Success      200   {object}  applicationResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/applications/{id}/status [patch]
func (h *ApplicationHandler) ChangeStatus(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req changeStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	app, err := h.service.ChangeStatus(c.Request().Context(), actor, c.Param("id"), domain.ApplicationStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toApplicationResponse(app))
}

// ListForJob handles GET /v1/employer/jobs/:id/applications.
//
// @Summary      List applications received by a job
// @Tags         employer
// @Produce      json
// @Security     BearerAuth
// @Param        id         path      string  true   "Job id"
// @Param        status     query     string  false  "Filter by status"
// @Param        page       query     int     false  "Page (1-based)"
// @Param        page_size  query     int     false  "Page size (max 100)"
// @Success      200        {object}  pageResponse[applicationResponse]
// @Failure      400        {object}  errorResponse
// @Failure      404        {object}  errorResponse
// @Router       /v1/employer/jobs/{id}/applications [get]
func (h *ApplicationHandler) ListForJob(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	page, size, err := pageParams(c)
	if err != nil {
		return err
	}

	status := domain.ApplicationStatus(c.QueryParam("status"))
	res, err := h.service.ListForJob(c.Request().Context(), actor, c.Param("id"), status, page, size)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toApplicationPage(res))
}
