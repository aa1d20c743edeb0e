// Package api assembles the HTTP adapter: routing, middleware and error
// rendering on top of the core services.
package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/hiretrack/hiretrack-api/docs"
	"github.com/hiretrack/hiretrack-api/internal/api/handler"
	"github.com/hiretrack/hiretrack-api/internal/api/middleware"
	"github.com/hiretrack/hiretrack-api/internal/core/domain"
	"github.com/hiretrack/hiretrack-api/internal/core/ports"
)

// Dependencies are the collaborators the router wires into handlers.
type Dependencies struct {
	Applications ports.ApplicationService
	Jobs         ports.JobService
	Queue        ports.TaskQueue
	// DBCheck and RedisCheck back the readiness and admin health probes.
	DBCheck    handler.Check
	RedisCheck handler.Check
	Registry   *prometheus.Registry
	JWTSecret  string
	Log        zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "hiretrack",
		Subsystem:  "http",
		Registerer: deps.Registry,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Public endpoints ---
	health := handler.NewHealthHandler(map[string]handler.Check{
		"database": deps.DBCheck,
		"redis":    deps.RedisCheck,
	})
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: deps.Registry}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Authenticated API ---
	applications := handler.NewApplicationHandler(deps.Applications)
	jobs := handler.NewJobHandler(deps.Jobs)
	admin := handler.NewAdminHandler(deps.Queue, deps.DBCheck, deps.RedisCheck, deps.Log)

	employerOrAdmin := middleware.RBAC(domain.RoleEmployer, domain.RoleAdmin)

	v1 := e.Group("/v1", middleware.Auth(deps.JWTSecret))

	v1.POST("/applications", applications.Submit, middleware.RBAC(domain.RoleApplicant))
	v1.GET("/applications", applications.ListMine, middleware.RBAC(domain.RoleApplicant))
	v1.GET("/applications/:id", applications.Get)
	v1.PATCH("/applications/:id/status", applications.ChangeStatus, employerOrAdmin)
	v1.GET("/employer/jobs/:id/applications", applications.ListForJob, employerOrAdmin)

	v1.GET("/jobs", jobs.List)
	v1.GET("/jobs/:id", jobs.Get)
	v1.POST("/jobs", jobs.Create, employerOrAdmin)
	v1.PATCH("/jobs/:id", jobs.Update, employerOrAdmin)

	adminGroup := v1.Group("/admin", middleware.RBAC(domain.RoleAdmin))
	adminGroup.GET("/queue", admin.QueueStats)
	adminGroup.GET("/dlq", admin.DeadLetters)
	adminGroup.GET("/health", admin.Health)

	return e
}

// requestLogger writes one structured access log line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	log = log.With().Str("component", "http").Logger()
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Status >= 500 {
				evt = log.Error()
			}
			if v.Error != nil {
				evt = evt.Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
