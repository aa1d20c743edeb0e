package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hiretrack/hiretrack-api/internal/api/middleware"
	"github.com/hiretrack/hiretrack-api/internal/core/domain"
)

// ctxActor extracts the identity injected by the Auth middleware and fails
// fast before any service call when it is absent or malformed.
func ctxActor(c echo.Context) (domain.Actor, error) {
	role, _ := c.Get(middleware.ContextRole).(domain.Role)
	if !role.Valid() {
		return domain.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	id, _ := c.Get(middleware.ContextUserID).(string)
	if id == "" {
		return domain.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "token missing user identity")
	}

	return domain.Actor{ID: id, Role: role}, nil
}

// pageParams reads the optional page and page_size query parameters. Range
// normalisation is left to the services.
func pageParams(c echo.Context) (page, pageSize int, err error) {
	err = echo.QueryParamsBinder(c).
		Int("page", &page).
		Int("page_size", &pageSize).
		BindError()
	if err != nil {
		return 0, 0, echo.NewHTTPError(http.StatusBadRequest, "page and page_size must be integers")
	}
	return page, pageSize, nil
}

// bindAndValidate decodes the request body into req and runs the registered
// validator on it.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return c.Validate(req)
}
