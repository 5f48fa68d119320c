// Package handler contains the HTTP handlers. Handlers parse and validate
// input, call repositories or the booking service, and map sentinel errors
// to status codes.
package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-booking/internal/i18n"
	mw "github.com/iliyamo/travel-booking/internal/middleware"
	"github.com/iliyamo/travel-booking/internal/repository"
	"github.com/iliyamo/travel-booking/internal/service"
)

const requestTimeout = 5 * time.Second

var errValidation = service.ErrValidation

func withTimeout(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// fail maps domain errors to a JSON error response. Unknown errors are
// logged and reported as 500 without detail.
func fail(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, repository.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, repository.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, repository.ErrConflict),
		errors.Is(err, repository.ErrEmailExists),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrUnavailable),
		errors.Is(err, service.ErrInactive):
		status = http.StatusConflict
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrInvalidDates),
		errors.Is(err, service.ErrCapacityExceeded):
		status = http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}
	if status == http.StatusInternalServerError {
		c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
		return c.JSON(status, echo.Map{"error": "internal error"})
	}
	return c.JSON(status, echo.Map{"error": err.Error()})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

// normalizer is implemented by request bodies that canonicalise fields
// before validation.
type normalizer interface {
	normalize()
}

// bindValid binds the body into req, normalizes it and runs the registered
// validator.
func bindValid(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return fmt.Errorf("invalid body: %w", errValidation)
	}
	if n, ok := req.(normalizer); ok {
		n.normalize()
	}
	return c.Validate(req)
}

func invalid(msg string) error { return fmt.Errorf("%s: %w", msg, errValidation) }

func parseID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, invalid("invalid " + name)
	}
	return id, nil
}

// pageFrom reads ?page and ?page_size; bad values fall back to defaults.
func pageFrom(c echo.Context) repository.Page {
	p, _ := strconv.Atoi(c.QueryParam("page"))
	ps, _ := strconv.Atoi(c.QueryParam("page_size"))
	return repository.Page{Page: p, PageSize: ps}.Normalize()
}

func actorFrom(c echo.Context) (service.Actor, bool) {
	id, ok := mw.UserID(c)
	if !ok {
		return service.Actor{}, false
	}
	return service.Actor{UserID: id, Role: mw.Role(c)}, true
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
}

// paged renders a list page. Localized listings also carry lang and dir so
// clients can flip layout for Arabic.
func paged[T any](c echo.Context, items []T, page repository.Page, total int) error {
	if items == nil {
		items = []T{}
	}
	lang := mw.Lang(c)
	return c.JSON(http.StatusOK, echo.Map{
		"items":     items,
		"page":      page.Page,
		"page_size": page.PageSize,
		"total":     total,
		"lang":      lang,
		"dir":       i18n.Direction(lang),
	})
}

func localized(c echo.Context, data any) error {
	lang := mw.Lang(c)
	return c.JSON(http.StatusOK, echo.Map{"data": data, "lang": lang, "dir": i18n.Direction(lang)})
}
