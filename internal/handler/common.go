package handler // handler defines http handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// dbTimeout bounds every storage call made on behalf of a request so a slow
// database surfaces as a failure instead of a hang.
const dbTimeout = 5 * time.Second

// reqCtx derives a bounded context from the incoming request.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// parseID converts the :id path parameter to uint64.
func parseID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

// internalError hides the underlying failure behind a generic message so
// internals never leak to clients.
func internalError(c echo.Context, msg string) error {
	return c.JSON(http.StatusInternalServerError, echo.Map{
		"status":  "error",
		"message": msg,
	})
}

// validationFailed reports field constraint violations as a field->messages
// map with HTTP 422.
func validationFailed(c echo.Context, msg string, errs ValidationErrors) error {
	return c.JSON(http.StatusUnprocessableEntity, echo.Map{
		"status":  "error",
		"message": msg,
		"errors":  errs,
	})
}
