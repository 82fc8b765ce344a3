package handler

import (
	"railtrace/internal/service"

	"github.com/labstack/echo/v4"
)

// serviceError renders a classified service error with its mapped status and
// a machine-readable kind alongside the human-readable message.
func serviceError(c echo.Context, err error) error {
	return c.JSON(service.HTTPStatus(err), echo.Map{
		"error": err.Error(),
		"kind":  string(service.KindOf(err)),
	})
}
