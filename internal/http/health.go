package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"task-manager.com/task-manager/internal/logging"
)

func (h *Handler) Health(c echo.Context) error {
	if err := h.store.Ping(c.Request().Context()); err != nil {
		logging.Logger.WithError(err).Warn("health check failed")
		return c.JSON(http.StatusServiceUnavailable, echo.Map{
			"status": "unavailable",
			"store":  h.storeName,
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status": "ok",
		"store":  h.storeName,
	})
}
