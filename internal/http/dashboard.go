package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (h *Handler) DashboardData(c echo.Context) error {
	dashboard, err := h.dashboardService.AdminDashboard(c.Request().Context())
	if err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusOK, dashboard)
}

func (h *Handler) UserDashboardData(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}

	dashboard, err := h.dashboardService.UserDashboard(c.Request().Context(), a.ID)
	if err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusOK, dashboard)
}
