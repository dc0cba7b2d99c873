package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (h *Handler) ListUsers(c echo.Context) error {
	members, err := h.userService.ListMembers(c.Request().Context())
	if err != nil {
		return failWithDetail(c, err)
	}

	return c.JSON(http.StatusOK, members)
}

func (h *Handler) GetUser(c echo.Context) error {
	user, err := h.userService.GetUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return failWithDetail(c, err)
	}

	return c.JSON(http.StatusOK, user)
}
