package http

import (
	"github.com/labstack/echo/v4"

	middleware "task-manager.com/task-manager/internal/http/middlewares"
)

// Register mounts the API on e. auth must resolve the caller; the
// dashboard routes are registered ahead of /tasks/:id.
func Register(e *echo.Echo, h *Handler, auth echo.MiddlewareFunc) {
	e.GET("/health", h.Health)

	tasks := e.Group("/tasks", auth)
	tasks.GET("/dashboard-data", h.DashboardData, middleware.AdminOnly)
	tasks.GET("/user-dashboard-data", h.UserDashboardData)
	tasks.GET("", h.ListTasks)
	tasks.GET("/:id", h.GetTask)
	tasks.POST("", h.CreateTask, middleware.AdminOnly)
	tasks.PUT("/:id", h.UpdateTask)
	tasks.DELETE("/:id", h.DeleteTask, middleware.AdminOnly)
	tasks.PUT("/:id/status", h.UpdateTaskStatus)
	tasks.PUT("/:id/todo", h.UpdateTaskChecklist)

	users := e.Group("/users", auth)
	users.GET("", h.ListUsers, middleware.AdminOnly)
	users.GET("/:id", h.GetUser)
}
