package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	dto "task-manager.com/task-manager/internal/data_models"
	"task-manager.com/task-manager/internal/http/validators"
)

func (h *Handler) ListTasks(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}

	status, err := validators.ParseStatus(c.QueryParam("status"))
	if err != nil {
		return fail(err)
	}

	list, err := h.taskService.ListTasks(c.Request().Context(), a, status)
	if err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusOK, list)
}

func (h *Handler) GetTask(c echo.Context) error {
	task, err := h.taskService.GetTask(c.Request().Context(), c.Param("id"))
	if err != nil {
		return failWithDetail(c, err)
	}

	return c.JSON(http.StatusOK, task)
}

func (h *Handler) CreateTask(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}

	var req dto.CreateTaskRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return fail(err)
	}

	input, err := validators.CreateTaskInput(&req)
	if err != nil {
		return fail(err)
	}

	task, err := h.taskService.CreateTask(c.Request().Context(), a, input)
	if err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Task created successfully",
		"task":    task,
	})
}

func (h *Handler) UpdateTask(c echo.Context) error {
	var req dto.UpdateTaskRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	input, err := validators.UpdateTaskInput(&req)
	if err != nil {
		return fail(err)
	}

	task, err := h.taskService.UpdateTask(c.Request().Context(), c.Param("id"), input)
	if err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":     "Task updated successfully",
		"updatedTask": task,
	})
}

func (h *Handler) DeleteTask(c echo.Context) error {
	if err := h.taskService.DeleteTask(c.Request().Context(), c.Param("id")); err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Task deleted successfully"})
}

func (h *Handler) UpdateTaskStatus(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}

	var req dto.UpdateTaskStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	status, err := validators.ParseStatus(req.Status)
	if err != nil {
		return fail(err)
	}

	task, err := h.taskService.UpdateStatus(c.Request().Context(), a, c.Param("id"), status)
	if err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Task status updated",
		"task":    task,
	})
}

func (h *Handler) UpdateTaskChecklist(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}

	var req dto.UpdateTaskChecklistRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	task, err := h.taskService.UpdateChecklist(c.Request().Context(), a, c.Param("id"), req.TodoChecklist)
	if err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Task checklist updated",
		"task":    task,
	})
}
