package http

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "task-manager.com/task-manager/internal/errors"
	middleware "task-manager.com/task-manager/internal/http/middlewares"
	"task-manager.com/task-manager/internal/logging"
	model "task-manager.com/task-manager/internal/models"
	"task-manager.com/task-manager/internal/services"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	taskService      *services.TaskService
	dashboardService *services.DashboardService
	userService      *services.UserService
	store            Pinger
	storeName        string
}

func NewHandler(
	taskService *services.TaskService,
	dashboardService *services.DashboardService,
	userService *services.UserService,
	store Pinger,
	storeName string,
) *Handler {
	return &Handler{
		taskService:      taskService,
		dashboardService: dashboardService,
		userService:      userService,
		store:            store,
		storeName:        storeName,
	}
}

// actor returns the caller set by the auth middleware.
func actor(c echo.Context) (model.Actor, error) {
	a, ok := middleware.ActorFrom(c)
	if !ok {
		return model.Actor{}, fail(apperrors.ErrMissingIdentity)
	}
	return a, nil
}

func fail(err error) error {
	status := apperrors.StatusCode(err)
	if status >= http.StatusInternalServerError {
		logging.Logger.WithError(err).Error("request failed")
	}
	return echo.NewHTTPError(status, apperrors.Message(err))
}

// failWithDetail is fail, except that server errors also carry the
// underlying error text.
func failWithDetail(c echo.Context, err error) error {
	status := apperrors.StatusCode(err)
	if status < http.StatusInternalServerError {
		return fail(err)
	}

	logging.Logger.WithError(err).Error("request failed")
	return c.JSON(status, echo.Map{
		"message": apperrors.MsgServerError,
		"error":   err.Error(),
	})
}

func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}
	return nil
}
