package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	apperrors "task-manager.com/task-manager/internal/errors"
	model "task-manager.com/task-manager/internal/models"
)

// UserIDHeader is set by the gateway once it has authenticated the caller.
const UserIDHeader = "X-User-ID"

const actorKey = "actor"

type UserFinder interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// Authenticate resolves the caller from UserIDHeader and stores it as the
// request actor.
func Authenticate(users UserFinder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := strings.TrimSpace(c.Request().Header.Get(UserIDHeader))
			if id == "" {
				return reject(apperrors.ErrMissingIdentity)
			}

			user, err := users.FindByID(c.Request().Context(), id)
			if err != nil {
				if errors.Is(err, apperrors.ErrUserNotFound) {
					return reject(apperrors.ErrUnknownIdentity)
				}
				return echo.NewHTTPError(apperrors.StatusCode(err), apperrors.Message(err))
			}

			c.Set(actorKey, model.Actor{ID: user.ID, Role: user.Role})
			return next(c)
		}
	}
}

func AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		actor, ok := ActorFrom(c)
		if !ok || !actor.IsAdmin() {
			return reject(apperrors.ErrAdminOnly)
		}
		return next(c)
	}
}

func ActorFrom(c echo.Context) (model.Actor, bool) {
	actor, ok := c.Get(actorKey).(model.Actor)
	return actor, ok
}

func reject(err *apperrors.Exception) error {
	return echo.NewHTTPError(err.StatusCode, err.Message)
}
