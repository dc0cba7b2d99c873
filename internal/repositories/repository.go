package repository

import (
	"context"
	"time"

	"task-manager.com/task-manager/internal/constants"
	model "task-manager.com/task-manager/internal/models"
)

// TaskFilter narrows task queries. Zero-valued fields do not filter.
type TaskFilter struct {
	Status     constants.TaskStatus
	StatusNot  constants.TaskStatus
	AssignedTo string
	DueBefore  *time.Time
}

// WithStatus returns a copy of f whose status is replaced by status.
func (f TaskFilter) WithStatus(status constants.TaskStatus) TaskFilter {
	f.Status = status
	return f
}

type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	FindByID(ctx context.Context, id string) (*model.Task, error)
	Find(ctx context.Context, filter TaskFilter) ([]model.Task, error)
	FindRecent(ctx context.Context, filter TaskFilter, limit int) ([]model.Task, error)
	Count(ctx context.Context, filter TaskFilter) (int64, error)
	CountByStatus(ctx context.Context, filter TaskFilter) (map[constants.TaskStatus]int64, error)
	CountByPriority(ctx context.Context, filter TaskFilter) (map[constants.TaskPriority]int64, error)
	Update(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByIDs(ctx context.Context, ids []string) ([]model.User, error)
	FindByRole(ctx context.Context, role constants.UserRole) ([]model.User, error)
}
