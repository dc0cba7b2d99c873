package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"task-manager.com/task-manager/internal/constants"
	model "task-manager.com/task-manager/internal/models"
	repository "task-manager.com/task-manager/internal/repositories"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(repository.Models()...))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

func testTracer() trace.Tracer {
	return noop.NewTracerProvider().Tracer("test")
}

type fixture struct {
	tasks repository.TaskRepository
	users repository.UserRepository

	taskService      *TaskService
	dashboardService *DashboardService
	userService      *UserService
}

func newFixture(t *testing.T) *fixture {
	db := setupTestDB(t)
	tasks := repository.NewTaskRepository(db)
	users := repository.NewUserRepository(db)

	return &fixture{
		tasks:            tasks,
		users:            users,
		taskService:      NewTaskService(tasks, users, testTracer()),
		dashboardService: NewDashboardService(tasks, testTracer()),
		userService:      NewUserService(users, tasks, testTracer()),
	}
}

func (f *fixture) user(t *testing.T, name string, role constants.UserRole) model.Actor {
	t.Helper()

	u := &model.User{Name: name, Email: name + "@example.com", Role: role}
	require.NoError(t, f.users.Create(context.Background(), u))
	return model.Actor{ID: u.ID, Role: u.Role}
}

func (f *fixture) task(t *testing.T, task model.Task) *model.Task {
	t.Helper()

	if task.Priority == "" {
		task.Priority = constants.PriorityMedium
	}
	if task.Status == "" {
		task.Status = constants.StatusPending
	}
	require.NoError(t, f.tasks.Create(context.Background(), &task))
	return &task
}

func datePtr(t time.Time) *time.Time {
	return &t
}
