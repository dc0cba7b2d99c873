package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"task-manager.com/task-manager/internal/constants"
	middleware "task-manager.com/task-manager/internal/http/middlewares"
	"task-manager.com/task-manager/internal/http/validators"
	"task-manager.com/task-manager/internal/logging"
	model "task-manager.com/task-manager/internal/models"
	"task-manager.com/task-manager/internal/ratelimit"
	repository "task-manager.com/task-manager/internal/repositories"
	"task-manager.com/task-manager/internal/services"
)

type testServer struct {
	e     *echo.Echo
	tasks repository.TaskRepository
	users repository.UserRepository
}

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

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logging.Logger.SetOutput(io.Discard)

	db := setupTestDB(t)
	tasks := repository.NewTaskRepository(db)
	users := repository.NewUserRepository(db)
	tracer := noop.NewTracerProvider().Tracer("test")

	h := NewHandler(
		services.NewTaskService(tasks, users, tracer),
		services.NewDashboardService(tasks, tracer),
		services.NewUserService(users, tasks, tracer),
		tasks,
		"sqlite",
	)

	e := echo.New()
	e.Validator = validators.NewRequestValidator()
	e.Use(middleware.RequestLogger)
	e.Use(middleware.Tracing(tracer))
	e.Use(middleware.RateLimiter(ratelimit.NewMemoryLimiter(1000, time.Minute)))
	Register(e, h, middleware.Authenticate(users))

	return &testServer{e: e, tasks: tasks, users: users}
}

func (s *testServer) user(t *testing.T, name string, role constants.UserRole) string {
	t.Helper()

	u := &model.User{Name: name, Email: name + "@example.com", Role: role}
	require.NoError(t, s.users.Create(context.Background(), u))
	return u.ID
}

func (s *testServer) task(t *testing.T, assignees ...string) string {
	t.Helper()

	task := &model.Task{
		Title:      "seeded",
		Priority:   constants.PriorityMedium,
		Status:     constants.StatusPending,
		AssignedTo: assignees,
	}
	require.NoError(t, s.tasks.Create(context.Background(), task))
	return task.ID
}

func (s *testServer) do(t *testing.T, method, path, userID, body string) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if userID != "" {
		req.Header.Set(middleware.UserIDHeader, userID)
	}

	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var out map[string]interface{}
	if rec.Body.Len() > 0 && strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "{") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec.Code, out
}

func TestAuthentication(t *testing.T) {
	s := newTestServer(t)

	code, body := s.do(t, http.MethodGet, "/tasks", "", "")
	require.Equal(t, http.StatusUnauthorized, code)
	require.NotEmpty(t, body["message"])

	code, _ = s.do(t, http.MethodGet, "/tasks", "nobody", "")
	require.Equal(t, http.StatusUnauthorized, code)

	code, _ = s.do(t, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, code)
}

func TestAdminOnlyRoutes(t *testing.T) {
	s := newTestServer(t)
	member := s.user(t, "alice", constants.RoleMember)
	taskID := s.task(t, member)

	for _, route := range []struct{ method, path, body string }{
		{http.MethodPost, "/tasks", `{"title":"x","assignedTo":["` + member + `"]}`},
		{http.MethodDelete, "/tasks/" + taskID, ""},
		{http.MethodGet, "/tasks/dashboard-data", ""},
		{http.MethodGet, "/users", ""},
	} {
		code, body := s.do(t, route.method, route.path, member, route.body)
		require.Equal(t, http.StatusForbidden, code, route.path)
		require.Equal(t, "Access denied, admin only", body["message"])
	}
}

func TestCreateTask(t *testing.T) {
	s := newTestServer(t)
	admin := s.user(t, "admin", constants.RoleAdmin)
	member := s.user(t, "alice", constants.RoleMember)

	code, body := s.do(t, http.MethodPost, "/tasks", admin, `{"title":"x","assignedTo":"`+member+`"}`)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "assignedTo must be an array of user IDs", body["message"])

	code, _ = s.do(t, http.MethodPost, "/tasks", admin, `{"title":"x"}`)
	require.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(t, http.MethodPost, "/tasks", admin, `{"title":"x","assignedTo":[]}`)
	require.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(t, http.MethodPost, "/tasks", admin, `{"title":"x","priority":"Urgent","assignedTo":["`+member+`"]}`)
	require.Equal(t, http.StatusBadRequest, code)

	code, body = s.do(t, http.MethodPost, "/tasks", admin,
		`{"title":"write","dueDate":"2030-05-01","assignedTo":["`+member+`"],"todoChecklist":[{"text":"a","completed":true}]}`)
	require.Equal(t, http.StatusCreated, code)
	require.Equal(t, "Task created successfully", body["message"])

	task := body["task"].(map[string]interface{})
	require.NotEmpty(t, task["_id"])
	require.Equal(t, "Pending", task["status"])
	require.Equal(t, "Medium", task["priority"])
	require.Equal(t, float64(0), task["progress"])
}

func TestGetTask(t *testing.T) {
	s := newTestServer(t)
	member := s.user(t, "alice", constants.RoleMember)
	taskID := s.task(t, member)

	code, body := s.do(t, http.MethodGet, "/tasks/"+taskID, member, "")
	require.Equal(t, http.StatusOK, code)
	assignees := body["assignedTo"].([]interface{})
	require.Len(t, assignees, 1)
	require.Equal(t, "alice", assignees[0].(map[string]interface{})["name"])

	code, body = s.do(t, http.MethodGet, "/tasks/missing", member, "")
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, "Task not found", body["message"])
}

func TestListTasks(t *testing.T) {
	s := newTestServer(t)
	alice := s.user(t, "alice", constants.RoleMember)
	bob := s.user(t, "bob", constants.RoleMember)
	s.task(t, alice)
	s.task(t, bob)

	code, body := s.do(t, http.MethodGet, "/tasks", alice, "")
	require.Equal(t, http.StatusOK, code)
	require.Len(t, body["tasks"].([]interface{}), 1)

	summary := body["statusSummary"].(map[string]interface{})
	require.Equal(t, float64(1), summary["all"])
	require.Equal(t, float64(1), summary["pendingTasks"])

	code, _ = s.do(t, http.MethodGet, "/tasks?status=Done", alice, "")
	require.Equal(t, http.StatusBadRequest, code)
}

func TestUpdateTask(t *testing.T) {
	s := newTestServer(t)
	member := s.user(t, "alice", constants.RoleMember)
	taskID := s.task(t, member)

	code, body := s.do(t, http.MethodPut, "/tasks/"+taskID, member, `{"title":"","description":"details","attachments":[]}`)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "Task updated successfully", body["message"])

	updated := body["updatedTask"].(map[string]interface{})
	require.Equal(t, "seeded", updated["title"])
	require.Equal(t, "details", updated["description"])

	code, body = s.do(t, http.MethodPut, "/tasks/"+taskID, member, `{"assignedTo":"`+member+`"}`)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "assignedTo must be an array of user IDs", body["message"])

	code, _ = s.do(t, http.MethodPut, "/tasks/missing", member, `{"title":"x"}`)
	require.Equal(t, http.StatusNotFound, code)
}

func TestUpdateTaskStatusAndChecklist(t *testing.T) {
	s := newTestServer(t)
	alice := s.user(t, "alice", constants.RoleMember)
	mallory := s.user(t, "mallory", constants.RoleMember)
	taskID := s.task(t, alice)

	code, _ := s.do(t, http.MethodPut, "/tasks/"+taskID+"/status", alice, `{"status":"Done"}`)
	require.Equal(t, http.StatusBadRequest, code)

	code, body := s.do(t, http.MethodPut, "/tasks/"+taskID+"/status", mallory, `{"status":"Completed"}`)
	require.Equal(t, http.StatusForbidden, code)
	require.Equal(t, "Not authorized", body["message"])

	code, _ = s.do(t, http.MethodPut, "/tasks/"+taskID+"/todo", alice, `{}`)
	require.Equal(t, http.StatusBadRequest, code)

	code, body = s.do(t, http.MethodPut, "/tasks/"+taskID+"/todo", mallory, `{"todoChecklist":[]}`)
	require.Equal(t, http.StatusForbidden, code)
	require.Equal(t, "Not authorized to update checklist", body["message"])

	code, body = s.do(t, http.MethodPut, "/tasks/"+taskID+"/todo", alice,
		`{"todoChecklist":[{"text":"a","completed":true},{"text":"b","completed":false},{"text":"c","completed":true}]}`)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "Task checklist updated", body["message"])
	task := body["task"].(map[string]interface{})
	require.Equal(t, float64(67), task["progress"])
	require.Equal(t, "In Progress", task["status"])

	code, body = s.do(t, http.MethodPut, "/tasks/"+taskID+"/status", alice, `{"status":"Completed"}`)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "Task status updated", body["message"])
	task = body["task"].(map[string]interface{})
	require.Equal(t, float64(100), task["progress"])
	for _, item := range task["todoChecklist"].([]interface{}) {
		require.Equal(t, true, item.(map[string]interface{})["completed"])
	}
}

func TestDashboards(t *testing.T) {
	s := newTestServer(t)
	admin := s.user(t, "admin", constants.RoleAdmin)
	alice := s.user(t, "alice", constants.RoleMember)
	s.task(t, alice)

	code, body := s.do(t, http.MethodGet, "/tasks/dashboard-data", admin, "")
	require.Equal(t, http.StatusOK, code)
	charts := body["charts"].(map[string]interface{})
	require.Contains(t, charts, "taskPriorityLevel")
	require.NotContains(t, charts, "taskPriorityLevels")

	code, body = s.do(t, http.MethodGet, "/tasks/user-dashboard-data", alice, "")
	require.Equal(t, http.StatusOK, code)
	charts = body["charts"].(map[string]interface{})
	require.Contains(t, charts, "taskPriorityLevels")
	require.Equal(t, float64(1), body["statistics"].(map[string]interface{})["totalTasks"])
}

func TestUsers(t *testing.T) {
	s := newTestServer(t)
	admin := s.user(t, "admin", constants.RoleAdmin)
	alice := s.user(t, "alice", constants.RoleMember)
	s.task(t, alice)

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set(middleware.UserIDHeader, admin)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var members []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &members))
	require.Len(t, members, 1)
	require.Equal(t, float64(1), members[0]["pendingTasks"])

	code, body := s.do(t, http.MethodGet, "/users/"+alice, alice, "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "alice@example.com", body["email"])

	code, body = s.do(t, http.MethodGet, "/users/missing", alice, "")
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, "User not found", body["message"])
}

func TestDeleteTask(t *testing.T) {
	s := newTestServer(t)
	admin := s.user(t, "admin", constants.RoleAdmin)
	taskID := s.task(t, admin)

	code, body := s.do(t, http.MethodDelete, "/tasks/"+taskID, admin, "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "Task deleted successfully", body["message"])

	code, _ = s.do(t, http.MethodDelete, "/tasks/"+taskID, admin, "")
	require.Equal(t, http.StatusNotFound, code)
}
