package services

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"task-manager.com/task-manager/internal/constants"
	model "task-manager.com/task-manager/internal/models"
	repository "task-manager.com/task-manager/internal/repositories"
)

const recentTasksLimit = 10

type DashboardService struct {
	tasks  repository.TaskRepository
	tracer trace.Tracer
	now    func() time.Time
}

func NewDashboardService(tasks repository.TaskRepository, tracer trace.Tracer) *DashboardService {
	return &DashboardService{
		tasks:  tasks,
		tracer: tracer,
		now:    time.Now,
	}
}

type DashboardStatistics struct {
	TotalTasks     int64 `json:"totalTasks"`
	PendingTasks   int64 `json:"pendingTasks"`
	CompletedTasks int64 `json:"completedTasks"`
	OverdueTasks   int64 `json:"overdueTasks"`
}

// DashboardCharts carries the priority counts under the key each dashboard
// has always used: taskPriorityLevel globally, taskPriorityLevels per user.
type DashboardCharts struct {
	TaskDistribution   map[string]int64 `json:"taskDistribution"`
	TaskPriorityLevel  map[string]int64 `json:"taskPriorityLevel,omitempty"`
	TaskPriorityLevels map[string]int64 `json:"taskPriorityLevels,omitempty"`
}

type RecentTask struct {
	ID        string                 `json:"_id"`
	Title     string                 `json:"title"`
	Status    constants.TaskStatus   `json:"status"`
	Priority  constants.TaskPriority `json:"priority"`
	DueDate   *time.Time             `json:"dueDate,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
}

type Dashboard struct {
	Statistics  DashboardStatistics `json:"statistics"`
	Charts      DashboardCharts     `json:"charts"`
	RecentTasks []RecentTask        `json:"recentTasks"`
}

// AdminDashboard summarizes every task. Its overdue figure counts tasks
// that are Completed with a due date in the past; this is the long-standing
// definition of the admin metric and differs from the per-user one.
func (s *DashboardService) AdminDashboard(ctx context.Context) (*Dashboard, error) {
	ctx, span := s.tracer.Start(ctx, "DashboardService.AdminDashboard")
	defer span.End()

	now := s.now().UTC()
	overdue := repository.TaskFilter{
		Status:    constants.StatusCompleted,
		DueBefore: &now,
	}

	dashboard, err := s.build(ctx, repository.TaskFilter{}, overdue)
	if err != nil {
		return nil, err
	}

	dashboard.Charts.TaskPriorityLevel = dashboard.Charts.TaskPriorityLevels
	dashboard.Charts.TaskPriorityLevels = nil
	return dashboard, nil
}

// UserDashboard summarizes the tasks assigned to userID. Overdue here means
// not Completed with a due date in the past.
func (s *DashboardService) UserDashboard(ctx context.Context, userID string) (*Dashboard, error) {
	ctx, span := s.tracer.Start(ctx, "DashboardService.UserDashboard")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	now := s.now().UTC()
	scope := repository.TaskFilter{AssignedTo: userID}
	overdue := repository.TaskFilter{
		AssignedTo: userID,
		StatusNot:  constants.StatusCompleted,
		DueBefore:  &now,
	}

	return s.build(ctx, scope, overdue)
}

func (s *DashboardService) build(ctx context.Context, scope, overdue repository.TaskFilter) (*Dashboard, error) {
	total, err := s.tasks.Count(ctx, scope)
	if err != nil {
		return nil, err
	}
	pending, err := s.tasks.Count(ctx, scope.WithStatus(constants.StatusPending))
	if err != nil {
		return nil, err
	}
	completed, err := s.tasks.Count(ctx, scope.WithStatus(constants.StatusCompleted))
	if err != nil {
		return nil, err
	}
	overdueCount, err := s.tasks.Count(ctx, overdue)
	if err != nil {
		return nil, err
	}

	byStatus, err := s.tasks.CountByStatus(ctx, scope)
	if err != nil {
		return nil, err
	}
	byPriority, err := s.tasks.CountByPriority(ctx, scope)
	if err != nil {
		return nil, err
	}

	recent, err := s.tasks.FindRecent(ctx, scope, recentTasksLimit)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		Statistics: DashboardStatistics{
			TotalTasks:     total,
			PendingTasks:   pending,
			CompletedTasks: completed,
			OverdueTasks:   overdueCount,
		},
		Charts: DashboardCharts{
			TaskDistribution:   taskDistribution(byStatus, total),
			TaskPriorityLevels: priorityLevels(byPriority),
		},
		RecentTasks: toRecentTasks(recent),
	}, nil
}

// taskDistribution keys statuses with whitespace removed ("In Progress"
// becomes "InProgress") and always includes every status plus "All".
func taskDistribution(counts map[constants.TaskStatus]int64, total int64) map[string]int64 {
	distribution := make(map[string]int64, len(constants.TaskStatuses)+1)
	for _, status := range constants.TaskStatuses {
		key := strings.Join(strings.Fields(string(status)), "")
		distribution[key] = counts[status]
	}
	distribution["All"] = total
	return distribution
}

func priorityLevels(counts map[constants.TaskPriority]int64) map[string]int64 {
	levels := make(map[string]int64, len(constants.TaskPriorities))
	for _, priority := range constants.TaskPriorities {
		levels[string(priority)] = counts[priority]
	}
	return levels
}

func toRecentTasks(tasks []model.Task) []RecentTask {
	recent := make([]RecentTask, 0, len(tasks))
	for _, task := range tasks {
		recent = append(recent, RecentTask{
			ID:        task.ID,
			Title:     task.Title,
			Status:    task.Status,
			Priority:  task.Priority,
			DueDate:   task.DueDate,
			CreatedAt: task.CreatedAt,
		})
	}
	return recent
}
