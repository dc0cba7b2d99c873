package services

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"task-manager.com/task-manager/internal/constants"
	apperrors "task-manager.com/task-manager/internal/errors"
	model "task-manager.com/task-manager/internal/models"
	repository "task-manager.com/task-manager/internal/repositories"
)

type TaskService struct {
	tasks  repository.TaskRepository
	users  repository.UserRepository
	tracer trace.Tracer
}

func NewTaskService(
	tasks repository.TaskRepository,
	users repository.UserRepository,
	tracer trace.Tracer,
) *TaskService {
	return &TaskService{
		tasks:  tasks,
		users:  users,
		tracer: tracer,
	}
}

type CreateTaskInput struct {
	Title         string
	Description   string
	Priority      constants.TaskPriority
	DueDate       *time.Time
	AssignedTo    []string
	Attachments   []string
	TodoChecklist []model.ChecklistItem
}

// UpdateTaskInput carries the fields present in a partial update. Nil means
// the field was not sent.
type UpdateTaskInput struct {
	Title         *string
	Description   *string
	Priority      *constants.TaskPriority
	DueDate       *time.Time
	AssignedTo    []string
	TodoChecklist []model.ChecklistItem
	Attachments   []string

	AssignedToSet    bool
	TodoChecklistSet bool
	AttachmentsSet   bool
}

// TaskDetails is a task whose assignees are expanded to user summaries.
type TaskDetails struct {
	model.Task
	AssignedTo []model.UserSummary `json:"assignedTo"`
}

type TaskListItem struct {
	TaskDetails
	CompletedTodoCount int `json:"completedTodoCount"`
}

type StatusSummary struct {
	All             int64 `json:"all"`
	PendingTasks    int64 `json:"pendingTasks"`
	InProgressTasks int64 `json:"inProgressTasks"`
	CompletedTasks  int64 `json:"completedTasks"`
}

type TaskList struct {
	Tasks         []TaskListItem `json:"tasks"`
	StatusSummary StatusSummary  `json:"statusSummary"`
}

// ListTasks returns the tasks visible to actor, optionally narrowed to one
// status, plus a status summary over the same scope.
func (s *TaskService) ListTasks(ctx context.Context, actor model.Actor, status constants.TaskStatus) (*TaskList, error) {
	ctx, span := s.tracer.Start(ctx, "TaskService.ListTasks")
	defer span.End()

	filter := repository.TaskFilter{Status: status}
	scope := repository.TaskFilter{}
	if !actor.IsAdmin() {
		filter.AssignedTo = actor.ID
		scope.AssignedTo = actor.ID
	}

	tasks, err := s.tasks.Find(ctx, filter)
	if err != nil {
		return nil, err
	}

	details, err := s.expand(ctx, tasks)
	if err != nil {
		return nil, err
	}

	items := make([]TaskListItem, 0, len(details))
	for i, detail := range details {
		items = append(items, TaskListItem{
			TaskDetails:        detail,
			CompletedTodoCount: tasks[i].CompletedTodoCount(),
		})
	}

	summary, err := s.statusSummary(ctx, filter, scope)
	if err != nil {
		return nil, err
	}

	return &TaskList{Tasks: items, StatusSummary: *summary}, nil
}

// statusSummary counts "all" over the role scope only. Each per-status count
// starts from the request filter and then pins its own status, so an
// incoming status filter is replaced rather than intersected.
func (s *TaskService) statusSummary(ctx context.Context, filter, scope repository.TaskFilter) (*StatusSummary, error) {
	all, err := s.tasks.Count(ctx, scope)
	if err != nil {
		return nil, err
	}

	counts := make(map[constants.TaskStatus]int64, len(constants.TaskStatuses))
	for _, status := range constants.TaskStatuses {
		count, err := s.tasks.Count(ctx, filter.WithStatus(status))
		if err != nil {
			return nil, err
		}
		counts[status] = count
	}

	return &StatusSummary{
		All:             all,
		PendingTasks:    counts[constants.StatusPending],
		InProgressTasks: counts[constants.StatusInProgress],
		CompletedTasks:  counts[constants.StatusCompleted],
	}, nil
}

func (s *TaskService) GetTask(ctx context.Context, id string) (*TaskDetails, error) {
	ctx, span := s.tracer.Start(ctx, "TaskService.GetTask")
	defer span.End()
	span.SetAttributes(attribute.String("task.id", id))

	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	details, err := s.expand(ctx, []model.Task{*task})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

func (s *TaskService) CreateTask(ctx context.Context, actor model.Actor, input CreateTaskInput) (*model.Task, error) {
	ctx, span := s.tracer.Start(ctx, "TaskService.CreateTask")
	defer span.End()

	if len(input.AssignedTo) == 0 {
		return nil, apperrors.ErrAssignedToEmpty
	}

	priority := input.Priority
	if priority == "" {
		priority = constants.PriorityMedium
	}

	task := &model.Task{
		Title:         input.Title,
		Description:   input.Description,
		Priority:      priority,
		Status:        constants.StatusPending,
		DueDate:       input.DueDate,
		AssignedTo:    input.AssignedTo,
		CreatedBy:     actor.ID,
		TodoChecklist: input.TodoChecklist,
		Progress:      0,
		Attachments:   input.Attachments,
	}
	if task.TodoChecklist == nil {
		task.TodoChecklist = []model.ChecklistItem{}
	}
	if task.Attachments == nil {
		task.Attachments = []string{}
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("task.id", task.ID))
	return task, nil
}

// UpdateTask applies a partial edit. A scalar that is sent empty keeps the
// stored value; list fields replace the stored list whenever they are sent.
// Replacing the checklist here does not touch progress or status.
func (s *TaskService) UpdateTask(ctx context.Context, id string, input UpdateTaskInput) (*model.Task, error) {
	ctx, span := s.tracer.Start(ctx, "TaskService.UpdateTask")
	defer span.End()
	span.SetAttributes(attribute.String("task.id", id))

	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil && *input.Title != "" {
		task.Title = *input.Title
	}
	if input.Description != nil && *input.Description != "" {
		task.Description = *input.Description
	}
	if input.Priority != nil && *input.Priority != "" {
		task.Priority = *input.Priority
	}
	if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.TodoChecklistSet {
		task.TodoChecklist = input.TodoChecklist
	}
	if input.AttachmentsSet {
		task.Attachments = input.Attachments
	}
	if input.AssignedToSet {
		if len(input.AssignedTo) == 0 {
			return nil, apperrors.ErrAssignedToEmpty
		}
		task.AssignedTo = input.AssignedTo
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "TaskService.DeleteTask")
	defer span.End()
	span.SetAttributes(attribute.String("task.id", id))

	return s.tasks.Delete(ctx, id)
}

// UpdateStatus is the manual status path of the reconciler. An empty
// status leaves the stored status as it is.
func (s *TaskService) UpdateStatus(
	ctx context.Context,
	actor model.Actor,
	id string,
	status constants.TaskStatus,
) (*model.Task, error) {
	ctx, span := s.tracer.Start(ctx, "TaskService.UpdateStatus")
	defer span.End()
	span.SetAttributes(attribute.String("task.id", id), attribute.String("task.status", string(status)))

	if status != "" && !status.Valid() {
		return nil, apperrors.NewValidationError("status must be one of Pending, In Progress, Completed")
	}

	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanModify(task, actor) {
		return nil, apperrors.ErrForbidden
	}

	ApplyStatus(task, status)

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateChecklist is the checklist path of the reconciler: the checklist is
// replaced and progress and status are derived from it.
func (s *TaskService) UpdateChecklist(
	ctx context.Context,
	actor model.Actor,
	id string,
	checklist []model.ChecklistItem,
) (*TaskDetails, error) {
	ctx, span := s.tracer.Start(ctx, "TaskService.UpdateChecklist")
	defer span.End()
	span.SetAttributes(attribute.String("task.id", id), attribute.Int("checklist.size", len(checklist)))

	if checklist == nil {
		return nil, apperrors.ErrChecklistRequired
	}

	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanModify(task, actor) {
		return nil, apperrors.ErrChecklistForbidden
	}

	ApplyChecklist(task, checklist)

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	return s.GetTask(ctx, id)
}

// expand resolves assignee ids to user summaries. Ids without a matching
// user are dropped.
func (s *TaskService) expand(ctx context.Context, tasks []model.Task) ([]TaskDetails, error) {
	ids := make([]string, 0)
	seen := make(map[string]struct{})
	for _, task := range tasks {
		for _, id := range task.AssignedTo {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]model.UserSummary, len(users))
	for _, user := range users {
		byID[user.ID] = user.Summary()
	}

	details := make([]TaskDetails, 0, len(tasks))
	for _, task := range tasks {
		assignees := make([]model.UserSummary, 0, len(task.AssignedTo))
		for _, id := range task.AssignedTo {
			if summary, ok := byID[id]; ok {
				assignees = append(assignees, summary)
			}
		}
		details = append(details, TaskDetails{Task: task, AssignedTo: assignees})
	}
	return details, nil
}
