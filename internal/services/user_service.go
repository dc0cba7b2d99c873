package services

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/trace"

	"task-manager.com/task-manager/internal/constants"
	apperrors "task-manager.com/task-manager/internal/errors"
	model "task-manager.com/task-manager/internal/models"
	repository "task-manager.com/task-manager/internal/repositories"
)

var validate = validator.New()

type UserService struct {
	users  repository.UserRepository
	tasks  repository.TaskRepository
	tracer trace.Tracer
}

func NewUserService(
	users repository.UserRepository,
	tasks repository.TaskRepository,
	tracer trace.Tracer,
) *UserService {
	return &UserService{
		users:  users,
		tasks:  tasks,
		tracer: tracer,
	}
}

type MemberWithTaskCounts struct {
	model.User
	PendingTasks    int64 `json:"pendingTasks"`
	InProgressTasks int64 `json:"inProgressTasks"`
	CompletedTasks  int64 `json:"completedTasks"`
}

type CreateUserInput struct {
	Name            string
	Email           string
	ProfileImageURL string
	Role            constants.UserRole
}

// ListMembers returns every member together with how many of their assigned
// tasks sit in each status.
func (s *UserService) ListMembers(ctx context.Context) ([]MemberWithTaskCounts, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.ListMembers")
	defer span.End()

	members, err := s.users.FindByRole(ctx, constants.RoleMember)
	if err != nil {
		return nil, err
	}

	result := make([]MemberWithTaskCounts, 0, len(members))
	for _, member := range members {
		counts, err := s.tasks.CountByStatus(ctx, repository.TaskFilter{AssignedTo: member.ID})
		if err != nil {
			return nil, err
		}
		result = append(result, MemberWithTaskCounts{
			User:            member,
			PendingTasks:    counts[constants.StatusPending],
			InProgressTasks: counts[constants.StatusInProgress],
			CompletedTasks:  counts[constants.StatusCompleted],
		})
	}
	return result, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*model.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.GetUser")
	defer span.End()

	return s.users.FindByID(ctx, id)
}

func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*model.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.CreateUser")
	defer span.End()

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name is required")
	}
	if err := validate.Var(input.Email, "required,email"); err != nil {
		return nil, apperrors.NewValidationError("email is invalid")
	}

	role := input.Role
	if role == "" {
		role = constants.RoleMember
	}
	if !role.Valid() {
		return nil, apperrors.NewValidationError("role must be admin or member")
	}

	user := &model.User{
		Name:            name,
		Email:           strings.ToLower(strings.TrimSpace(input.Email)),
		ProfileImageURL: input.ProfileImageURL,
		Role:            role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
