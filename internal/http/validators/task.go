package validators

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"task-manager.com/task-manager/internal/constants"
	dto "task-manager.com/task-manager/internal/data_models"
	apperrors "task-manager.com/task-manager/internal/errors"
	model "task-manager.com/task-manager/internal/models"
	"task-manager.com/task-manager/internal/services"
)

const dateOnly = "2006-01-02"

// ParseAssignedTo accepts only a JSON array of ids. A missing field is
// reported as not being an array.
func ParseAssignedTo(raw json.RawMessage) ([]string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, apperrors.ErrAssignedToNotArray
	}

	var ids []string
	if err := json.Unmarshal(trimmed, &ids); err != nil {
		return nil, apperrors.ErrAssignedToNotArray
	}
	return ids, nil
}

// ParseDueDate accepts RFC 3339 timestamps and plain dates. An empty value
// means no due date.
func ParseDueDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	for _, layout := range []string{time.RFC3339Nano, dateOnly} {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, apperrors.NewValidationError("dueDate must be a valid date")
}

func ParsePriority(value string) (constants.TaskPriority, error) {
	priority := constants.TaskPriority(value)
	if value != "" && !priority.Valid() {
		return "", apperrors.NewValidationError("priority must be one of Low, Medium, High")
	}
	return priority, nil
}

func ParseStatus(value string) (constants.TaskStatus, error) {
	status := constants.TaskStatus(value)
	if value != "" && !status.Valid() {
		return "", apperrors.NewValidationError("status must be one of Pending, In Progress, Completed")
	}
	return status, nil
}

func CreateTaskInput(req *dto.CreateTaskRequest) (services.CreateTaskInput, error) {
	var input services.CreateTaskInput

	assignedTo, err := ParseAssignedTo(req.AssignedTo)
	if err != nil {
		return input, err
	}
	priority, err := ParsePriority(req.Priority)
	if err != nil {
		return input, err
	}
	dueDate, err := ParseDueDate(req.DueDate)
	if err != nil {
		return input, err
	}

	return services.CreateTaskInput{
		Title:         strings.TrimSpace(req.Title),
		Description:   req.Description,
		Priority:      priority,
		DueDate:       dueDate,
		AssignedTo:    assignedTo,
		Attachments:   req.Attachments,
		TodoChecklist: req.TodoChecklist,
	}, nil
}

func UpdateTaskInput(req *dto.UpdateTaskRequest) (services.UpdateTaskInput, error) {
	input := services.UpdateTaskInput{
		Title:       req.Title.Ptr(),
		Description: req.Description.Ptr(),
	}

	if req.Priority.Set {
		priority, err := ParsePriority(req.Priority.Value)
		if err != nil {
			return input, err
		}
		input.Priority = &priority
	}

	if req.DueDate.Set {
		dueDate, err := ParseDueDate(req.DueDate.Value)
		if err != nil {
			return input, err
		}
		input.DueDate = dueDate
	}

	if len(req.AssignedTo) > 0 && !bytes.Equal(bytes.TrimSpace(req.AssignedTo), []byte("null")) {
		assignedTo, err := ParseAssignedTo(req.AssignedTo)
		if err != nil {
			return input, err
		}
		input.AssignedTo = assignedTo
		input.AssignedToSet = true
	}

	if req.TodoChecklist.Set {
		input.TodoChecklist = req.TodoChecklist.Value
		if input.TodoChecklist == nil {
			input.TodoChecklist = []model.ChecklistItem{}
		}
		input.TodoChecklistSet = true
	}

	if req.Attachments.Set {
		input.Attachments = req.Attachments.Value
		if input.Attachments == nil {
			input.Attachments = []string{}
		}
		input.AttachmentsSet = true
	}

	return input, nil
}
