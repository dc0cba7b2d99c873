package dto

import (
	"encoding/json"

	model "task-manager.com/task-manager/internal/models"
)

type CreateTaskRequest struct {
	Title         string                `json:"title" validate:"required,max=200"`
	Description   string                `json:"description" validate:"max=5000"`
	Priority      string                `json:"priority" validate:"omitempty,oneof=Low Medium High"`
	DueDate       string                `json:"dueDate"`
	AssignedTo    json.RawMessage       `json:"assignedTo"`
	Attachments   []string              `json:"attachments" validate:"dive,max=2048"`
	TodoChecklist []model.ChecklistItem `json:"todoChecklist" validate:"dive"`
}

type UpdateTaskRequest struct {
	Title         Optional[string]                `json:"title"`
	Description   Optional[string]                `json:"description"`
	Priority      Optional[string]                `json:"priority"`
	DueDate       Optional[string]                `json:"dueDate"`
	AssignedTo    json.RawMessage                 `json:"assignedTo"`
	Attachments   Optional[[]string]              `json:"attachments"`
	TodoChecklist Optional[[]model.ChecklistItem] `json:"todoChecklist"`
}

type UpdateTaskStatusRequest struct {
	Status string `json:"status"`
}

type UpdateTaskChecklistRequest struct {
	TodoChecklist []model.ChecklistItem `json:"todoChecklist"`
}
