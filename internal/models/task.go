package model

import (
	"time"

	"task-manager.com/task-manager/internal/constants"
)

type ChecklistItem struct {
	Text      string `json:"text" bson:"text"`
	Completed bool   `json:"completed" bson:"completed"`
}

type Task struct {
	ID            string                 `json:"_id"`
	Title         string                 `json:"title"`
	Description   string                 `json:"description"`
	Priority      constants.TaskPriority `json:"priority"`
	Status        constants.TaskStatus   `json:"status"`
	DueDate       *time.Time             `json:"dueDate,omitempty"`
	AssignedTo    []string               `json:"assignedTo"`
	CreatedBy     string                 `json:"createdBy"`
	TodoChecklist []ChecklistItem        `json:"todoChecklist"`
	Progress      int                    `json:"progress"`
	Attachments   []string               `json:"attachments"`
	CreatedAt     time.Time              `json:"createdAt"`
	UpdatedAt     time.Time              `json:"updatedAt"`
}

// IsAssignedTo reports whether userID is one of the task's assignees.
func (t *Task) IsAssignedTo(userID string) bool {
	for _, id := range t.AssignedTo {
		if id == userID {
			return true
		}
	}
	return false
}

// CompletedTodoCount counts checklist items marked completed.
func (t *Task) CompletedTodoCount() int {
	count := 0
	for _, item := range t.TodoChecklist {
		if item.Completed {
			count++
		}
	}
	return count
}
