package services

import (
	"task-manager.com/task-manager/internal/constants"
	model "task-manager.com/task-manager/internal/models"
)

// The reconciler keeps status, progress and the checklist of a task in
// step. It has two entry points that are intentionally not unified:
// ApplyStatus trusts the caller's status, ApplyChecklist derives status
// from the checklist.

// CanModify reports whether actor may change the status or checklist of task.
func CanModify(task *model.Task, actor model.Actor) bool {
	return actor.IsAdmin() || task.IsAssignedTo(actor.ID)
}

// ApplyStatus sets the requested status when one is given. A task that ends
// up Completed gets every checklist item ticked and progress forced to 100,
// whatever the checklist said before. Progress is never recomputed here.
func ApplyStatus(task *model.Task, requested constants.TaskStatus) {
	if requested != "" {
		task.Status = requested
	}

	if task.Status == constants.StatusCompleted {
		for i := range task.TodoChecklist {
			task.TodoChecklist[i].Completed = true
		}
		task.Progress = 100
	}
}

// ApplyChecklist replaces the checklist and derives progress and status
// from it. The previous status is always overwritten.
func ApplyChecklist(task *model.Task, checklist []model.ChecklistItem) {
	task.TodoChecklist = checklist
	task.Progress = ChecklistProgress(checklist)
	task.Status = StatusForProgress(task.Progress)
}

// ChecklistProgress is round(100 * completed / total), halves rounded up,
// and 0 for an empty checklist.
func ChecklistProgress(checklist []model.ChecklistItem) int {
	total := len(checklist)
	if total == 0 {
		return 0
	}

	completed := 0
	for _, item := range checklist {
		if item.Completed {
			completed++
		}
	}

	return (200*completed + total) / (2 * total)
}

func StatusForProgress(progress int) constants.TaskStatus {
	switch {
	case progress >= 100:
		return constants.StatusCompleted
	case progress > 0:
		return constants.StatusInProgress
	default:
		return constants.StatusPending
	}
}
