package errors

import "net/http"

var ErrAssignedToNotArray = NewValidationError("assignedTo must be an array of user IDs")

var ErrAssignedToEmpty = NewValidationError("assignedTo must contain at least one user ID")

var ErrChecklistRequired = NewValidationError("todoChecklist must be an array")

func NewValidationError(message string) *Exception {
	return &Exception{
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}
