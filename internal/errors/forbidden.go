package errors

import "net/http"

var ErrForbidden = &Exception{
	Message:    "Not authorized",
	StatusCode: http.StatusForbidden,
}

var ErrChecklistForbidden = &Exception{
	Message:    "Not authorized to update checklist",
	StatusCode: http.StatusForbidden,
}

var ErrAdminOnly = &Exception{
	Message:    "Access denied, admin only",
	StatusCode: http.StatusForbidden,
}
