package errors

import "net/http"

var ErrMissingIdentity = &Exception{
	Message:    "Not authorized, no user identity",
	StatusCode: http.StatusUnauthorized,
}

var ErrUnknownIdentity = &Exception{
	Message:    "Not authorized, user not found",
	StatusCode: http.StatusUnauthorized,
}
