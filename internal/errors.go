package internal

import (
	"fmt"
	"net/http"
)

// FieldError describes one rejected request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// AppError is an error that carries the HTTP status it should be reported with.
type AppError struct {
	Status  int          `json:"status"`
	Message string       `json:"message"`
	Details []FieldError `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewAppError(status int, msg string) *AppError {
	return &AppError{Status: status, Message: msg}
}

func BadRequest(msg string) *AppError {
	return NewAppError(http.StatusBadRequest, msg)
}

func Unauthorized(msg string) *AppError {
	if msg == "" {
		msg = "Unauthorized"
	}
	return NewAppError(http.StatusUnauthorized, msg)
}

func Forbidden(msg string) *AppError {
	if msg == "" {
		msg = "Forbidden"
	}
	return NewAppError(http.StatusForbidden, msg)
}

// NotFound builds the "<resource> not found" error.
func NotFound(resource string) *AppError {
	return NewAppError(http.StatusNotFound, resource+" not found")
}

func Conflict(msg string) *AppError {
	return NewAppError(http.StatusConflict, msg)
}

func Internal(msg string) *AppError {
	return NewAppError(http.StatusInternalServerError, msg)
}
