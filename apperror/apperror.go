package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel categories. Handlers map them to HTTP statuses via ToHTTPStatus;
// callers branch with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrStorage      = errors.New("storage failure")
)

// AppError carries a user-facing message on top of a sentinel category.
type AppError struct {
	Kind    error
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind.Error(), e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Kind
}

func New(kind error, message string, cause error) *AppError {
	return &AppError{Kind: kind, Message: message, Cause: cause}
}

func NewValidation(message string) *AppError {
	return New(ErrValidation, message, nil)
}

func NewNotFound(resource string) *AppError {
	return New(ErrNotFound, resource+" not found", nil)
}

func NewUnauthorized(message string) *AppError {
	return New(ErrUnauthorized, message, nil)
}

func NewStorage(message string, cause error) *AppError {
	return New(ErrStorage, message, cause)
}

// UserMessage returns the message safe to echo back to the client. Storage
// causes stay in logs only.
func UserMessage(err error) string {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "internal server error"
}

func ToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrStorage):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
