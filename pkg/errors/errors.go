package errors

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeNotFound          = "NOT_FOUND"
	CodeBadRequest        = "BAD_REQUEST"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
	CodeConflict          = "CONFLICT"
	CodeInternal          = "INTERNAL_ERROR"
	CodeTooManyRequests   = "TOO_MANY_REQUESTS"
	CodePageFetchFailed   = "PAGE_FETCH_FAILED"
	CodeProfileIncomplete = "PROFILE_INCOMPLETE"
	CodeUpstream          = "UPSTREAM_ERROR"
)

type AppError struct {
	Code    string
	Message string
	Status  int
	Details interface{}
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code string, message string, status int, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

func NotFound(resource string, err error) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound, err)
}

func BadRequest(message string, err error) *AppError {
	return New(CodeBadRequest, message, http.StatusBadRequest, err)
}

func Unauthorized(message string, err error) *AppError {
	return New(CodeUnauthorized, message, http.StatusUnauthorized, err)
}

func Forbidden(message string, err error) *AppError {
	return New(CodeForbidden, message, http.StatusForbidden, err)
}

func Conflict(message string) *AppError {
	return New(CodeConflict, message, http.StatusConflict, nil)
}

func Internal(message string, err error) *AppError {
	return New(CodeInternal, message, http.StatusInternalServerError, err)
}

func TooManyRequests(message string) *AppError {
	return New(CodeTooManyRequests, message, http.StatusTooManyRequests, nil)
}

// PageFetchFailed is surfaced to the user as a banner; pagination stops after it.
func PageFetchFailed(err error) *AppError {
	return New(CodePageFetchFailed, "Failed to load contacts", http.StatusBadGateway, err)
}

func ProfileIncomplete(missing []string) *AppError {
	return &AppError{
		Code:    CodeProfileIncomplete,
		Message: "Please complete your profile before continuing",
		Status:  http.StatusPreconditionRequired,
		Details: map[string]interface{}{"missing_fields": missing},
	}
}

// Upstream wraps a REST backend failure. message is the backend's own message when it sent one.
func Upstream(status int, message string, err error) *AppError {
	if message == "" {
		message = "Something went wrong, please try again"
	}
	if status < 400 {
		status = http.StatusBadGateway
	}
	return New(CodeUpstream, message, status, err)
}

func Is(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
