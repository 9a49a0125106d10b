package common

import (
	"errors"
	"fmt"
	"net/http"

	"rentledger/pkg/logger"

	"github.com/sirupsen/logrus"
)

// ErrorKind classifies every failure an entry point can return.
type ErrorKind string

const (
	KindUnauthenticated         ErrorKind = "UNAUTHENTICATED"
	KindOrgResolutionFailed     ErrorKind = "ORG_RESOLUTION_FAILED"
	KindInsufficientPermissions ErrorKind = "INSUFFICIENT_PERMISSIONS"
	KindValidation              ErrorKind = "VALIDATION_ERROR"
	KindInvalidDateRange        ErrorKind = "INVALID_DATE_RANGE"
	KindNotFound                ErrorKind = "NOT_FOUND"
	KindStorage                 ErrorKind = "STORAGE_ERROR"
)

// HTTPStatus maps the kind onto a response status code.
func (k ErrorKind) HTTPStatus() int {
	switch k {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindOrgResolutionFailed, KindInsufficientPermissions:
		return http.StatusForbidden
	case KindValidation, KindInvalidDateRange:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// AppError carries a safe, user-facing message plus the underlying cause.
// Only Message ever leaves the process.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewUnauthenticatedError() *AppError {
	return &AppError{Kind: KindUnauthenticated, Message: "Not authenticated"}
}

func NewOrgResolutionError(err error) *AppError {
	return &AppError{Kind: KindOrgResolutionFailed, Message: "Organization not found or access denied", Err: err}
}

func NewPermissionError(message string) *AppError {
	return &AppError{Kind: KindInsufficientPermissions, Message: message}
}

func NewValidationError(message string) *AppError {
	return &AppError{Kind: KindValidation, Message: message}
}

func NewInvalidDateRangeError(message string) *AppError {
	return &AppError{Kind: KindInvalidDateRange, Message: message}
}

func NewNotFoundError(resource string) *AppError {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf("%s not found", resource)}
}

// NewStorageError logs the full cause and returns an error whose message
// names only the failed operation.
func NewStorageError(operation string, err error) *AppError {
	logger.Log.WithFields(logrus.Fields{
		"operation": operation,
		"error":     err,
	}).Error("storage operation failed")
	return &AppError{Kind: KindStorage, Message: fmt.Sprintf("Failed to %s", operation), Err: err}
}

// KindOf reports the kind of err, treating foreign errors as storage failures.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindStorage
}

// PublicMessage returns the message safe to show to a caller.
func PublicMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "An unexpected error occurred"
}
