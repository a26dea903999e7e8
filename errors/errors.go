package errors

import (
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// --- Registry Error Constructors ---

// Validation creates a new AppError for a malformed name, version, or port.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeValidation, Message: message,
		HTTPStatus: http.StatusBadRequest, Retryable: false,
	}
}

// InvalidField creates a new AppError for a single malformed field.
func InvalidField(field, reason string) *AppError {
	return &AppError{
		Code: ErrCodeValidation, Message: fmt.Sprintf("Invalid %s: %s", field, reason),
		HTTPStatus: http.StatusBadRequest, Retryable: false,
		Details: map[string]any{"field": field},
	}
}

// DuplicateEntry creates a new AppError for an address+port already present
// in a cluster. The hash is the entry's display form.
func DuplicateEntry(hash string) *AppError {
	return &AppError{
		Code: ErrCodeDuplicateEntry, Message: fmt.Sprintf("Entry %s is already registered.", hash),
		HTTPStatus: http.StatusConflict, Retryable: false,
		Details: map[string]any{"entry": hash},
	}
}

// ClusterNotFound creates a new AppError for an absent cluster.
func ClusterNotFound(key string) *AppError {
	return &AppError{
		Code: ErrCodeClusterNotFound, Message: fmt.Sprintf("No cluster found for %s.", key),
		HTTPStatus: http.StatusNotFound, Retryable: false,
		Details: map[string]any{"cluster": key},
	}
}

// RegistryEmpty creates a new AppError for a resolve against an empty registry.
func RegistryEmpty() *AppError {
	return &AppError{
		Code: ErrCodeRegistryEmpty, Message: "The registry has no registered services.",
		HTTPStatus: http.StatusNotFound, Retryable: false,
	}
}

// EntryNotFound creates a new AppError for an entry absent within a cluster.
func EntryNotFound(hash string) *AppError {
	return &AppError{
		Code: ErrCodeEntryNotFound, Message: fmt.Sprintf("Entry %s is not registered.", hash),
		HTTPStatus: http.StatusNotFound, Retryable: false,
		Details: map[string]any{"entry": hash},
	}
}

// EmptyCluster creates a new AppError for a selection from an empty cluster.
// This is defensive: empty clusters are removed the moment they drain.
func EmptyCluster(key string) *AppError {
	return &AppError{
		Code: ErrCodeEmptyCluster, Message: fmt.Sprintf("Cluster %s has no entries.", key),
		HTTPStatus: http.StatusInternalServerError, Retryable: true,
		Details: map[string]any{"cluster": key},
	}
}

// Internal creates a new AppError for an unexpected internal error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.",
		HTTPStatus: http.StatusInternalServerError, Retryable: false, Cause: cause,
	}
}
