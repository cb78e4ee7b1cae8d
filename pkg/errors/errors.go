package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// Sync pipeline errors
	ErrorTypeConfigLoad ErrorType = "CONFIG_LOAD"
	ErrorTypeConnection ErrorType = "CONNECTION"
	ErrorTypeTransform  ErrorType = "TRANSFORM"
	ErrorTypeUpsert     ErrorType = "UPSERT"

	// Generic errors
	ErrorTypeValidation ErrorType = "VALIDATION"
	ErrorTypeInternal   ErrorType = "INTERNAL"
	ErrorTypeExternal   ErrorType = "EXTERNAL"
)

// AppError represents an application-specific error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	StackTrace string                 `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCode adds an error code
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// WithDetail adds a single detail, creating the map if needed
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithCause wraps an underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// captureStackTrace captures the current stack trace
func captureStackTrace() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var sb strings.Builder
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&sb, "%s:%d %s\n", frame.File, frame.Line, frame.Function)
		if !more {
			break
		}
	}
	return sb.String()
}

func newError(t ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:       t,
		Message:    message,
		Cause:      cause,
		StackTrace: captureStackTrace(),
	}
}

// NewConfigLoadError creates an error for an unreachable or malformed configuration source
func NewConfigLoadError(message string, err error) *AppError {
	return newError(ErrorTypeConfigLoad, message, err)
}

// NewConnectionError creates an error for a database that could not be reached or authenticated against
func NewConnectionError(message string, err error) *AppError {
	return newError(ErrorTypeConnection, message, err)
}

// NewTransformError creates an error for resource data that cannot be turned into a draft
func NewTransformError(message string) *AppError {
	return newError(ErrorTypeTransform, message, nil)
}

// NewUpsertError creates an error for a failed draft write
func NewUpsertError(operation string, err error) *AppError {
	return newError(ErrorTypeUpsert, fmt.Sprintf("database operation '%s' failed", operation), err)
}

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return newError(ErrorTypeValidation, message, nil)
}

// NewInternalError creates an internal error
func NewInternalError(message string) *AppError {
	return newError(ErrorTypeInternal, message, nil)
}

// NewExternalError creates an external service error
func NewExternalError(service string, err error) *AppError {
	return newError(ErrorTypeExternal, fmt.Sprintf("external service '%s' error", service), err)
}

// Helper functions

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts AppError from an error chain
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsType checks if an error is of a specific type
func IsType(err error, errType ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == errType
}

// IsConfigLoad checks if an error is a configuration load error
func IsConfigLoad(err error) bool {
	return IsType(err, ErrorTypeConfigLoad)
}

// IsConnection checks if an error is a connection error
func IsConnection(err error) bool {
	return IsType(err, ErrorTypeConnection)
}

// IsTransform checks if an error is a transform error
func IsTransform(err error) bool {
	return IsType(err, ErrorTypeTransform)
}

// IsUpsert checks if an error is an upsert error
func IsUpsert(err error) bool {
	return IsType(err, ErrorTypeUpsert)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return IsType(err, ErrorTypeValidation)
}

// TypeOf returns the error type, or INTERNAL for errors outside the AppError family
func TypeOf(err error) ErrorType {
	if appErr := GetAppError(err); appErr != nil {
		return appErr.Type
	}
	return ErrorTypeInternal
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	// If it's already an AppError, add context to message
	if appErr := GetAppError(err); appErr != nil {
		appErr.Message = fmt.Sprintf("%s: %s", message, appErr.Message)
		return appErr
	}

	// Otherwise create a new internal error
	return NewInternalError(message).WithCause(err)
}

// Wrapf wraps an error with formatted message
func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}
