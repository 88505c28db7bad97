package errors

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is comparisons. Only Type and Code take part in the match.
var (
	ErrNoteRequired  = &AppError{Type: ErrorTypeValidation, Code: "NOTE_REQUIRED"}
	ErrReadOnlyCell  = &AppError{Type: ErrorTypePermission, Code: "READ_ONLY_CELL"}
	ErrPromptPending = &AppError{Type: ErrorTypeConflict, Code: "NOTE_PROMPT_PENDING"}
	ErrNoPrompt      = &AppError{Type: ErrorTypeConflict, Code: "NO_NOTE_PROMPT"}
)

// NewValidationError creates a new validation error
func NewValidationError(message string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
		Code:    "VALIDATION_FAILED",
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewNoteRequiredError reports an attempt to leave positive hours without a note.
func NewNoteRequiredError(projectID int64, date string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: "a note is required when hours are logged",
		Code:    "NOTE_REQUIRED",
		Context: map[string]interface{}{
			"project_id": projectID,
			"date":       date,
		},
	}
}

// NewReadOnlyCellError reports an edit on a cell outside the project's active window.
func NewReadOnlyCellError(projectID int64, date string) *AppError {
	return &AppError{
		Type:    ErrorTypePermission,
		Message: fmt.Sprintf("project %d does not accept hours on %s", projectID, date),
		Code:    "READ_ONLY_CELL",
		Context: map[string]interface{}{
			"project_id": projectID,
			"date":       date,
		},
	}
}

// NewPromptPendingError reports an edit attempted while a note prompt is open.
func NewPromptPendingError(projectID int64, date string) *AppError {
	return &AppError{
		Type:    ErrorTypeConflict,
		Message: "finish or cancel the open note before editing another cell",
		Code:    "NOTE_PROMPT_PENDING",
		Context: map[string]interface{}{
			"project_id": projectID,
			"date":       date,
		},
	}
}

// NewNoPromptError reports a confirm or cancel with no note prompt open.
func NewNoPromptError(operation string) *AppError {
	return &AppError{
		Type:    ErrorTypeConflict,
		Message: fmt.Sprintf("no note prompt is open to %s", operation),
		Code:    "NO_NOTE_PROMPT",
		Context: map[string]interface{}{
			"operation": operation,
		},
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string, identifier string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, identifier),
		Code:    "NOT_FOUND",
		Context: map[string]interface{}{
			"resource":   resource,
			"identifier": identifier,
		},
	}
}

// NewDatabaseError creates a new database error
func NewDatabaseError(operation string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeDatabase,
		Message: fmt.Sprintf("database operation failed: %s", operation),
		Code:    "DATABASE_ERROR",
		Cause:   cause,
		Context: map[string]interface{}{
			"operation": operation,
		},
	}
}

// NewServiceError wraps a failed call to the remote hours service. status is
// the HTTP status code, or 0 when no response was received.
func NewServiceError(operation string, status int, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeService,
		Message: fmt.Sprintf("hours service request failed: %s", operation),
		Code:    "SERVICE_ERROR",
		Cause:   cause,
		Context: map[string]interface{}{
			"operation": operation,
			"status":    status,
		},
	}
}

// NewInvalidInputError creates a new invalid input error
func NewInvalidInputError(field string, value interface{}, reason string) *AppError {
	return &AppError{
		Type:    ErrorTypeInvalidInput,
		Message: fmt.Sprintf("invalid input for %s: %s", field, reason),
		Code:    "INVALID_INPUT",
		Context: map[string]interface{}{
			"field":  field,
			"value":  value,
			"reason": reason,
		},
	}
}

// NewTimeoutError creates a new timeout error
func NewTimeoutError(operation string, timeout interface{}) *AppError {
	return &AppError{
		Type:    ErrorTypeTimeout,
		Message: fmt.Sprintf("operation timed out: %s", operation),
		Code:    "TIMEOUT",
		Context: map[string]interface{}{
			"operation": operation,
			"timeout":   timeout,
		},
	}
}

// NewPermissionError creates a new permission error
func NewPermissionError(operation string, resource string) *AppError {
	return &AppError{
		Type:    ErrorTypePermission,
		Message: fmt.Sprintf("permission denied for %s on %s", operation, resource),
		Code:    "PERMISSION_DENIED",
		Context: map[string]interface{}{
			"operation": operation,
			"resource":  resource,
		},
	}
}

// WrapError wraps an existing error with additional context
func WrapError(err error, errorType ErrorType, message string) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
		Code:    errorType.String(),
		Cause:   err,
		Context: make(map[string]interface{}),
	}
}

// IsAppError checks if the error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsErrorType checks if the error is of the specified type
func IsErrorType(err error, errorType ErrorType) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.IsType(errorType)
	}
	return false
}

// GetUserMessage returns a user-friendly error message
func GetUserMessage(err error) string {
	if appErr, ok := AsAppError(err); ok {
		switch appErr.Type {
		case ErrorTypeValidation, ErrorTypeNotFound, ErrorTypeInvalidInput,
			ErrorTypePermission, ErrorTypeConflict:
			return appErr.Message
		case ErrorTypeDatabase:
			return "A database error occurred. Please try again."
		case ErrorTypeTimeout:
			return "The operation timed out. Please try again."
		case ErrorTypeService:
			if status, ok := appErr.GetContext("status"); ok && status != 0 {
				return fmt.Sprintf("The hours service rejected the request (HTTP %v).", status)
			}
			return "The hours service could not be reached. Please try again."
		default:
			return "An unexpected error occurred. Please try again."
		}
	}
	return err.Error()
}

// GetErrorCode returns the error code for the error
func GetErrorCode(err error) string {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return "UNKNOWN_ERROR"
}

// ShouldLogError determines if an error should be logged based on its type
func ShouldLogError(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		switch appErr.Type {
		case ErrorTypeValidation, ErrorTypeNotFound, ErrorTypeInvalidInput, ErrorTypeConflict:
			return false // user errors
		default:
			return true
		}
	}
	return true
}
