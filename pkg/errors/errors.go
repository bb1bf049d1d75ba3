// Package errors provides structured application errors that carry a stable
// code and map onto HTTP status codes.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorCode represents an error code
type ErrorCode string

const (
	// Client errors (4xx)
	CodeBadRequest       ErrorCode = "BAD_REQUEST"
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeConflict         ErrorCode = "CONFLICT"
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeTooManyRequests  ErrorCode = "TOO_MANY_REQUESTS"

	// Server errors (5xx)
	CodeInternal             ErrorCode = "INTERNAL_ERROR"
	CodeDatabaseError        ErrorCode = "DATABASE_ERROR"
	CodeExternalServiceError ErrorCode = "EXTERNAL_SERVICE_ERROR"

	// Business logic errors
	CodeRecipeNotFound       ErrorCode = "RECIPE_NOT_FOUND"
	CodePlanNotFound         ErrorCode = "PLAN_NOT_FOUND"
	CodeTemplateNotFound     ErrorCode = "TEMPLATE_NOT_FOUND"
	CodeShoppingListNotFound ErrorCode = "SHOPPING_LIST_NOT_FOUND"
	CodeClientNotFound       ErrorCode = "CLIENT_NOT_FOUND"
	CodeNoProgressData       ErrorCode = "NO_PROGRESS_DATA"
)

// AppError represents an application error with structured information
type AppError struct {
	Code     ErrorCode              `json:"code"`
	Message  string                 `json:"message"`
	Details  string                 `json:"details,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	Cause    error                  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// StatusCode returns the appropriate HTTP status code
func (e *AppError) StatusCode() int {
	switch e.Code {
	case CodeBadRequest, CodeValidationFailed:
		return http.StatusBadRequest
	case CodeNotFound, CodeRecipeNotFound, CodePlanNotFound, CodeTemplateNotFound,
		CodeShoppingListNotFound, CodeClientNotFound, CodeNoProgressData:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	case CodeExternalServiceError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// WithMetadata adds metadata to the error
func (e *AppError) WithMetadata(key string, value interface{}) *AppError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// WithCause adds a cause error
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message, details string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// NewBadRequestError creates a bad request error
func NewBadRequestError(message string) *AppError {
	return NewAppError(CodeBadRequest, message, "")
}

// NewValidationError creates a validation error
func NewValidationError(details string) *AppError {
	return NewAppError(CodeValidationFailed, "Validation failed", details)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	message := "Resource not found"
	if resource != "" {
		message = fmt.Sprintf("%s not found", resource)
	}
	return NewAppError(CodeNotFound, message, "")
}

// NewInternalError creates an internal server error
func NewInternalError(message string) *AppError {
	if message == "" {
		message = "An unexpected error occurred"
	}
	return NewAppError(CodeInternal, message, "")
}

// NewDatabaseError creates a database error
func NewDatabaseError(operation string, cause error) *AppError {
	return NewAppError(
		CodeDatabaseError,
		"Database operation failed",
		fmt.Sprintf("Failed to %s", operation),
	).WithCause(cause)
}

// NewExternalServiceError creates an external service error
func NewExternalServiceError(service string, cause error) *AppError {
	return NewAppError(
		CodeExternalServiceError,
		"External service error",
		fmt.Sprintf("Failed to communicate with %s", service),
	).WithCause(cause)
}

// NewPlanNotFoundError creates a plan not found error
func NewPlanNotFoundError(planID string) *AppError {
	return NewAppError(
		CodePlanNotFound,
		"Plan not found",
		fmt.Sprintf("Plan with ID %s does not exist", planID),
	).WithMetadata("plan_id", planID)
}

// NewTemplateNotFoundError creates a template not found error
func NewTemplateNotFoundError(templateID string) *AppError {
	return NewAppError(
		CodeTemplateNotFound,
		"Template not found",
		fmt.Sprintf("Template with ID %s does not exist", templateID),
	).WithMetadata("template_id", templateID)
}

// NewShoppingListNotFoundError creates a shopping list not found error
func NewShoppingListNotFoundError(listID string) *AppError {
	return NewAppError(
		CodeShoppingListNotFound,
		"Shopping list not found",
		fmt.Sprintf("Shopping list with ID %s does not exist", listID),
	).WithMetadata("shopping_list_id", listID)
}

// NewClientNotFoundError creates a client not found error
func NewClientNotFoundError(clientID string) *AppError {
	return NewAppError(
		CodeClientNotFound,
		"Client not found",
		fmt.Sprintf("Client with ID %s does not exist", clientID),
	).WithMetadata("client_id", clientID)
}

// NewNoProgressDataError reports an analysis request over an empty history.
// It is distinct from a zero-valued analysis.
func NewNoProgressDataError(clientID string) *AppError {
	return NewAppError(
		CodeNoProgressData,
		"No progress data available",
		fmt.Sprintf("Client %s has no recorded progress entries", clientID),
	).WithMetadata("client_id", clientID)
}

// Wrap wraps an error as an internal error if it's not already an AppError
func Wrap(err error, message string) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}

	return NewInternalError(message).WithCause(err)
}

// Is checks if an error is of a specific error code
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error ErrorDetails `json:"error"`
}

// ErrorDetails represents the error details in API responses
type ErrorDetails struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	Timestamp string                 `json:"timestamp"`
}

// ToErrorResponse converts an AppError to an API error response
func ToErrorResponse(err *AppError, requestID string) ErrorResponse {
	return ErrorResponse{
		Error: ErrorDetails{
			Code:      err.Code,
			Message:   err.Message,
			Details:   err.Details,
			Metadata:  err.Metadata,
			RequestID: requestID,
			Timestamp: fmt.Sprintf("%d", time.Now().Unix()),
		},
	}
}
