package errors

import (
	"net/http"

	"github.com/go-chi/render"
)

// APIError represents a structured API error response.
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render.
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// New creates a new APIError with the given parameters.
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// NewWithDetails creates a new APIError with additional details.
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

// Predefined error types for common scenarios.
var (
	ErrInvalidRequest   = New(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format")
	ErrValidationFailed = New(http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed")
	ErrMissingParameter = New(http.StatusBadRequest, "MISSING_PARAMETER", "Required parameter is missing")

	ErrCountryNotFound = New(http.StatusNotFound, "COUNTRY_NOT_FOUND", "No feature data for the requested country")

	ErrRateLimitExceeded = New(http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Rate limit exceeded")

	ErrInternalServer = New(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error")
	ErrArtifactFailed = New(http.StatusInternalServerError, "ARTIFACT_ERROR", "Model artifact could not be used")
)

// FromDomain maps a pipeline error onto the API taxonomy.
func FromDomain(err error) *APIError {
	switch {
	case IsNotFound(err):
		return NewWithDetails(http.StatusNotFound, "COUNTRY_NOT_FOUND", err.Error(), nil)
	case IsSchemaMismatch(err):
		return NewWithDetails(http.StatusInternalServerError, "SCHEMA_MISMATCH", err.Error(), nil)
	case IsLoadError(err):
		return NewWithDetails(http.StatusInternalServerError, "LOAD_ERROR", err.Error(), nil)
	default:
		return ErrInternalServer
	}
}
