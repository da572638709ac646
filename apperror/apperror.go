// Package apperror defines a centralized system for application-specific errors.
// Services return *AppError values and handlers turn them into JSON responses
// with WriteError, so every endpoint reports failures with the same shape.
package apperror

import (
	"errors"
	"fmt"
	// `net/http` is used for HTTP status codes.
	"net/http"
)

// ErrorType is an enumeration (using `iota`) for different categories of application errors.
type ErrorType int

const (
	// UnknownError is for unspecified errors
	UnknownError ErrorType = iota
	// DatabaseError represents an error originating from the credential store
	DatabaseError
	// ConfigError represents an error related to application configuration
	ConfigError
	// AuthError represents an authentication error (bad credentials, invalid or expired token)
	AuthError
	// NotFoundError represents a resource not found error
	NotFoundError
	// ValidationError represents an input validation error
	ValidationError
	// BadRequestError represents a generic bad request
	BadRequestError
	// InternalError represents a generic internal server error
	InternalError
	// ConflictError represents a conflict, e.g., username already exists
	ConflictError
)

// String names the error type for logs.
func (t ErrorType) String() string {
	switch t {
	case DatabaseError:
		return "database"
	case ConfigError:
		return "config"
	case AuthError:
		return "auth"
	case NotFoundError:
		return "not_found"
	case ValidationError:
		return "validation"
	case BadRequestError:
		return "bad_request"
	case InternalError:
		return "internal"
	case ConflictError:
		return "conflict"
	default:
		return "unknown"
	}
}

// AppError is a custom error type for the application.
// It allows wrapping an underlying error (`Err`) for logging while only
// `Message` is ever shown to the client.
type AppError struct {
	Type    ErrorType
	Message string
	Err     error // Underlying error
}

// Error returns the string representation of the error, satisfying the `error` interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		// If there's an underlying error, include its message.
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error, so errors.Is and errors.As can see through AppError.
func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps the ErrorType to an HTTP status code.
func (e *AppError) StatusCode() int {
	switch e.Type {
	case DatabaseError:
		// The store being unreachable is a temporary condition for the client.
		return http.StatusServiceUnavailable
	case ConfigError:
		return http.StatusInternalServerError
	case AuthError:
		return http.StatusUnauthorized
	case NotFoundError:
		return http.StatusNotFound
	case ValidationError:
		return http.StatusBadRequest
	case BadRequestError:
		return http.StatusBadRequest
	case InternalError:
		return http.StatusInternalServerError
	case ConflictError:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// NewAppError is a generic constructor for AppError.
func NewAppError(errType ErrorType, message string, underlyingError error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Err:     underlyingError,
	}
}

// Constructor functions for each ErrorType.

// NewDatabaseError creates a new DatabaseError
func NewDatabaseError(message string, underlyingError error) *AppError {
	return NewAppError(DatabaseError, message, underlyingError)
}

// NewConfigError creates a new ConfigError
func NewConfigError(message string, underlyingError error) *AppError {
	return NewAppError(ConfigError, message, underlyingError)
}

// NewAuthError creates a new AuthError
func NewAuthError(message string, underlyingError error) *AppError {
	return NewAppError(AuthError, message, underlyingError)
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(message string, underlyingError error) *AppError {
	return NewAppError(NotFoundError, message, underlyingError)
}

// NewValidationError creates a new ValidationError
func NewValidationError(message string, underlyingError error) *AppError {
	return NewAppError(ValidationError, message, underlyingError)
}

// NewBadRequestError creates a new BadRequestError
func NewBadRequestError(message string, underlyingError error) *AppError {
	return NewAppError(BadRequestError, message, underlyingError)
}

// NewInternalError creates a new InternalError
func NewInternalError(message string, underlyingError error) *AppError {
	return NewAppError(InternalError, message, underlyingError)
}

// NewConflictError creates a new ConflictError
func NewConflictError(message string, underlyingError error) *AppError {
	return NewAppError(ConflictError, message, underlyingError)
}

// ErrorResponse is the standard JSON structure for error responses.
type ErrorResponse struct {
	Error string `json:"error" example:"A description of the error"`
}

// ToResponse converts an AppError to an ErrorResponse suitable for API responses.
func (e *AppError) ToResponse() ErrorResponse {
	// Only the user-facing `Message` is included in the response, not the underlying `Err` details.
	return ErrorResponse{Error: e.Message}
}

// FromError attempts to convert a generic error to an *AppError.
// Wrapped AppErrors are found as well.
func FromError(err error) (*AppError, bool) {
	if err == nil {
		return nil, false
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// Helper functions to check error types.

// IsNotFound checks if an error is a NotFound error
func IsNotFound(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == NotFoundError
}

// IsAuthError checks if an error is an AuthError (authentication problem)
func IsAuthError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == AuthError
}

// IsValidationError checks if an error is a Validation error
func IsValidationError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == ValidationError
}

// IsConflictError checks if an error is a Conflict error
func IsConflictError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == ConflictError
}

// IsDatabaseError checks if an error is a Database error
func IsDatabaseError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == DatabaseError
}
