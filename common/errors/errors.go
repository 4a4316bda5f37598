package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode represents application-specific error codes
type ErrorCode string

const (
	// Session errors (1xxx)
	ErrCodeUnauthorized ErrorCode = "E1001"
	ErrCodeInvalidToken ErrorCode = "E1004"
	ErrCodeAccessDenied ErrorCode = "E1005"

	// Validation errors (2xxx)
	ErrCodeValidation    ErrorCode = "E2001"
	ErrCodeInvalidInput  ErrorCode = "E2002"
	ErrCodeInvalidFormat ErrorCode = "E2004"

	// Resource errors (3xxx)
	ErrCodeNotFound            ErrorCode = "E3001"
	ErrCodePartialFetchFailure ErrorCode = "E3005"

	// Workflow errors (4xxx)
	ErrCodeInvalidState   ErrorCode = "E4002"
	ErrCodeActionFailure  ErrorCode = "E4010"
	ErrCodeActionInFlight ErrorCode = "E4011"

	// Backend errors (5xxx)
	ErrCodeTransportFailure ErrorCode = "E5001"

	// Internal errors (9xxx)
	ErrCodeInternal ErrorCode = "E9001"
)

// AppError represents an application error with context
type AppError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	HTTPStatus int                    `json:"-"`
	Cause      error                  `json:"-"`
	Fields     map[string]interface{} `json:"fields,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails adds additional details to the error
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// WithField adds a field to the error
func (e *AppError) WithField(key string, value interface{}) *AppError {
	if e.Fields == nil {
		e.Fields = make(map[string]interface{})
	}
	e.Fields[key] = value
	return e
}

// WithCause wraps an underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// ToJSON converts error to JSON response format
func (e *AppError) ToJSON() map[string]interface{} {
	result := map[string]interface{}{
		"status":  "error",
		"code":    e.Code,
		"message": e.Message,
	}
	if e.Details != "" {
		result["details"] = e.Details
	}
	if len(e.Fields) > 0 {
		result["fields"] = e.Fields
	}
	return result
}

// WriteJSON writes error as JSON response
func (e *AppError) WriteJSON(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.HTTPStatus)
	json.NewEncoder(w).Encode(e.ToJSON())
}

// ============================================================
// Error constructors
// ============================================================

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: getHTTPStatus(code),
	}
}

// Wrap wraps an existing error with AppError
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: getHTTPStatus(code),
		Cause:      err,
	}
}

// ============================================================
// Predefined error constructors
// ============================================================

// Session errors
func Unauthorized(message string) *AppError {
	return New(ErrCodeUnauthorized, message)
}

func InvalidToken() *AppError {
	return New(ErrCodeInvalidToken, "Session token is invalid")
}

func AccessDenied(action string) *AppError {
	return New(ErrCodeAccessDenied, fmt.Sprintf("You are not allowed to %s this event", action)).
		WithField("action", action)
}

// Validation errors
func InvalidInput(field, message string) *AppError {
	return New(ErrCodeInvalidInput, message).WithField("field", field)
}

func InvalidFormat(field string, value interface{}) *AppError {
	return New(ErrCodeInvalidFormat, fmt.Sprintf("%s has an invalid format", field)).
		WithField("field", field).
		WithField("value", value)
}

// Resource errors
func NotFound(resource string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource)).WithField("resource", resource)
}

// PartialFetchFailure marks a dependent resource (venue, booking, budget) that could not be loaded.
func PartialFetchFailure(resource string, status int) *AppError {
	return New(ErrCodePartialFetchFailure, fmt.Sprintf("Failed to fetch %s details", resource)).
		WithField("resource", resource).
		WithField("status", status)
}

// Workflow errors
func InvalidState(message string) *AppError {
	return New(ErrCodeInvalidState, message)
}

// ActionFailure carries the backend's response body verbatim as the message.
func ActionFailure(action string, status int, body string) *AppError {
	return New(ErrCodeActionFailure, body).
		WithField("action", action).
		WithField("status", status)
}

func ActionInFlight(action string) *AppError {
	return New(ErrCodeActionInFlight, fmt.Sprintf("%s is already in progress", action)).
		WithField("action", action)
}

// Backend errors
func TransportFailure(err error) *AppError {
	return Wrap(err, ErrCodeTransportFailure, "Unable to reach the event service")
}

// Internal errors
func Internal(message string) *AppError {
	return New(ErrCodeInternal, message)
}

// ============================================================
// Helper functions
// ============================================================

func getHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeUnauthorized, ErrCodeInvalidToken:
		return http.StatusUnauthorized
	case ErrCodeAccessDenied:
		return http.StatusForbidden
	case ErrCodeValidation, ErrCodeInvalidInput, ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeInvalidState, ErrCodeActionInFlight:
		return http.StatusConflict
	case ErrCodeActionFailure:
		return http.StatusUnprocessableEntity
	case ErrCodePartialFetchFailure, ErrCodeTransportFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// AsAppError finds the first AppError in err's chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err's chain contains an AppError with the given code
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// ToAppError converts any error to AppError
func ToAppError(err error) *AppError {
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	return Wrap(err, ErrCodeInternal, err.Error())
}
