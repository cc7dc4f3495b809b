package model

import "fmt"

// Standard error codes.
const (
	ErrBadRequest         = "BAD_REQUEST"
	ErrAuth               = "AUTH_ERROR"
	ErrForbidden          = "FORBIDDEN"
	ErrNotFound           = "NOT_FOUND"
	ErrValidationError    = "VALIDATION_ERROR"
	ErrInternalError      = "INTERNAL_ERROR"
	ErrBackendUnavailable = "BACKEND_UNAVAILABLE"
	ErrBackendTimeout     = "BACKEND_TIMEOUT"
)

// Robot-specific error codes.
const (
	ErrRobotDisconnected = "ROBOT_DISCONNECTED"
	ErrMissingMapping    = "MISSING_MAPPING"
)

// ErrorEnvelope is the standard error response envelope returned by the
// console. It implements the error interface.
type ErrorEnvelope struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details []FieldError `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *ErrorEnvelope) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// FieldError describes a field-level validation error.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewBadRequestError returns a BAD_REQUEST error.
func NewBadRequestError(msg string) *ErrorEnvelope {
	return &ErrorEnvelope{Code: ErrBadRequest, Message: msg}
}

// NewAuthError returns an AUTH_ERROR for bad credentials or an
// expired/invalid token.
func NewAuthError(msg string) *ErrorEnvelope {
	return &ErrorEnvelope{Code: ErrAuth, Message: msg}
}

// NewForbiddenError returns a FORBIDDEN error.
func NewForbiddenError(msg string) *ErrorEnvelope {
	return &ErrorEnvelope{Code: ErrForbidden, Message: msg}
}

// NewNotFoundError returns a NOT_FOUND error.
func NewNotFoundError(msg string) *ErrorEnvelope {
	return &ErrorEnvelope{Code: ErrNotFound, Message: msg}
}

// NewValidationError returns a VALIDATION_ERROR with field-level details.
func NewValidationError(details []FieldError) *ErrorEnvelope {
	return &ErrorEnvelope{
		Code:    ErrValidationError,
		Message: "One or more fields are invalid",
		Details: details,
	}
}

// NewInternalError returns an INTERNAL_ERROR.
func NewInternalError() *ErrorEnvelope {
	return &ErrorEnvelope{
		Code:    ErrInternalError,
		Message: "An unexpected error occurred",
	}
}

// NewBackendUnavailableError returns a BACKEND_UNAVAILABLE error.
func NewBackendUnavailableError() *ErrorEnvelope {
	return &ErrorEnvelope{
		Code:    ErrBackendUnavailable,
		Message: "The robot backend is temporarily unavailable",
	}
}

// NewBackendTimeoutError returns a BACKEND_TIMEOUT error.
func NewBackendTimeoutError() *ErrorEnvelope {
	return &ErrorEnvelope{
		Code:    ErrBackendTimeout,
		Message: "The robot backend did not respond in time",
	}
}

// NewRobotDisconnectedError is returned when a command is issued while the
// robot is not connected. No backend call is made in that case.
func NewRobotDisconnectedError() *ErrorEnvelope {
	return &ErrorEnvelope{
		Code:    ErrRobotDisconnected,
		Message: "Robot tidak terhubung! Pastikan robot sudah terhubung.",
	}
}

// NewMissingMappingError is returned when sowing is started in automatic
// mode without a selected mapping.
func NewMissingMappingError() *ErrorEnvelope {
	return &ErrorEnvelope{
		Code:    ErrMissingMapping,
		Message: "Silakan pilih mapping terlebih dahulu sebelum memulai penaburan!",
	}
}
