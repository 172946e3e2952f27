package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"chantier/domain/core"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    domainCode(err),
		Message: message,
		Cause:   err,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetCode returns the code of the outermost AppError in the chain. Bare
// domain errors are classified by their sentinel; anything else is "UNKNOWN".
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	if code := domainCode(err); code != CodeInternalError {
		return code
	}
	return "UNKNOWN"
}

func domainCode(err error) string {
	switch {
	case core.IsDecodeError(err):
		return CodeDecodeError
	case core.IsNotFoundError(err):
		return CodeNotFound
	case core.IsValidationError(err):
		return CodeValidationError
	}
	return CodeInternalError
}

// HTTPStatus maps an error to the response status the API reports
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case CodeDecodeError:
		return http.StatusUnprocessableEntity
	case CodeUnsupportedFormat:
		return http.StatusUnsupportedMediaType
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidInput, CodeValidationError:
		return http.StatusBadRequest
	case CodePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}

// Predefined error codes
const (
	CodeConfigInvalid     = "CONFIG_INVALID"
	CodeDatabaseError     = "DATABASE_ERROR"
	CodeValidationError   = "VALIDATION_ERROR"
	CodeNotFound          = "NOT_FOUND"
	CodeInternalError     = "INTERNAL_ERROR"
	CodeInvalidInput      = "INVALID_INPUT"
	CodeDecodeError       = "DECODE_ERROR"
	CodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	CodePayloadTooLarge   = "PAYLOAD_TOO_LARGE"
)

// Common error constructors
func ConfigInvalid(message string, cause error) *AppError {
	return newWithCause(CodeConfigInvalid, message, cause)
}

func DatabaseError(message string, cause error) *AppError {
	return newWithCause(CodeDatabaseError, message, cause)
}

func ValidationError(message string, cause error) *AppError {
	return newWithCause(CodeValidationError, message, cause)
}

func NotFound(resource string, cause error) *AppError {
	return newWithCause(CodeNotFound, fmt.Sprintf("%s not found", resource), cause)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

func UnsupportedFormat(message string) *AppError {
	return New(CodeUnsupportedFormat, message)
}

func PayloadTooLarge(message string) *AppError {
	return New(CodePayloadTooLarge, message)
}

func newWithCause(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}
