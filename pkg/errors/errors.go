package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"

	// Rule compilation errors
	ErrPatternCompile ErrorCode = "PATTERN_COMPILE"
	ErrTemplateParse  ErrorCode = "TEMPLATE_PARSE"
	ErrTemplateExpand ErrorCode = "TEMPLATE_EXPAND"

	// Configuration and delivery errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrWatchSetup  ErrorCode = "WATCH_SETUP"
	ErrEventStream ErrorCode = "EVENT_STREAM"
)

// LinkifyError represents a structured error with code and details
type LinkifyError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *LinkifyError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *LinkifyError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *LinkifyError) Is(target error) bool {
	var targetErr *LinkifyError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new LinkifyError with the given code and message
func New(code ErrorCode, message string) *LinkifyError {
	return &LinkifyError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new LinkifyError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *LinkifyError {
	return &LinkifyError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a LinkifyError
func Wrap(err error, code ErrorCode, message string) *LinkifyError {
	if err == nil {
		return nil
	}
	return &LinkifyError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *LinkifyError {
	if err == nil {
		return nil
	}
	return &LinkifyError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *LinkifyError) WithDetail(key string, value interface{}) *LinkifyError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var linkifyErr *LinkifyError
	if errors.As(err, &linkifyErr) {
		return linkifyErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a LinkifyError
func GetErrorCode(err error) ErrorCode {
	var linkifyErr *LinkifyError
	if errors.As(err, &linkifyErr) {
		return linkifyErr.Code
	}
	return ErrUnknown
}
