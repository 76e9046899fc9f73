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
	ErrUnknown        ErrorCode = "UNKNOWN"
	ErrInternal       ErrorCode = "INTERNAL"
	ErrInvalidInput   ErrorCode = "INVALID_INPUT"
	ErrUsage          ErrorCode = "USAGE"
	ErrNotFound       ErrorCode = "NOT_FOUND"
	ErrAlreadyExists  ErrorCode = "ALREADY_EXISTS"
	ErrNotImplemented ErrorCode = "NOT_IMPLEMENTED"

	// Configuration errors
	ErrConfigLoad     ErrorCode = "CONFIG_LOAD"
	ErrConfigParse    ErrorCode = "CONFIG_PARSE"
	ErrConfigNotFound ErrorCode = "CONFIG_NOT_FOUND"

	// Registry and rendering errors
	ErrInvalidRoot ErrorCode = "INVALID_ROOT"
	ErrRender      ErrorCode = "RENDER"

	// Merge errors
	ErrMergeToolMissing ErrorCode = "MERGE_TOOL_MISSING"
	ErrMergeFailed      ErrorCode = "MERGE_FAILED"
	ErrLockAcquire      ErrorCode = "LOCK_ACQUIRE"

	// Daemon and dispatch errors
	ErrDaemonStart  ErrorCode = "DAEMON_START"
	ErrDaemonSignal ErrorCode = "DAEMON_SIGNAL"
	ErrDispatch     ErrorCode = "DISPATCH"

	// Box errors
	ErrManifestInvalid  ErrorCode = "MANIFEST_INVALID"
	ErrFormulaNotFound  ErrorCode = "FORMULA_NOT_FOUND"
	ErrFormulaArguments ErrorCode = "FORMULA_ARGUMENTS"

	// FileSystem errors
	ErrFileAccess ErrorCode = "FILE_ACCESS"
	ErrFileWrite  ErrorCode = "FILE_WRITE"
	ErrDirCreate  ErrorCode = "DIR_CREATE"
)

// SaltboxError represents a structured error with code and details
type SaltboxError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *SaltboxError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *SaltboxError) Unwrap() error {
	return e.Wrapped
}

// Is matches any SaltboxError carrying the same code
func (e *SaltboxError) Is(target error) bool {
	var targetErr *SaltboxError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new SaltboxError with the given code and message
func New(code ErrorCode, message string) *SaltboxError {
	return &SaltboxError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new SaltboxError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *SaltboxError {
	return &SaltboxError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error. A nil err yields nil.
func Wrap(err error, code ErrorCode, message string) *SaltboxError {
	if err == nil {
		return nil
	}
	return &SaltboxError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *SaltboxError {
	if err == nil {
		return nil
	}
	return &SaltboxError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *SaltboxError) WithDetail(key string, value interface{}) *SaltboxError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var sbErr *SaltboxError
	if errors.As(err, &sbErr) {
		return sbErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a SaltboxError
func GetErrorCode(err error) ErrorCode {
	var sbErr *SaltboxError
	if errors.As(err, &sbErr) {
		return sbErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a SaltboxError
func GetErrorDetails(err error) map[string]interface{} {
	var sbErr *SaltboxError
	if errors.As(err, &sbErr) {
		return sbErr.Details
	}
	return nil
}

// ExitCode maps an error to the process exit code used by the CLI.
// Usage errors exit with 2, every other failure with 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if IsErrorCode(err, ErrUsage) {
		return 2
	}
	return 1
}
