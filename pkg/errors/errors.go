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

	// Reconciliation errors
	ErrNotFound           ErrorCode = "NOT_FOUND"
	ErrNoCompatibleFile   ErrorCode = "NO_COMPATIBLE_FILE"
	ErrInvalidLocator     ErrorCode = "INVALID_LOCATOR"
	ErrAmbiguousProfile   ErrorCode = "AMBIGUOUS_PROFILE"
	ErrMalformedSaveState ErrorCode = "MALFORMED_SAVE_STATE"

	// Provider and transfer errors
	ErrProvider ErrorCode = "PROVIDER"
	ErrDownload ErrorCode = "DOWNLOAD"

	// Disk errors
	ErrArchive ErrorCode = "ARCHIVE"
	ErrInstall ErrorCode = "INSTALL"

	// Persistence errors
	ErrStore ErrorCode = "STORE"

	// Configuration errors
	ErrConfigLoad    ErrorCode = "CONFIG_LOAD"
	ErrConfigMissing ErrorCode = "CONFIG_MISSING"

	ErrSelfUpdate ErrorCode = "SELF_UPDATE"
)

// WowaError represents a structured error with code and details
type WowaError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *WowaError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *WowaError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *WowaError) Is(target error) bool {
	var targetErr *WowaError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new WowaError with the given code and message
func New(code ErrorCode, message string) *WowaError {
	return &WowaError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new WowaError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *WowaError {
	return &WowaError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a WowaError.
// Callers must only pass non-nil errors when the result is returned as error,
// otherwise the typed nil becomes a non-nil interface value.
func Wrap(err error, code ErrorCode, message string) *WowaError {
	if err == nil {
		return nil
	}
	return &WowaError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *WowaError {
	if err == nil {
		return nil
	}
	return &WowaError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *WowaError) WithDetail(key string, value interface{}) *WowaError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *WowaError) WithDetails(details map[string]interface{}) *WowaError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// IsErrorCode checks if an error has a specific error code anywhere in its chain
func IsErrorCode(err error, code ErrorCode) bool {
	return errors.Is(err, &WowaError{Code: code})
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a WowaError
func GetErrorCode(err error) ErrorCode {
	var wowaErr *WowaError
	if errors.As(err, &wowaErr) {
		return wowaErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a WowaError
func GetErrorDetails(err error) map[string]interface{} {
	var wowaErr *WowaError
	if errors.As(err, &wowaErr) {
		return wowaErr.Details
	}
	return nil
}
