// Package errors provides the structured error type used across patterns,
// together with helpers for wrapping causes and for turning failures into
// actionable CLI output.
package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeSecurity   ErrorType = "security"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeInternal   ErrorType = "internal"
)

// PatternError is a structured error type with context.
type PatternError struct {
	Type        ErrorType
	Code        string
	Message     string
	Cause       error
	Context     map[string]interface{}
	Pattern     string
	FilePath    string
	Recoverable bool
}

// Error implements the error interface.
func (e *PatternError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Pattern != "" {
		parts = append(parts, "pattern:"+e.Pattern)
	}

	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *PatternError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *PatternError) Is(target error) bool {
	var t *PatternError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *PatternError) WithContext(key string, value interface{}) *PatternError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithFile adds file location information.
func (e *PatternError) WithFile(filePath string) *PatternError {
	e.FilePath = filePath

	return e
}

// WithPattern adds the pattern the error relates to.
func (e *PatternError) WithPattern(pattern string) *PatternError {
	e.Pattern = pattern

	return e
}

// Error creation functions

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *PatternError {
	return &PatternError{
		Type:        ErrorTypeValidation,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}

// NewSecurityError creates a security error.
func NewSecurityError(code, message string) *PatternError {
	return &PatternError{
		Type:    ErrorTypeSecurity,
		Code:    code,
		Message: message,
	}
}

// NewNotFoundError creates a not-found error.
func NewNotFoundError(code, message string) *PatternError {
	return &PatternError{
		Type:        ErrorTypeNotFound,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *PatternError {
	return &PatternError{
		Type:    ErrorTypeIO,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewNetworkError creates a network error.
func NewNetworkError(code, message string, cause error) *PatternError {
	return &PatternError{
		Type:        ErrorTypeNetwork,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// IsRecoverable checks if an error is recoverable.
func IsRecoverable(err error) bool {
	var pe *PatternError
	if errors.As(err, &pe) {
		return pe.Recoverable
	}

	return false
}

// IsSecurityError checks if an error is security-related.
func IsSecurityError(err error) bool {
	return HasErrorType(err, ErrorTypeSecurity)
}

// IsNotFound checks if an error reports a missing resource.
func IsNotFound(err error) bool {
	return HasErrorType(err, ErrorTypeNotFound)
}

// HasErrorType reports whether any PatternError in the chain has the given type.
func HasErrorType(err error, errType ErrorType) bool {
	var pe *PatternError
	if errors.As(err, &pe) {
		return pe.Type == errType
	}

	return false
}

// HasErrorCode reports whether any PatternError in the chain has the given code.
func HasErrorCode(err error, code string) bool {
	var pe *PatternError
	if errors.As(err, &pe) {
		return pe.Code == code
	}

	return false
}

// ErrorHandler provides centralized error handling.
type ErrorHandler struct {
	logger Logger
}

// Logger interface for error logging.
type Logger interface {
	Error(ctx context.Context, err error, msg string, fields ...interface{})
	Warn(ctx context.Context, err error, msg string, fields ...interface{})
}

// NewErrorHandler creates a new error handler.
func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle logs an error at a level matching its type.
func (h *ErrorHandler) Handle(ctx context.Context, err error) {
	if err == nil || h.logger == nil {
		return
	}

	var pe *PatternError
	if !errors.As(err, &pe) {
		h.logger.Error(ctx, err, "Unhandled error occurred")
		return
	}

	switch pe.Type {
	case ErrorTypeValidation, ErrorTypeNotFound, ErrorTypeNetwork:
		h.logger.Warn(ctx, err, "Recoverable error occurred",
			"type", pe.Type,
			"code", pe.Code,
			"pattern", pe.Pattern,
			"file", pe.FilePath)
	default:
		h.logger.Error(ctx, err, "Error occurred",
			"type", pe.Type,
			"code", pe.Code,
			"pattern", pe.Pattern,
			"file", pe.FilePath)
	}
}

// Common error codes.
const (
	ErrCodeInvalidPath      = "ERR_INVALID_PATH"
	ErrCodePathTraversal    = "ERR_PATH_TRAVERSAL"
	ErrCodeInvalidOrigin    = "ERR_INVALID_ORIGIN"
	ErrCodePatternNotFound  = "ERR_PATTERN_NOT_FOUND"
	ErrCodeFragmentNotFound = "ERR_FRAGMENT_NOT_FOUND"
	ErrCodeReadmeNotFound   = "ERR_README_NOT_FOUND"
	ErrCodeThemeFetch       = "ERR_THEME_FETCH"
	ErrCodeThemeUnknown     = "ERR_THEME_UNKNOWN"
	ErrCodeScanFailed       = "ERR_SCAN_FAILED"
	ErrCodeConfigInvalid    = "ERR_CONFIG_INVALID"
	ErrCodeFileNotFound     = "ERR_FILE_NOT_FOUND"
	ErrCodeListenFailed     = "ERR_LISTEN_FAILED"
	ErrCodeInternalError    = "ERR_INTERNAL"
)

// Helper functions for common errors

// ErrInvalidPath creates a path validation error.
func ErrInvalidPath(path string) *PatternError {
	return NewValidationError(ErrCodeInvalidPath, "invalid path: "+path)
}

// ErrPathTraversal creates a path traversal security error.
func ErrPathTraversal(path string) *PatternError {
	return NewSecurityError(ErrCodePathTraversal, "path traversal attempt: "+path)
}

// ErrInvalidOrigin creates an invalid origin security error.
func ErrInvalidOrigin(origin string) *PatternError {
	return NewSecurityError(ErrCodeInvalidOrigin, "invalid origin: "+origin)
}

// ErrPatternNotFound creates a pattern not found error.
func ErrPatternNotFound(pattern string) *PatternError {
	return NewNotFoundError(ErrCodePatternNotFound, "pattern not found").WithPattern(pattern)
}

// ErrFragmentNotFound creates a fragment not found error.
func ErrFragmentNotFound(path string) *PatternError {
	return NewNotFoundError(ErrCodeFragmentNotFound, "fragment not found").WithFile(path)
}

// ErrReadmeNotFound creates a README not found error.
func ErrReadmeNotFound(path string) *PatternError {
	return NewNotFoundError(ErrCodeReadmeNotFound, "no documentation available").WithFile(path)
}

// ErrThemeUnknown creates an unknown theme error.
func ErrThemeUnknown(value string) *PatternError {
	return NewValidationError(ErrCodeThemeUnknown, "unknown theme: "+value)
}
