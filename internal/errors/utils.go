package errors

import (
	"errors"
	"fmt"
)

// Wrap wraps an error with additional context, creating a PatternError if the input is not already one
func Wrap(err error, errType ErrorType, code, message string) *PatternError {
	if err == nil {
		return nil
	}

	// Preserve location details of an existing PatternError
	var pe *PatternError
	if errors.As(err, &pe) {
		return &PatternError{
			Type:        errType,
			Code:        code,
			Message:     message,
			Cause:       pe,
			Context:     pe.Context,
			Pattern:     pe.Pattern,
			FilePath:    pe.FilePath,
			Recoverable: pe.Recoverable,
		}
	}

	return &PatternError{
		Type:        errType,
		Code:        code,
		Message:     message,
		Cause:       err,
		Recoverable: errType == ErrorTypeValidation || errType == ErrorTypeNotFound || errType == ErrorTypeNetwork,
	}
}

// WrapIO wraps an error as an I/O error
func WrapIO(err error, code, message string) *PatternError {
	pe := Wrap(err, ErrorTypeIO, code, message)
	if pe != nil {
		pe.Recoverable = false
	}
	return pe
}

// WrapNetwork wraps an error as a network error
func WrapNetwork(err error, code, message string) *PatternError {
	return Wrap(err, ErrorTypeNetwork, code, message)
}

// WrapConfig wraps an error as a configuration error
func WrapConfig(err error, code, message string) *PatternError {
	pe := Wrap(err, ErrorTypeConfig, code, message)
	if pe != nil {
		pe.Recoverable = false
	}
	return pe
}

// WrapInternal wraps an error as an internal error
func WrapInternal(err error, code, message string) *PatternError {
	pe := Wrap(err, ErrorTypeInternal, code, message)
	if pe != nil {
		pe.Recoverable = false
	}
	return pe
}

// GetErrorContext extracts context information from a PatternError
func GetErrorContext(err error) map[string]interface{} {
	var pe *PatternError
	if errors.As(err, &pe) {
		context := make(map[string]interface{})
		for k, v := range pe.Context {
			context[k] = v
		}
		if pe.Pattern != "" {
			context["pattern"] = pe.Pattern
		}
		if pe.FilePath != "" {
			context["file"] = pe.FilePath
		}
		context["type"] = string(pe.Type)
		context["code"] = pe.Code
		context["recoverable"] = pe.Recoverable
		return context
	}

	return map[string]interface{}{
		"message": err.Error(),
		"type":    "unknown",
	}
}

// ExtractCause extracts the root cause from a wrapped error
func ExtractCause(err error) error {
	for err != nil {
		var pe *PatternError
		if !errors.As(err, &pe) {
			return err
		}
		if pe.Cause == nil {
			return pe
		}
		err = pe.Cause
	}
	return nil
}

// CombineErrors combines multiple errors into a single error with context
func CombineErrors(errs ...error) error {
	var nonNil []error
	for _, err := range errs {
		if err != nil {
			nonNil = append(nonNil, err)
		}
	}
	if len(nonNil) == 0 {
		return nil
	}
	if len(nonNil) == 1 {
		return nonNil[0]
	}

	messages := make([]string, 0, len(nonNil))
	for _, err := range nonNil {
		messages = append(messages, err.Error())
	}

	return &PatternError{
		Type:    ErrorTypeInternal,
		Code:    "ERR_MULTIPLE_ERRORS",
		Message: fmt.Sprintf("multiple errors occurred: %d errors", len(nonNil)),
		Context: map[string]interface{}{
			"error_count": len(nonNil),
			"errors":      messages,
		},
		Cause: errors.Join(nonNil...),
	}
}
