// Package errors defines the structured error taxonomy for the soiree
// site engine. Every failure the engine can hit falls into one of a small
// set of categories (config, validation, submission, navigation, storage,
// internal), and none of them is fatal: callers substitute defaults,
// surface hints, or skip the feature, but the page always renders.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeSubmission ErrorType = "submission"
	ErrorTypeNavigation ErrorType = "navigation"
	ErrorTypeStorage    ErrorType = "storage"
	ErrorTypeInternal   ErrorType = "internal"
)

// SiteError is a structured error type with context.
type SiteError struct {
	Type        ErrorType
	Code        string
	Message     string
	Cause       error
	Context     map[string]interface{}
	Component   string
	Field       string
	Recoverable bool
}

// Error implements the error interface.
func (e *SiteError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Component != "" {
		parts = append(parts, "component:"+e.Component)
	}

	if e.Field != "" {
		parts = append(parts, "field:"+e.Field)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *SiteError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *SiteError) Is(target error) bool {
	var t *SiteError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *SiteError) WithContext(key string, value interface{}) *SiteError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithComponent adds component context.
func (e *SiteError) WithComponent(component string) *SiteError {
	e.Component = component

	return e
}

// WithField attaches the form field the error refers to.
func (e *SiteError) WithField(field string) *SiteError {
	e.Field = field

	return e
}

// NewConfigError creates a configuration load/parse/shape error.
// Config errors are always recoverable: the engine falls back to the
// built-in defaults and shows a dismissible hint.
func NewConfigError(code, message string, cause error) *SiteError {
	return &SiteError{
		Type:        ErrorTypeConfig,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewValidationError creates a field-level form validation error.
func NewValidationError(code, message string) *SiteError {
	return &SiteError{
		Type:        ErrorTypeValidation,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}

// NewSubmissionError creates a form submission (network/provider) error.
func NewSubmissionError(code, message string, cause error) *SiteError {
	return &SiteError{
		Type:        ErrorTypeSubmission,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewNavigationError creates a navigation error (unknown route or a
// transition hook failure).
func NewNavigationError(code, message string, cause error) *SiteError {
	return &SiteError{
		Type:        ErrorTypeNavigation,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewStorageError creates a local storage error (quota/unavailable).
func NewStorageError(code, message string, cause error) *SiteError {
	return &SiteError{
		Type:        ErrorTypeStorage,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewInternalError creates an unexpected internal error.
func NewInternalError(code, message string, cause error) *SiteError {
	return &SiteError{
		Type:        ErrorTypeInternal,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// IsType reports whether err (or anything it wraps) is a SiteError of the
// given type.
func IsType(err error, errType ErrorType) bool {
	var siteErr *SiteError
	if errors.As(err, &siteErr) {
		return siteErr.Type == errType
	}

	return false
}

// IsRecoverable reports whether the error allows the page to keep
// rendering. Unknown (non-SiteError) errors are treated as recoverable
// because nothing in this system is fatal.
func IsRecoverable(err error) bool {
	var siteErr *SiteError
	if errors.As(err, &siteErr) {
		return siteErr.Recoverable
	}

	return true
}
