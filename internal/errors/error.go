package errors

import (
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryReactivity  Category = "reactivity"
	CategoryDecoration  Category = "decoration"
	CategoryUpdate      Category = "update"
	CategoryWire        Category = "wire"
	CategoryPersistence Category = "persistence"
	CategoryConfig      Category = "config"
	CategoryCLI         Category = "cli"
)

// Severity distinguishes fatal errors from advisory warnings.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Error is a structured error with a code, explanation and optional hint.
type Error struct {
	// Code is a unique error identifier (e.g., "E101").
	Code string

	// Category is the error type.
	Category Category

	// Severity is error unless the code is advisory.
	Severity Severity

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of this occurrence.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target carries the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t == nil {
		return false
	}
	return e.Code != "" && e.Code == t.Code
}

// WithDetail returns a copy of the error with a detail message.
// Sentinels are shared, so the receiver is never modified.
func (e *Error) WithDetail(format string, args ...any) *Error {
	c := *e
	c.Detail = fmt.Sprintf(format, args...)
	return &c
}

// WithSuggestion returns a copy of the error with a fix suggestion.
func (e *Error) WithSuggestion(s string) *Error {
	c := *e
	c.Suggestion = s
	return &c
}

// Wrap returns a copy of the error wrapping err.
func (e *Error) Wrap(err error) *Error {
	c := *e
	c.Wrapped = err
	return &c
}

// IsWarning reports whether the error is advisory.
func (e *Error) IsWarning() bool {
	return e.Severity == SeverityWarning
}

// New creates an Error from a registered error code.
func New(code string) *Error {
	template, ok := registry[code]
	if !ok {
		return &Error{
			Code:     code,
			Severity: SeverityError,
			Message:  "Unknown error",
		}
	}
	sev := template.Severity
	if sev == "" {
		sev = SeverityError
	}
	return &Error{
		Code:     code,
		Category: template.Category,
		Severity: sev,
		Message:  template.Message,
		DocURL:   template.DocURL,
	}
}

// Newf creates a new Error with a formatted message (no code).
func Newf(category Category, format string, args ...any) *Error {
	return &Error{
		Category: category,
		Severity: SeverityError,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in an Error.
func FromError(err error, code string) *Error {
	if err == nil {
		return nil
	}
	if se, ok := err.(*Error); ok {
		return se
	}
	return New(code).Wrap(err)
}

// Explain returns the registered long explanation for code.
func Explain(code string) string {
	return registry[code].Detail
}
