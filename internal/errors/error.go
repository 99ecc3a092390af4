// Package errors provides structured, coded errors for the outer surfaces
// of the runtime: protocol decoding, server configuration, and the CLI. The
// driver core itself has no error returns by contract.
package errors

import "fmt"

// Category represents the type of error.
type Category string

const (
	CategoryProtocol Category = "protocol"
	CategoryRuntime  Category = "runtime"
	CategoryConfig   Category = "config"
	CategoryCLI      Category = "cli"
)

// Error is a coded error with a category, an optional suggestion, and an
// optional wrapped cause.
type Error struct {
	// Code is a unique error identifier (e.g., "E101").
	Code string

	// Category is the error type (protocol, runtime, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// WithSuggestion adds a fix suggestion to the error.
func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestion = s
	return e
}

// Wrap records the underlying cause.
func (e *Error) Wrap(err error) *Error {
	e.Wrapped = err
	return e
}

// New creates an error from a registered code. Unknown codes produce a
// generic runtime error carrying the code, so callers never get nil.
func New(code string) *Error {
	if tpl, ok := registry[code]; ok {
		return &Error{Code: code, Category: tpl.Category, Message: tpl.Message, Suggestion: tpl.Suggestion}
	}
	return &Error{Code: code, Category: CategoryRuntime, Message: "unknown error"}
}

// Newf creates an uncoded error in the given category.
func Newf(cat Category, format string, args ...any) *Error {
	return &Error{Category: cat, Message: fmt.Sprintf(format, args...)}
}
