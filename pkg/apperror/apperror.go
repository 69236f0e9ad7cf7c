// Package apperror carries the discriminated error kinds returned by the
// calculation engine and the calculation history store.
package apperror

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies the category of an error
type Kind string

const (
	// KindInvalidInput marks malformed or missing request fields
	KindInvalidInput Kind = "INVALID_INPUT"

	// KindNotFound marks an unresolved HTS code or calculation record
	KindNotFound Kind = "NOT_FOUND"

	// KindDateRangeViolation marks a requested tariff window outside the MFN rate window
	KindDateRangeViolation Kind = "DATE_RANGE_VIOLATION"

	// KindCalculationFailed marks any other failure during a calculation
	KindCalculationFailed Kind = "CALCULATION_FAILED"
)

// Error is a domain error with a kind and optional context
type Error struct {
	Kind    Kind                   `json:"kind"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// WithContext attaches a key/value pair describing the failure
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// InvalidInput creates an input validation error
func InvalidInput(message string) *Error {
	return New(KindInvalidInput, message)
}

// NotFound creates a not found error naming the missing resource
func NotFound(resource, identifier string) *Error {
	return Newf(KindNotFound, "%s not found: %s", resource, identifier).WithContext(resource, identifier)
}

// DateRangeViolation creates a hard date-window failure
func DateRangeViolation(message string) *Error {
	return New(KindDateRangeViolation, message)
}

// CalculationFailed wraps an unexpected downstream failure. Context["cause"] keeps the
// outermost wrap message ("failed to fetch MFN rate"), never the driver text beneath it.
func CalculationFailed(cause error) *Error {
	return Wrap(KindCalculationFailed, "Calculation failed", cause).WithContext("cause", CauseSummary(cause))
}

// CauseSummary returns the part of err's text before the first ": ".
func CauseSummary(err error) string {
	if err == nil {
		return ""
	}
	if head, _, ok := strings.Cut(err.Error(), ": "); ok && head != "" {
		return head
	}
	return "unexpected error"
}

// KindOf returns the kind of the first *Error in err's chain, or "" when none.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
