// Package kernel defines the operation model and the capability-provider
// contract shared by every geometry engine: operation kinds and parameter
// bags, classified errors, unit normalization, the adapter interface, and
// the router that selects an engine per build and falls back when an engine
// cannot perform a requested operation.
package kernel

import (
	"errors"
	"fmt"
)

// ErrorClass classifies a build error for recovery and reporting logic.
type ErrorClass string

const (
	// ErrorClassValidation indicates an input schema violation: missing
	// required field, out-of-range numeric, disallowed unit or enum.
	// Rejected before any kernel call.
	ErrorClassValidation ErrorClass = "validation"

	// ErrorClassPrecondition indicates an operation invalid in the current
	// shape state, e.g. extrude with no sketch. Aborts the pipeline.
	ErrorClassPrecondition ErrorClass = "precondition"

	// ErrorClassConfiguration indicates an unknown or invalid enumerated
	// parameter, e.g. an unknown tool type or an out-of-range edge index.
	// Aborts the pipeline.
	ErrorClassConfiguration ErrorClass = "configuration"

	// ErrorClassUnsupported indicates the selected engine cannot perform
	// the operation kind. Recovered by the router via fallback; surfaced
	// only when the fallback engine cannot perform it either.
	ErrorClassUnsupported ErrorClass = "unsupported"

	// ErrorClassKernel indicates the engine itself failed: numerical
	// degeneracy, self-intersection, non-manifold result. Aborts the
	// pipeline.
	ErrorClassKernel ErrorClass = "kernel"
)

// Error is a classified build error with operation context.
type Error struct {
	// Class is the error classification.
	Class ErrorClass `json:"class"`

	// Message is the human-readable error message.
	Message string `json:"message"`

	// Op is the operation kind being performed when the error occurred.
	Op OpKind `json:"op,omitempty"`

	// Engine is the engine involved, if any.
	Engine string `json:"engine,omitempty"`

	// Err is the underlying cause.
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Class, e.Message)
	if e.Op != "" {
		msg += fmt.Sprintf(" (op=%s)", e.Op)
	}
	if e.Engine != "" {
		msg += fmt.Sprintf(" (engine=%s)", e.Engine)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for errors.Is/As chains.
func (e *Error) Unwrap() error { return e.Err }

// Is matches on class, so errors.Is can test classification.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Class == t.Class
}

// WithOp attaches the operation kind to the error.
func (e *Error) WithOp(kind OpKind) *Error {
	e.Op = kind
	return e
}

// WithEngine attaches the engine name to the error.
func (e *Error) WithEngine(name string) *Error {
	e.Engine = name
	return e
}

// NewValidationError creates a validation error.
func NewValidationError(message string, err error) *Error {
	return &Error{Class: ErrorClassValidation, Message: message, Err: err}
}

// NewPreconditionError creates a precondition error.
func NewPreconditionError(message string, err error) *Error {
	return &Error{Class: ErrorClassPrecondition, Message: message, Err: err}
}

// NewConfigurationError creates a configuration error.
func NewConfigurationError(message string, err error) *Error {
	return &Error{Class: ErrorClassConfiguration, Message: message, Err: err}
}

// NewUnsupportedError creates an unsupported-operation error.
func NewUnsupportedError(message string, err error) *Error {
	return &Error{Class: ErrorClassUnsupported, Message: message, Err: err}
}

// NewKernelError creates a kernel execution error.
func NewKernelError(message string, err error) *Error {
	return &Error{Class: ErrorClassKernel, Message: message, Err: err}
}

// ClassOf returns the classification of err, or an empty class when err
// carries none.
func ClassOf(err error) ErrorClass {
	var e *Error
	if errors.As(err, &e) {
		return e.Class
	}
	return ""
}

func isClass(err error, class ErrorClass) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Class == class
	}
	return false
}

// IsValidation reports whether err is classified as a validation error.
func IsValidation(err error) bool { return isClass(err, ErrorClassValidation) }

// IsPrecondition reports whether err is classified as a precondition error.
func IsPrecondition(err error) bool { return isClass(err, ErrorClassPrecondition) }

// IsConfiguration reports whether err is classified as a configuration error.
func IsConfiguration(err error) bool { return isClass(err, ErrorClassConfiguration) }

// IsUnsupported reports whether err is classified as unsupported.
func IsUnsupported(err error) bool { return isClass(err, ErrorClassUnsupported) }

// IsKernel reports whether err is classified as a kernel execution error.
func IsKernel(err error) bool { return isClass(err, ErrorClassKernel) }
