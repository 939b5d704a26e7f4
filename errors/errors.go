package errors

import (
	"fmt"
	"strings"
)

// AppError is the unified error type returned by the container.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Is reports whether target is an *AppError with the same code, which lets
// callers match against the package sentinels with errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Sentinels for errors.Is matching. Only the code is compared.
var (
	ErrRegistrationConflict  = New(ErrCodeRegistrationConflict, "registration conflict")
	ErrInvalidUnit           = New(ErrCodeInvalidUnit, "invalid unit")
	ErrAmbiguousCandidate    = New(ErrCodeAmbiguousCandidate, "ambiguous candidate")
	ErrCircularDependency    = New(ErrCodeCircularDependency, "circular dependency")
	ErrUnsatisfiedDependency = New(ErrCodeUnsatisfiedDependency, "unsatisfied dependency")
	ErrConstructionFailure   = New(ErrCodeConstructionFailure, "construction failure")
	ErrPostConstructFailure  = New(ErrCodePostConstructFailure, "post-construct failure")
	ErrValidation            = New(ErrCodeValidation, "validation failed")
	ErrInvalidConfig         = New(ErrCodeInvalidConfig, "invalid config")
)

// --- Container Error Constructors ---

// RegistrationConflict creates an error for a type or name that is already
// registered while overriding is not allowed. kind is "type" or "name".
func RegistrationConflict(kind, key string) *AppError {
	return &AppError{
		Code:    ErrCodeRegistrationConflict,
		Message: fmt.Sprintf("A provider with %s %s is already registered and overriding is not allowed.", kind, key),
		Details: map[string]any{"kind": kind, "key": key},
	}
}

// AmbiguousCandidate creates an error for a lookup that expected exactly one
// candidate of typeName but found count.
func AmbiguousCandidate(count int, typeName string) *AppError {
	return &AppError{
		Code:    ErrCodeAmbiguousCandidate,
		Message: fmt.Sprintf("Expected 1 candidate for %s but found %d.", typeName, count),
		Details: map[string]any{"count": count, "type": typeName},
	}
}

// CircularDependency creates an error carrying the ordered construction chain.
// The last element is the type that re-entered the chain.
func CircularDependency(chain []string) *AppError {
	c := make([]string, len(chain))
	copy(c, chain)
	return &AppError{
		Code:    ErrCodeCircularDependency,
		Message: fmt.Sprintf("Circular dependency: %s", strings.Join(c, " -> ")),
		Details: map[string]any{"chain": c},
	}
}

// UnsatisfiedDependency creates an error for a type or name nothing can satisfy.
// kind is "type" or "name".
func UnsatisfiedDependency(kind, key string) *AppError {
	return &AppError{
		Code:    ErrCodeUnsatisfiedDependency,
		Message: fmt.Sprintf("No candidate found for %s %s.", kind, key),
		Details: map[string]any{"kind": kind, "key": key},
	}
}

// ConstructionFailure wraps a factory failure for typeName.
func ConstructionFailure(typeName string, cause error) *AppError {
	return &AppError{
		Code:    ErrCodeConstructionFailure,
		Message: fmt.Sprintf("Unable to create an instance of %s.", typeName),
		Details: map[string]any{"type": typeName},
		Cause:   cause,
	}
}

// PostConstructFailure wraps a failure raised by the named hook while
// processing a new instance of typeName.
func PostConstructFailure(hook, typeName string, cause error) *AppError {
	return &AppError{
		Code:    ErrCodePostConstructFailure,
		Message: fmt.Sprintf("Post-construct hook %s failed for %s.", hook, typeName),
		Details: map[string]any{"hook": hook, "type": typeName},
		Cause:   cause,
	}
}

// InvalidUnit creates an error for a registration unit that cannot be registered.
func InvalidUnit(typeName, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidUnit,
		Message: fmt.Sprintf("Invalid registration unit %s: %s", typeName, reason),
		Details: map[string]any{"type": typeName},
	}
}

// Validation creates an error for struct validation failures.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message}
}

// InvalidConfig wraps a configuration loading or validation failure.
func InvalidConfig(cause error) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidConfig,
		Message: "The container configuration is invalid.",
		Cause:   cause,
	}
}

// Internal creates an error for an unexpected internal failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "An unexpected error occurred.",
		Cause:   cause,
	}
}
