package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Registration errors
const (
	// ErrCodeRegistrationConflict indicates the override strategy forbids
	// registering an existing type or name again.
	ErrCodeRegistrationConflict ErrorCode = "REGISTRATION_CONFLICT"
	// ErrCodeInvalidUnit indicates a registration unit failed validation.
	ErrCodeInvalidUnit ErrorCode = "INVALID_UNIT"
)

// Resolution errors
const (
	// ErrCodeAmbiguousCandidate indicates a lookup matched other than exactly one candidate.
	ErrCodeAmbiguousCandidate ErrorCode = "AMBIGUOUS_CANDIDATE"
	// ErrCodeCircularDependency indicates construction re-entered a type already under construction.
	ErrCodeCircularDependency ErrorCode = "CIRCULAR_DEPENDENCY"
	// ErrCodeUnsatisfiedDependency indicates nothing could satisfy a requested type or name.
	ErrCodeUnsatisfiedDependency ErrorCode = "UNSATISFIED_DEPENDENCY"
)

// Construction errors
const (
	// ErrCodeConstructionFailure indicates a factory returned an error or panicked.
	ErrCodeConstructionFailure ErrorCode = "CONSTRUCTION_FAILURE"
	// ErrCodePostConstructFailure indicates a post-construct interceptor failed.
	ErrCodePostConstructFailure ErrorCode = "POST_CONSTRUCT_FAILURE"
)

// Configuration and internal errors
const (
	// ErrCodeValidation indicates a struct failed tag validation.
	ErrCodeValidation ErrorCode = "VALIDATION_FAILED"
	// ErrCodeInvalidConfig indicates the container configuration is invalid.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)
