package errors

import (
	stderrors "errors"
)

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether any AppError in err's chain carries code.
func HasCode(err error, code ErrorCode) bool {
	_, ok := find(err, code)
	return ok
}

// Count returns the candidate count carried by an AMBIGUOUS_CANDIDATE error.
func Count(err error) (int, bool) {
	appErr, ok := find(err, ErrCodeAmbiguousCandidate)
	if !ok {
		return 0, false
	}
	n, ok := appErr.Details["count"].(int)
	return n, ok
}

// Chain returns the construction chain carried by a CIRCULAR_DEPENDENCY error.
func Chain(err error) ([]string, bool) {
	appErr, ok := find(err, ErrCodeCircularDependency)
	if !ok {
		return nil, false
	}
	chain, ok := appErr.Details["chain"].([]string)
	return chain, ok
}

// find returns the first AppError with code in err's chain.
func find(err error, code ErrorCode) (*AppError, bool) {
	for err != nil {
		appErr, ok := AsAppError(err)
		if !ok {
			return nil, false
		}
		if appErr.Code == code {
			return appErr, true
		}
		err = appErr.Cause
	}
	return nil, false
}
