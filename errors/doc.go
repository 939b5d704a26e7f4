// Package errors provides the structured error type used across weld.
// Every container failure is an *AppError carrying a machine-readable
// ErrorCode, a human-readable message, diagnostic details and the
// underlying cause.
package errors
