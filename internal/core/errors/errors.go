// Package errors provides centralized error definitions for the application.
//
// Naming conventions:
//   - Exported errors (Err*): use for errors that callers need to check with errors.Is
//   - All sentinel errors are defined as variables, not inline errors.New calls
//   - Use fmt.Errorf with %w to wrap sentinel errors with context
package errors

import "errors"

// Upstream classification errors.
var (
	// ErrQuotaExceeded indicates the YouTube API daily quota or rate cap was hit.
	// It is surfaced differently from generic upstream failures: the caller
	// disables further searches until the quota window resets.
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrUpstream indicates a non-quota upstream failure (bad status, network error).
	ErrUpstream = errors.New("upstream error")
)

// Validation errors.
var (
	// ErrInvalidInput indicates missing or malformed user input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")
)

// Generation errors.
var (
	// ErrGenerationParse indicates the LLM response did not contain a parseable
	// keywords object.
	ErrGenerationParse = errors.New("generation response not parseable")
)

// Is is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is a convenience wrapper around errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
