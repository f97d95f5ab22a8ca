package domain

import (
	"errors"
	"fmt"
)

// Terminal conditions surfaced to callers. None of these are retried.
var (
	// ErrFieldNotFound means the requested field does not exist.
	ErrFieldNotFound = errors.New("field not found")

	// ErrAlertNotFound means the requested alert does not exist.
	ErrAlertNotFound = errors.New("alert not found")

	// ErrMissingBoundary means a field has no geographic boundary; ingestion
	// for that field cannot proceed until one is set.
	ErrMissingBoundary = errors.New("field has no geographic boundary")

	// ErrNotConfigured means a provider credential is absent from the
	// environment.
	ErrNotConfigured = errors.New("provider credentials not configured")
)

// ValidationError marks bad caller input (out-of-range coordinates,
// malformed dates, nonsense parameters). Never retried.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validationf builds a ValidationError with fmt semantics.
func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// TransientError wraps a provider failure worth retrying: transport errors,
// timeouts, 5xx responses.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// Transientf wraps an underlying cause as retriable, with fmt semantics.
// The cause must be the final argument, wrapped via %w.
func Transientf(format string, args ...any) error {
	return &TransientError{Err: fmt.Errorf(format, args...)}
}

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
