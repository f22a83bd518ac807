package step

import "errors"

// NonRetryableError marks an error the durability runtime must not retry.
// Runtime-backed executors translate it into the runtime's native
// non-retryable form.
type NonRetryableError struct {
	Err error
}

// Error implements the error interface.
func (e *NonRetryableError) Error() string {
	return e.Err.Error()
}

// Unwrap allows errors.Is and errors.As to reach the underlying error.
func (e *NonRetryableError) Unwrap() error {
	return e.Err
}

// NonRetryable wraps err so the runtime will not retry the step. A nil err
// returns nil, and an already-non-retryable error is returned unchanged.
func NonRetryable(err error) error {
	if err == nil {
		return nil
	}
	if IsNonRetryable(err) {
		return err
	}
	return &NonRetryableError{Err: err}
}

// IsNonRetryable reports whether err carries the non-retryable marker
// anywhere in its chain.
func IsNonRetryable(err error) bool {
	var nre *NonRetryableError
	return errors.As(err, &nre)
}
