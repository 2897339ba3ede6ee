package nasa

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Lookup when the upstream search yields no
// results for the query.
var ErrNotFound = errors.New("no matching content upstream")

// UpstreamError represents a non-success response or transport failure
// from the upstream provider. The proxy surfaces it as a 5xx and never
// retries on its own.
type UpstreamError struct {
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream error (status %d): %s: %v", e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("upstream error (status %d): %s", e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *UpstreamError) Unwrap() error {
	return e.Err
}
