// Package source defines the contracts and error taxonomy shared by
// the upstream mailbox providers.
package source

import (
	"errors"
	"fmt"
)

// ValidationError indicates a request was rejected before any
// retrieval started, typically because a required credential is
// absent.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidationError reports whether err (or any error in its chain) is
// a ValidationError.
func IsValidationError(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}

// ConnectionError indicates a failure communicating with a message
// source: unreachable host, rejected credential or malformed response.
// It covers the whole retrieval; no partial results survive it.
type ConnectionError struct {
	Source string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s source: %v", e.Source, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// IsConnectionError reports whether err (or any error in its chain) is
// a ConnectionError.
func IsConnectionError(err error) bool {
	var cErr *ConnectionError
	return errors.As(err, &cErr)
}
