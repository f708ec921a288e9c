package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	// ErrStatusChanged means a compare-and-set status update found a status
	// other than the expected one.
	ErrStatusChanged = errors.New("booking status changed concurrently")
)
