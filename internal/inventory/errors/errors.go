package errors

import "errors"

var (
	ErrNotFound   = errors.New("inventory object not found")
	ErrReferenced = errors.New("inventory object is referenced by bookings")
)
