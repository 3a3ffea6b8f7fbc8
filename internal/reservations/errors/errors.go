package errors

import "errors"

var (
	ErrNotFound = errors.New("reservation not found")

	ErrInvalidID = errors.New("invalid reservation ID format")

	ErrDateConflict = errors.New("dates overlap an existing reservation for this room")

	ErrInvalidDateRange = errors.New("check-out must be after check-in")

	ErrAlreadyPaid = errors.New("reservation is already paid")
)
