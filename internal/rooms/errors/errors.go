package errors

import "errors"

var (
	ErrNotFound = errors.New("room not found")

	ErrInvalidID = errors.New("invalid room ID format")

	ErrDuplicateRoomNumber = errors.New("room number already exists")

	ErrHasActiveReservations = errors.New("room has active reservations")
)
