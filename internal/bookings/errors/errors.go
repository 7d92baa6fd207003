package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	ErrLockHeld = errors.New("slot lock is held by another request")

	ErrInvalidTimeRange = errors.New("end time must be after start time")
)
