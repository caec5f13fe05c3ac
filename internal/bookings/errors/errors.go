package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	ErrTimeConflict = errors.New("booking time conflicts with existing booking")

	ErrAlreadyInUse = errors.New("shared account is already checked in by another booking")

	ErrInvalidTimeRange = errors.New("end time must be after start time")

	// ErrMalformedStore means the persisted collection could not be parsed.
	ErrMalformedStore = errors.New("persisted bookings are malformed")
)
