package domain

import "errors"

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCoordinate rejects a write with an out-of-range latitude or longitude.
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	// ErrSetLocation wraps a store failure while constructing a point.
	ErrSetLocation = errors.New("failed to set location")
	// ErrValidation rejects a write that breaks a field rule.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidTransition rejects a status change not allowed from the current status.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrConflict is returned when a unique record already exists.
	ErrConflict = errors.New("conflict")
)
