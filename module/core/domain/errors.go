package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrNoActiveCheckIn  = errors.New("no active check-in found")
	ErrInvalidPosition  = errors.New("invalid position")
	ErrInvalidDate      = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidEvent     = errors.New("event_type must be check-in or check-out")
	ErrMismatchedLength = errors.New("items, quantities and prices must have the same length")
)
