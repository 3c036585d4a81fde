package timer

import "codeberg.org/mutker/sensorctl/internal/errors"

const (
	// Registration Errors
	ErrInvalidName      = errors.ErrorCode("timer_invalid_name")
	ErrInvalidPeriod    = errors.ErrorCode("timer_invalid_period")
	ErrInvalidPrescaler = errors.ErrorCode("timer_invalid_prescaler")
	ErrInvalidCount     = errors.ErrorCode("timer_invalid_count")
	ErrNilCallback      = errors.ErrorCode("timer_nil_callback")

	// Lookup Errors
	ErrNotFound = errors.ErrorCode("timer_not_found")
)
