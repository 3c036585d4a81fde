package trigger

import "codeberg.org/mutker/sensorctl/internal/errors"

const (
	// Registration Errors
	ErrInvalidKind = errors.ErrorCode("trigger_invalid_kind")
	ErrInvalidName = errors.ErrorCode("trigger_invalid_name")
	ErrNilCallback = errors.ErrorCode("trigger_nil_callback")

	// Lookup Errors
	ErrNotFound = errors.ErrorCode("trigger_not_found")
)
