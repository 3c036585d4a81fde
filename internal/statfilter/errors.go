package statfilter

import "codeberg.org/mutker/sensorctl/internal/errors"

const (
	// Configuration Errors
	ErrInvalidConfig   = errors.ErrorCode("statfilter_invalid_config")
	ErrInvalidRange    = errors.ErrorCode("statfilter_invalid_value_range")
	ErrInvalidFactor   = errors.ErrorCode("statfilter_invalid_factor")
	ErrInvalidStatType = errors.ErrorCode("statfilter_invalid_stat_type")

	// Derivation Errors
	ErrEmptyBuffer = errors.ErrorCode("statfilter_empty_buffer")
)
