package pipeline

import "codeberg.org/mutker/sensorctl/internal/errors"

const (
	// Configuration Errors
	ErrInvalidConfig = errors.ErrorCode("pipeline_invalid_config")
	ErrNilSampler    = errors.ErrorCode("pipeline_nil_sampler")
	ErrNilFilter     = errors.ErrorCode("pipeline_nil_filter")
	ErrNilRegistry   = errors.ErrorCode("pipeline_nil_registry")
)
