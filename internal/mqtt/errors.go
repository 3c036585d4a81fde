package mqtt

import "codeberg.org/mutker/sensorctl/internal/errors"

const (
	// Configuration Errors
	ErrInvalidBroker = errors.ErrorCode("mqtt_invalid_broker")

	// Connection Errors
	ErrConnectFailed  = errors.ErrorCode("mqtt_connect_failed")
	ErrConnectTimeout = errors.ErrorCode("mqtt_connect_timeout")

	// Publish Errors
	ErrPublishFailed  = errors.ErrorCode("mqtt_publish_failed")
	ErrPublishTimeout = errors.ErrorCode("mqtt_publish_timeout")
)
