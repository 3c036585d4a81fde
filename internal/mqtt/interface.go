// Package mqtt provides broker connectivity with abstraction for testing.
// The pipeline core never imports it; trigger and pipeline callbacks forward
// smoothed values and firings through the Publisher surface.
package mqtt

// Publisher publishes messages to an MQTT broker.
type Publisher interface {
	// Publish sends a message. Implementations must not crash the
	// sampling loop on broker unavailability.
	Publish(topic string, payload []byte, qos byte, retained bool) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the broker connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

type Config struct {
	Broker   string
	ClientID string
	// BufferSize bounds the number of messages queued while disconnected;
	// the oldest message is dropped on overflow.
	BufferSize int
}

func DefaultConfig() Config {
	return Config{
		Broker:     "tcp://localhost:1883",
		ClientID:   "sensorctl",
		BufferSize: 100,
	}
}
