package mqtt

import "sync"

// FakeMessage is one message recorded by the fake publisher.
type FakeMessage struct {
	Topic    string
	Payload  []byte
	QoS      byte
	Retained bool
}

// Fake records published messages for test assertions.
type Fake struct {
	mu sync.Mutex

	// Messages contains all messages that were published.
	Messages []FakeMessage

	// PublishError, if set, will be returned by Publish.
	PublishError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool
}

// NewFake creates a Fake publisher for testing.
func NewFake() *Fake {
	return &Fake{Connected: true}
}

// Publish records the message.
func (f *Fake) Publish(topic string, payload []byte, qos byte, retained bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.PublishError != nil {
		return f.PublishError
	}

	f.Messages = append(f.Messages, FakeMessage{
		Topic:    topic,
		Payload:  append([]byte(nil), payload...),
		QoS:      qos,
		Retained: retained,
	})

	return nil
}

// Close marks the publisher as closed.
func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true

	return nil
}

// IsConnected reports whether the fake publisher is "connected".
func (f *Fake) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.Connected
}

// Published returns a snapshot of the recorded messages.
func (f *Fake) Published() []FakeMessage {
	f.mu.Lock()
	defer f.mu.Unlock()

	messages := make([]FakeMessage, len(f.Messages))
	copy(messages, f.Messages)

	return messages
}
