package mqtt

import (
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"codeberg.org/mutker/sensorctl/internal/errors"
	"codeberg.org/mutker/sensorctl/internal/logger"
)

const (
	connectTimeout       = 10 * time.Second
	publishTimeout       = 5 * time.Second
	connectRetryInterval = 5 * time.Second
	disconnectQuiesce    = 1000 // milliseconds
)

// Client publishes to an actual MQTT broker. Messages published while the
// connection is down are queued in a bounded FIFO and replayed on reconnect.
type Client struct {
	client paho.Client
	mu     sync.Mutex
	queue  *ringBuffer
}

// NewClient creates a publisher connected to the configured broker.
func NewClient(cfg Config) (*Client, error) {
	errFactory := errors.New()
	if cfg.Broker == "" {
		return nil, errFactory.New(ErrInvalidBroker)
	}
	if cfg.BufferSize < 1 {
		cfg.BufferSize = DefaultConfig().BufferSize
	}

	c := &Client{
		queue: newRingBuffer(cfg.BufferSize),
	}

	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(connectRetryInterval).
		SetOnConnectHandler(c.onConnect).
		SetConnectionLostHandler(c.onConnectionLost)

	c.client = paho.NewClient(opts)
	token := c.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, errFactory.New(ErrConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, errFactory.Wrap(ErrConnectFailed, err)
	}

	return c, nil
}

// Publish sends a message, queueing it while the broker is unreachable.
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if !c.client.IsConnected() {
		c.mu.Lock()
		c.queue.push(bufferedMsg{topic: topic, payload: payload, qos: qos, retained: retained})
		queued := c.queue.len()
		c.mu.Unlock()
		logger.Debug().Str("topic", topic).Int("queued", queued).Msg("Broker offline, message buffered")
		return nil
	}

	return c.send(topic, payload, qos, retained)
}

func (c *Client) send(topic string, payload []byte, qos byte, retained bool) error {
	errFactory := errors.New()
	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return errFactory.WithData(ErrPublishTimeout, topic)
	}
	if err := token.Error(); err != nil {
		return errFactory.Wrap(ErrPublishFailed, err)
	}

	return nil
}

// IsConnected reports whether the broker connection is active.
func (c *Client) IsConnected() bool {
	return c.client.IsConnected()
}

// Close disconnects from the broker.
func (c *Client) Close() error {
	c.client.Disconnect(disconnectQuiesce)
	return nil
}

func (c *Client) onConnect(_ paho.Client) {
	c.mu.Lock()
	pending := c.queue.drainAll()
	c.mu.Unlock()

	if len(pending) == 0 {
		logger.Info().Msg("Connected to MQTT broker")
		return
	}

	logger.Info().Int("pending", len(pending)).Msg("Connected to MQTT broker, replaying buffered messages")
	for _, msg := range pending {
		if err := c.send(msg.topic, msg.payload, msg.qos, msg.retained); err != nil {
			logger.Error().Err(err).Str("topic", msg.topic).Msg("Failed to replay buffered message")
		}
	}
}

func (c *Client) onConnectionLost(_ paho.Client, err error) {
	logger.Warn().Err(err).Msg("MQTT connection lost, buffering messages")
}
