package mqtt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/mutker/sensorctl/internal/mqtt"
)

func TestFakeRecordsMessages(t *testing.T) {
	fake := mqtt.NewFake()

	require.NoError(t, fake.Publish("a/b", []byte("1"), 0, false))
	require.NoError(t, fake.Publish("a/c", []byte("2"), 1, true))

	published := fake.Published()
	require.Len(t, published, 2)
	assert.Equal(t, "a/b", published[0].Topic)
	assert.Equal(t, []byte("1"), published[0].Payload)
	assert.Equal(t, byte(1), published[1].QoS)
	assert.True(t, published[1].Retained)
}

func TestFakePublishError(t *testing.T) {
	fake := mqtt.NewFake()
	fake.PublishError = assert.AnError

	err := fake.Publish("a/b", []byte("1"), 0, false)
	require.Error(t, err)
	assert.Empty(t, fake.Published())
}

func TestFakeClose(t *testing.T) {
	fake := mqtt.NewFake()
	assert.True(t, fake.IsConnected())

	require.NoError(t, fake.Close())
	assert.True(t, fake.Closed)
}
