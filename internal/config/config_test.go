package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/mutker/sensorctl/internal/config"
	"codeberg.org/mutker/sensorctl/internal/errors"
)

func resetArgs(t *testing.T, args ...string) {
	t.Helper()
	oldArgs := os.Args
	t.Cleanup(func() { os.Args = oldArgs })
	os.Args = append([]string{"cmd"}, args...)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "sensorctl.toml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o600))

	return configPath
}

func TestLoad(t *testing.T) {
	resetArgs(t)
	configPath := writeConfig(t, `
interval = 5
log_level = "debug"
telemetry = true
database = "/path/to/telemetry.db"

[filter]
kind = "running"
stat = "median"
buffer_len = 7
value_min = -40.0
value_max = 85.0
decimals = 2

[mqtt]
enabled = true
broker = "tcp://broker.local:1883"
topic = "home/sensor/temperature"
qos = 1

[[trigger]]
name = "overheat"
kind = "upper"
threshold = 80.0
one_time = true

[[trigger]]
name = "freeze"
kind = "lower"
threshold = 0.0
`)
	t.Setenv("SENSORCTL_CONFIG", configPath)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Interval, "Expected Interval 5")
	assert.Equal(t, "debug", cfg.LogLevel, "Expected LogLevel debug")
	assert.True(t, cfg.Telemetry, "Expected Telemetry true")
	assert.Equal(t, "/path/to/telemetry.db", cfg.TelemetryDB)

	assert.Equal(t, "running", cfg.Filter.Kind)
	assert.Equal(t, "median", cfg.Filter.Stat)
	assert.Equal(t, 7, cfg.Filter.BufferLen)
	assert.Equal(t, -40.0, cfg.Filter.ValueMin)
	assert.Equal(t, 85.0, cfg.Filter.ValueMax)
	assert.Equal(t, 2, cfg.Filter.Decimals)

	assert.True(t, cfg.MQTT.Enabled)
	assert.Equal(t, "tcp://broker.local:1883", cfg.MQTT.Broker)
	assert.Equal(t, "home/sensor/temperature", cfg.MQTT.Topic)
	assert.Equal(t, 1, cfg.MQTT.QoS)

	require.Len(t, cfg.Triggers, 2)
	assert.Equal(t, "overheat", cfg.Triggers[0].Name)
	assert.Equal(t, "upper", cfg.Triggers[0].Kind)
	assert.Equal(t, 80.0, cfg.Triggers[0].Threshold)
	assert.True(t, cfg.Triggers[0].OneTime)
	assert.Equal(t, "freeze", cfg.Triggers[1].Name)
	assert.False(t, cfg.Triggers[1].OneTime)
}

func TestLoadDefaults(t *testing.T) {
	resetArgs(t)
	// Point at an empty config file so no host configuration leaks in
	configPath := writeConfig(t, "")
	t.Setenv("SENSORCTL_CONFIG", configPath)

	cfg, err := config.Load()
	require.NoError(t, err, "Failed to load config")

	assert.Equal(t, config.DefaultInterval, cfg.Interval, "Expected default Interval")
	assert.Equal(t, config.DefaultLogLevel, cfg.LogLevel, "Expected default LogLevel info")
	assert.False(t, cfg.Telemetry, "Expected default Telemetry false")
	assert.Equal(t, string(config.FilterExponential), cfg.Filter.Kind)
	assert.Equal(t, 0.5, cfg.Filter.Factor)
	assert.Equal(t, 5, cfg.Filter.BufferLen)
	assert.False(t, cfg.MQTT.Enabled)
	assert.Empty(t, cfg.Triggers)
}

func TestLoadConfigFileInvalidFormat(t *testing.T) {
	resetArgs(t)
	configPath := writeConfig(t, `
This is not a valid TOML file
`)
	t.Setenv("SENSORCTL_CONFIG", configPath)

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to read config file")
}

func TestInvalidLogLevel(t *testing.T) {
	resetArgs(t)
	configPath := writeConfig(t, `
log_level = "invalid"
`)
	t.Setenv("SENSORCTL_CONFIG", configPath)

	_, err := config.Load()
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrInvalidLogLevel))
}

func TestInvalidTriggerKind(t *testing.T) {
	resetArgs(t)
	configPath := writeConfig(t, `
[[trigger]]
name = "weird"
kind = "sideways"
threshold = 1.0
`)
	t.Setenv("SENSORCTL_CONFIG", configPath)

	_, err := config.Load()
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrInvalidConfig))
}

func TestLogLevelFlag(t *testing.T) {
	resetArgs(t, "--log-level", "debug")
	configPath := writeConfig(t, "")
	t.Setenv("SENSORCTL_CONFIG", configPath)

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel, "Expected LogLevel to be set by flag")
}

func TestOptionAccessors(t *testing.T) {
	resetArgs(t)
	configPath := writeConfig(t, `
[sensor]
path = "/sys/class/hwmon/hwmon1/temp1_input"
scale = 0.001
channels = "temp1, temp2,temp3"
samples = 8
label = ""
`)
	t.Setenv("SENSORCTL_CONFIG", configPath)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "/sys/class/hwmon/hwmon1/temp1_input", cfg.Option("sensor", "path", "/dev/null"))
	assert.Equal(t, "/dev/null", cfg.Option("sensor", "missing", "/dev/null"), "missing key yields fallback")
	assert.Equal(t, "", cfg.Option("sensor", "label", "/dev/null"), "explicitly empty value is not a missing key")

	assert.Equal(t, 0.001, cfg.OptionFloat("sensor", "scale", 1.0))
	assert.Equal(t, 1.0, cfg.OptionFloat("sensor", "nope", 1.0))

	assert.Equal(t, 8, cfg.OptionInt("sensor", "samples", 4))
	assert.Equal(t, 4, cfg.OptionInt("sensor", "nope", 4))

	assert.Equal(t, []string{"temp1", "temp2", "temp3"},
		cfg.OptionSplit("sensor", "channels", ",", nil),
		"split option trims whitespace per element")
	assert.Equal(t, []string{"fallback"},
		cfg.OptionSplit("sensor", "nope", ",", []string{"fallback"}))
}
