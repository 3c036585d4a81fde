// Package config loads the sensorctl configuration from a TOML file,
// environment and command line flags, validated eagerly at load time.
package config

import (
	"math"
	"os"
	"strings"

	"codeberg.org/mutker/sensorctl/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultLogLevel  = "info"
	DefaultInterval  = 2
	DefaultTelemetry = "/var/lib/sensorctl/telemetry.db"

	configName   = "sensorctl"
	configEnvVar = "SENSORCTL_CONFIG"
)

// FilterConfig configures the smoothing stage of the sampling pipeline.
type FilterConfig struct {
	Kind      string  `mapstructure:"kind"`
	Factor    float64 `mapstructure:"factor"`
	Stat      string  `mapstructure:"stat"`
	BufferLen int     `mapstructure:"buffer_len"`
	ValueMin  float64 `mapstructure:"value_min"`
	ValueMax  float64 `mapstructure:"value_max"`
	Decimals  int     `mapstructure:"decimals"`
}

// TriggerConfig configures one named threshold rule.
type TriggerConfig struct {
	Name      string  `mapstructure:"name"`
	Kind      string  `mapstructure:"kind"`
	Threshold float64 `mapstructure:"threshold"`
	OneTime   bool    `mapstructure:"one_time"`
}

// MQTTConfig configures the broker connection for forwarding results.
type MQTTConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Broker     string `mapstructure:"broker"`
	ClientID   string `mapstructure:"client_id"`
	Topic      string `mapstructure:"topic"`
	QoS        int    `mapstructure:"qos"`
	BufferSize int    `mapstructure:"buffer_size"`
}

type Config struct {
	Interval    int             `mapstructure:"interval"`
	LogLevel    string          `mapstructure:"log_level"`
	Telemetry   bool            `mapstructure:"telemetry"`
	TelemetryDB string          `mapstructure:"database"`
	Filter      FilterConfig    `mapstructure:"filter"`
	Triggers    []TriggerConfig `mapstructure:"trigger"`
	MQTT        MQTTConfig      `mapstructure:"mqtt"`

	v *viper.Viper
}

func Load() (*Config, error) {
	errFactory := errors.New()

	flags := pflag.NewFlagSet(configName, pflag.ContinueOnError)
	flags.ParseErrorsWhitelist.UnknownFlags = true
	configFlag := flags.String("config", "", "Path to configuration file")
	logLevelFlag := flags.String("log-level", "", "Log level (debug, info, warning, error)")
	intervalFlag := flags.Int("interval", 0, "Sampling interval in seconds")
	if err := flags.Parse(os.Args[1:]); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	setDefaults(v)

	configPath := *configFlag
	if configPath == "" {
		configPath = os.Getenv(configEnvVar)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err).
				WithMessage("Failed to read config file")
		}
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath("/etc")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, errFactory.Wrap(errors.ErrReadConfig, err).
					WithMessage("Failed to read config file")
			}
		}
	}

	// Command line flags override file and defaults
	flags.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "log-level":
			v.Set("log_level", *logLevelFlag)
		case "interval":
			v.Set("interval", *intervalFlag)
		}
	})

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errFactory.Wrap(errors.ErrReadConfig, err).
			WithMessage("Failed to unmarshal config")
	}
	config.v = v

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("interval", DefaultInterval)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("telemetry", false)
	v.SetDefault("database", DefaultTelemetry)

	v.SetDefault("filter.kind", string(FilterExponential))
	v.SetDefault("filter.factor", 0.5)
	v.SetDefault("filter.stat", "average")
	v.SetDefault("filter.buffer_len", 5)
	v.SetDefault("filter.value_min", math.Inf(-1))
	v.SetDefault("filter.value_max", math.Inf(1))
	v.SetDefault("filter.decimals", -1)

	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("mqtt.client_id", configName)
	v.SetDefault("mqtt.topic", "sensorctl/value")
	v.SetDefault("mqtt.qos", 0)
	v.SetDefault("mqtt.buffer_size", 100)
}

// Validate checks the loaded configuration, surfacing the first violation.
func (c *Config) Validate() error {
	errFactory := errors.New()

	if !LogLevel(c.LogLevel).IsValid() {
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}
	if c.Interval <= 0 {
		return errFactory.WithData(errors.ErrInvalidPeriod, c.Interval)
	}
	if !FilterKind(c.Filter.Kind).IsValid() {
		return errFactory.WithData(errors.ErrInvalidConfig, c.Filter.Kind)
	}
	for _, trig := range c.Triggers {
		if trig.Name == "" {
			return errFactory.WithMessage(errors.ErrInvalidConfig, "trigger without name")
		}
		if trig.Kind != "upper" && trig.Kind != "lower" {
			return errFactory.WithData(errors.ErrInvalidConfig, trig.Kind)
		}
	}

	return nil
}

// IsDebug reports whether debug logging is configured.
func (c *Config) IsDebug() bool {
	return LogLevel(c.LogLevel) == LogLevelDebug
}

// IsVerbose reports whether info-level logging is configured.
func (c *Config) IsVerbose() bool {
	return LogLevel(c.LogLevel) == LogLevelInfo
}

// Option returns a scalar option from a named section, or fallback when the
// key is absent. An explicitly-set empty value is returned as-is.
func (c *Config) Option(section, key, fallback string) string {
	full := section + "." + key
	if !c.v.IsSet(full) {
		return fallback
	}

	return c.v.GetString(full)
}

// OptionInt returns an integer option from a named section, or fallback when
// the key is absent.
func (c *Config) OptionInt(section, key string, fallback int) int {
	full := section + "." + key
	if !c.v.IsSet(full) {
		return fallback
	}

	return c.v.GetInt(full)
}

// OptionFloat returns a float option from a named section, or fallback when
// the key is absent.
func (c *Config) OptionFloat(section, key string, fallback float64) float64 {
	full := section + "." + key
	if !c.v.IsSet(full) {
		return fallback
	}

	return c.v.GetFloat64(full)
}

// OptionSplit returns a delimited-list option from a named section, split on
// sep with surrounding whitespace trimmed per element.
func (c *Config) OptionSplit(section, key, sep string, fallback []string) []string {
	raw := c.Option(section, key, "")
	if raw == "" {
		return fallback
	}

	parts := strings.Split(raw, sep)
	for i, part := range parts {
		parts[i] = strings.TrimSpace(part)
	}

	return parts
}
