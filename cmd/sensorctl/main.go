package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"codeberg.org/mutker/sensorctl/internal/config"
	"codeberg.org/mutker/sensorctl/internal/logger"
	"codeberg.org/mutker/sensorctl/internal/mqtt"
	"codeberg.org/mutker/sensorctl/internal/pid"
	"codeberg.org/mutker/sensorctl/internal/pipeline"
	"codeberg.org/mutker/sensorctl/internal/statfilter"
	"codeberg.org/mutker/sensorctl/internal/telemetry"
	"codeberg.org/mutker/sensorctl/internal/timer"
	"codeberg.org/mutker/sensorctl/internal/trigger"
)

const (
	defaultSensorPath  = "/sys/class/thermal/thermal_zone0/temp"
	defaultSensorScale = 0.001
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.IsDebug(), cfg.IsVerbose(), logger.IsService())
	logger.Debug().Msg("Config loaded")

	if err := pid.Write(); err != nil {
		logger.Fatal().Err(err).Msg("failed to write PID file")
	}
	defer pid.Remove()

	if err := run(cfg); err != nil {
		logger.Error().Err(err).Msg("error in sampling service")
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	recorder, err := telemetry.NewRecorder(telemetry.Config{
		Enabled: cfg.Telemetry,
		DBPath:  cfg.TelemetryDB,
	})
	if err != nil {
		return err
	}
	defer recorder.Close()

	var publisher mqtt.Publisher
	if cfg.MQTT.Enabled {
		publisher, err = mqtt.NewClient(mqtt.Config{
			Broker:     cfg.MQTT.Broker,
			ClientID:   cfg.MQTT.ClientID,
			BufferSize: cfg.MQTT.BufferSize,
		})
		if err != nil {
			return err
		}
		defer publisher.Close()
	}

	filter, err := buildFilter(cfg.Filter)
	if err != nil {
		return err
	}

	triggers := trigger.NewRegistry()
	if err := registerTriggers(cfg, triggers, publisher, recorder); err != nil {
		return err
	}

	timers := timer.NewRegistry()
	defer timers.StopAll()

	pipe, err := pipeline.New(
		pipeline.Config{
			Name:      "sampling",
			Interval:  time.Duration(cfg.Interval) * time.Second,
			Prescaler: cfg.OptionInt("sampling", "prescaler", 1),
		},
		newFileSampler(
			cfg.Option("sensor", "path", defaultSensorPath),
			cfg.OptionFloat("sensor", "scale", defaultSensorScale),
		),
		filter,
		triggers,
		timers,
	)
	if err != nil {
		return err
	}

	pipe.OnResult(func(raw, smoothed float64, fired []string) {
		forwardResult(cfg, publisher, recorder, raw, smoothed)
	})

	if err := pipe.Start(); err != nil {
		return err
	}
	logger.Info().Int("interval", cfg.Interval).Msg("Sampling started")

	<-ctx.Done()
	if err := pipe.Stop(); err != nil {
		return err
	}
	logger.Info().Msg("Exiting...")

	return nil
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

func buildFilter(cfg config.FilterConfig) (statfilter.Filter, error) {
	filterCfg := statfilter.Config{
		BufferLen: cfg.BufferLen,
		ValueMin:  cfg.ValueMin,
		ValueMax:  cfg.ValueMax,
		Decimals:  cfg.Decimals,
	}

	if config.FilterKind(cfg.Kind) == config.FilterExponential {
		return statfilter.NewExponential(cfg.Factor, filterCfg)
	}

	return statfilter.NewRunning(parseStatType(cfg.Stat), filterCfg)
}

func parseStatType(stat string) statfilter.StatType {
	switch strings.ToLower(stat) {
	case "median":
		return statfilter.Median
	case "minimum":
		return statfilter.Minimum
	case "maximum":
		return statfilter.Maximum
	default:
		return statfilter.Average
	}
}

func registerTriggers(cfg *config.Config, triggers *trigger.Registry,
	publisher mqtt.Publisher, recorder telemetry.Recorder,
) error {
	for _, trigCfg := range cfg.Triggers {
		kind := trigger.Upper
		if trigCfg.Kind == "lower" {
			kind = trigger.Lower
		}

		threshold := trigCfg.Threshold
		callback := func(name string, value float64) {
			logger.Info().
				Str("trigger", name).
				Float64("value", value).
				Float64("threshold", threshold).
				Msg("Trigger fired")

			if err := recorder.RecordEvent(context.Background(), &telemetry.Event{
				Timestamp: time.Now(),
				Trigger:   name,
				Value:     value,
				Threshold: threshold,
			}); err != nil {
				logger.Error().Err(err).Str("trigger", name).Msg("failed to record trigger event")
			}

			if publisher == nil {
				return
			}
			topic := cfg.MQTT.Topic + "/trigger/" + name
			payload, _ := json.Marshal(map[string]any{
				"trigger":   name,
				"value":     value,
				"threshold": threshold,
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			})
			if err := publisher.Publish(topic, payload, byte(cfg.MQTT.QoS), false); err != nil {
				logger.Error().Err(err).Str("trigger", name).Msg("failed to publish trigger event")
			}
		}

		if err := triggers.Set(trigCfg.Name, kind, threshold, callback, trigCfg.OneTime); err != nil {
			return err
		}
	}

	return nil
}

func forwardResult(cfg *config.Config, publisher mqtt.Publisher,
	recorder telemetry.Recorder, raw, smoothed float64,
) {
	if err := recorder.RecordSample(context.Background(), &telemetry.Sample{
		Timestamp: time.Now(),
		Source:    cfg.Option("sensor", "name", "sensor"),
		Raw:       raw,
		Smoothed:  smoothed,
	}); err != nil {
		logger.Error().Err(err).Msg("failed to record sample")
	}

	if publisher == nil {
		return
	}
	payload, _ := json.Marshal(map[string]any{
		"value":     smoothed,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
	if err := publisher.Publish(cfg.MQTT.Topic, payload, byte(cfg.MQTT.QoS), false); err != nil {
		logger.Error().Err(err).Msg("failed to publish smoothed value")
	}
}

// newFileSampler reads a numeric reading from a sysfs-style file, scaled to
// engineering units (e.g. millidegrees to degrees with scale 0.001).
func newFileSampler(path string, scale float64) pipeline.Sampler {
	return func(_ context.Context) (float64, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return 0, err
		}

		value, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
		if err != nil {
			return 0, err
		}

		return value * scale, nil
	}
}
