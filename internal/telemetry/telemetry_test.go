package telemetry_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/mutker/sensorctl/internal/telemetry"
)

func TestConfigValidate(t *testing.T) {
	cfg := telemetry.Config{Enabled: true, DBPath: ""}
	require.Error(t, cfg.Validate())

	cfg = telemetry.Config{Enabled: false, DBPath: ""}
	require.NoError(t, cfg.Validate(), "path is only required when telemetry is enabled")

	require.NoError(t, telemetry.DefaultConfig().Validate())
}

func TestDisabledRecorderIsNoop(t *testing.T) {
	recorder, err := telemetry.NewRecorder(telemetry.Config{Enabled: false})
	require.NoError(t, err)
	defer recorder.Close()

	require.NoError(t, recorder.RecordSample(context.Background(), &telemetry.Sample{
		Timestamp: time.Now(),
		Source:    "test",
		Raw:       1,
		Smoothed:  1,
	}))
	require.NoError(t, recorder.RecordEvent(context.Background(), &telemetry.Event{
		Timestamp: time.Now(),
		Trigger:   "test",
	}))
}

func TestRecorderStoresHistory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "telemetry.db")
	recorder, err := telemetry.NewRecorder(telemetry.Config{Enabled: true, DBPath: dbPath})
	require.NoError(t, err)

	now := time.Now()
	require.NoError(t, recorder.RecordSample(context.Background(), &telemetry.Sample{
		Timestamp: now,
		Source:    "thermal",
		Raw:       41.8,
		Smoothed:  42.1,
	}))

	// Same timestamp and source upserts rather than failing
	require.NoError(t, recorder.RecordSample(context.Background(), &telemetry.Sample{
		Timestamp: now,
		Source:    "thermal",
		Raw:       41.9,
		Smoothed:  42.0,
	}))

	require.NoError(t, recorder.RecordEvent(context.Background(), &telemetry.Event{
		Timestamp: now,
		Trigger:   "overheat",
		Value:     42.0,
		Threshold: 40.0,
	}))

	require.NoError(t, recorder.Close())

	info, err := os.Stat(dbPath)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
