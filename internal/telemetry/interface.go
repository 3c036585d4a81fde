package telemetry

import (
	"context"
	"time"
)

// Recorder defines the sink for pipeline history
type Recorder interface {
	RecordSample(ctx context.Context, sample *Sample) error
	RecordEvent(ctx context.Context, event *Event) error
	Close() error
}

// Sample is one processed reading of the sampling pipeline
type Sample struct {
	Timestamp time.Time
	Source    string
	Raw       float64
	Smoothed  float64
}

// Event is one trigger firing
type Event struct {
	Timestamp time.Time
	Trigger   string
	Value     float64
	Threshold float64
}
