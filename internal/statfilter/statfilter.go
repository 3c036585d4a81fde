// Package statfilter provides statistical filtering and smoothing of noisy
// numeric readings. Two variants share one ingestion and eviction routine:
// Exponential keeps a single exponentially smoothed value, Running derives a
// statistic over a bounded FIFO buffer of recent readings.
package statfilter

import (
	"math"

	"codeberg.org/mutker/sensorctl/internal/errors"
	"codeberg.org/mutker/sensorctl/internal/logger"
)

const (
	// NoRounding disables rounding of derived results.
	NoRounding = -1

	// Unbounded disables the buffer length limit.
	Unbounded = 0
)

type Config struct {
	// BufferLen bounds the number of retained readings. Unbounded (0)
	// keeps every accepted reading.
	BufferLen int
	// ValueMin and ValueMax clamp acceptable readings. Readings outside
	// the range are rejected, not stored.
	ValueMin float64
	ValueMax float64
	// Decimals rounds derived results to the given precision, or
	// NoRounding to leave them untouched.
	Decimals int
}

func DefaultConfig() Config {
	return Config{
		BufferLen: Unbounded,
		ValueMin:  math.Inf(-1),
		ValueMax:  math.Inf(1),
		Decimals:  NoRounding,
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()
	if c.BufferLen < 0 {
		return errFactory.WithData(ErrInvalidConfig, c.BufferLen)
	}
	if c.ValueMin > c.ValueMax {
		return errFactory.WithData(ErrInvalidRange, [2]float64{c.ValueMin, c.ValueMax})
	}
	return nil
}

// buffer carries the state shared by both filter variants: the clamp range,
// the bounded FIFO of readings and the result rounding precision.
type buffer struct {
	readings  []float64
	bufferLen int
	valueMin  float64
	valueMax  float64
	decimals  int
}

func newBuffer(cfg Config) (buffer, error) {
	if err := cfg.Validate(); err != nil {
		return buffer{}, err
	}

	return buffer{
		bufferLen: cfg.BufferLen,
		valueMin:  cfg.ValueMin,
		valueMax:  cfg.ValueMax,
		decimals:  cfg.Decimals,
	}, nil
}

// SetBuffer reconfigures the buffer bound and clamp range. Retained readings
// beyond a tightened bound are evicted oldest first.
func (b *buffer) SetBuffer(length int, valueMin, valueMax float64) error {
	errFactory := errors.New()
	if length < 0 {
		return errFactory.WithData(ErrInvalidConfig, length)
	}
	if valueMin > valueMax {
		return errFactory.WithData(ErrInvalidRange, [2]float64{valueMin, valueMax})
	}

	b.bufferLen = length
	b.valueMin = valueMin
	b.valueMax = valueMax
	b.evict()

	return nil
}

// accept validates a reading against the clamp range. Non-numeric readings
// (NaN, infinities) never pass.
func (b *buffer) accept(value float64) bool {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		logger.Debug().Float64("value", value).Msg("Rejected non-numeric reading")
		return false
	}
	if value < b.valueMin || value > b.valueMax {
		logger.Debug().
			Float64("value", value).
			Float64("value_min", b.valueMin).
			Float64("value_max", b.valueMax).
			Msg("Rejected reading outside clamp range")
		return false
	}

	return true
}

// append stores an accepted reading, evicting the oldest on overflow.
func (b *buffer) append(value float64) {
	b.readings = append(b.readings, value)
	b.evict()
}

func (b *buffer) evict() {
	if b.bufferLen == Unbounded {
		return
	}
	if excess := len(b.readings) - b.bufferLen; excess > 0 {
		b.readings = b.readings[excess:]
	}
}

// round applies the configured result precision.
func (b *buffer) round(value float64) float64 {
	if b.decimals == NoRounding {
		return value
	}
	pow := math.Pow(10, float64(b.decimals))

	return math.Round(value*pow) / pow
}

func (b *buffer) Reset() {
	b.readings = b.readings[:0]
}

// BufferLen returns the configured buffer bound, not the current fill level.
func (b *buffer) BufferLen() int {
	return b.bufferLen
}

func (b *buffer) ValueMin() float64 {
	return b.valueMin
}

func (b *buffer) ValueMax() float64 {
	return b.valueMax
}

// Readings returns a snapshot copy of the currently held readings in
// arrival order, oldest first.
func (b *buffer) Readings() []float64 {
	readings := make([]float64, len(b.readings))
	copy(readings, b.readings)

	return readings
}
