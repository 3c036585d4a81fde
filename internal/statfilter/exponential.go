package statfilter

import (
	"codeberg.org/mutker/sensorctl/internal/errors"
)

// Exponential smooths readings with an exponential moving average. Only the
// last smoothed value is persisted; the very first accepted reading seeds it
// directly.
type Exponential struct {
	buffer
	factor float64
	seeded bool
}

// NewExponential creates an exponential filter with the given smoothing
// factor in (0,1]. Larger factors weigh fresh readings more heavily; 0.5
// behaves as a running average of the last few readings.
func NewExponential(factor float64, cfg Config) (*Exponential, error) {
	errFactory := errors.New()
	if factor <= 0 || factor > 1 {
		return nil, errFactory.WithData(ErrInvalidFactor, factor)
	}

	// The smoothed value is the only retained reading.
	cfg.BufferLen = 1
	buf, err := newBuffer(cfg)
	if err != nil {
		return nil, err
	}

	return &Exponential{
		buffer: buf,
		factor: factor,
	}, nil
}

// Ingest folds an accepted reading into the smoothed value.
func (f *Exponential) Ingest(value float64) bool {
	if !f.accept(value) {
		return false
	}

	if !f.seeded {
		f.readings = append(f.readings[:0], value)
		f.seeded = true
		return true
	}

	f.readings[0] += f.factor * (value - f.readings[0])

	return true
}

// Result returns the current smoothed value.
func (f *Exponential) Result() (float64, error) {
	if !f.seeded {
		return 0, errors.New().New(ErrEmptyBuffer)
	}

	return f.round(f.readings[0]), nil
}

func (f *Exponential) Reset() {
	f.buffer.Reset()
	f.seeded = false
}

// Factor returns the configured smoothing factor.
func (f *Exponential) Factor() float64 {
	return f.factor
}
