package statfilter

import (
	"sort"

	"codeberg.org/mutker/sensorctl/internal/errors"
)

// Running derives a statistic over the full live buffer of recent readings.
type Running struct {
	buffer
	statType StatType
}

// NewRunning creates a running filter deriving the given statistic.
func NewRunning(statType StatType, cfg Config) (*Running, error) {
	errFactory := errors.New()
	if !statType.IsValid() {
		return nil, errFactory.WithData(ErrInvalidStatType, int(statType))
	}

	buf, err := newBuffer(cfg)
	if err != nil {
		return nil, err
	}

	return &Running{
		buffer:   buf,
		statType: statType,
	}, nil
}

// Ingest appends an accepted reading, evicting the oldest on overflow.
func (f *Running) Ingest(value float64) bool {
	if !f.accept(value) {
		return false
	}
	f.append(value)

	return true
}

// Result computes the configured statistic over the current buffer.
func (f *Running) Result() (float64, error) {
	if len(f.readings) == 0 {
		return 0, errors.New().New(ErrEmptyBuffer)
	}

	var statistic float64
	switch f.statType {
	case Average:
		statistic = f.average()
	case Median:
		statistic = f.median()
	case Minimum:
		statistic = f.extremum(false)
	case Maximum:
		statistic = f.extremum(true)
	}

	return f.round(statistic), nil
}

// StatType returns the configured statistic type.
func (f *Running) StatType() StatType {
	return f.statType
}

func (f *Running) average() float64 {
	var sum float64
	for _, reading := range f.readings {
		sum += reading
	}

	return sum / float64(len(f.readings))
}

// median sorts a snapshot of the buffer; for an even number of readings the
// two middle elements are averaged.
func (f *Running) median() float64 {
	sorted := f.Readings()
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}

	return sorted[mid]
}

func (f *Running) extremum(maximum bool) float64 {
	statistic := f.readings[0]
	for _, reading := range f.readings[1:] {
		if maximum && reading > statistic || !maximum && reading < statistic {
			statistic = reading
		}
	}

	return statistic
}
