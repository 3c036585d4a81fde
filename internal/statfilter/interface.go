package statfilter

// StatType selects the statistic derived by a running filter.
type StatType int

const (
	Average StatType = iota
	Median
	Minimum
	Maximum
)

// String implements the Stringer interface
func (t StatType) String() string {
	switch t {
	case Average:
		return "average"
	case Median:
		return "median"
	case Minimum:
		return "minimum"
	case Maximum:
		return "maximum"
	default:
		return "unknown"
	}
}

// IsValid returns whether the statistic type is valid
func (t StatType) IsValid() bool {
	switch t {
	case Average, Median, Minimum, Maximum:
		return true
	default:
		return false
	}
}

// Filter smooths a stream of numeric readings into one representative value.
// Ingestion and derivation are separate so callers can batch several readings
// before computing a statistic. Implementations are not safe for concurrent
// use; callers sharing one instance across goroutines must serialize access.
type Filter interface {
	// Ingest validates a reading against the configured clamp range and
	// stores it. It reports false for rejected readings without mutating
	// any state, so sampling loops can continue uninterrupted.
	Ingest(value float64) bool

	// Result derives the representative value from the current state.
	// It fails with ErrEmptyBuffer before the first accepted reading.
	Result() (float64, error)

	// Reset clears all accumulated readings.
	Reset()

	// Readings returns a snapshot copy of the currently held readings.
	Readings() []float64
}
