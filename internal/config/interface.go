package config

// LogLevel represents valid logging levels
type LogLevel string

const (
	LogLevelDebug   LogLevel = "debug"
	LogLevelInfo    LogLevel = "info"
	LogLevelWarning LogLevel = "warning"
	LogLevelError   LogLevel = "error"
)

// IsValid returns whether the log level is valid
func (l LogLevel) IsValid() bool {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarning, LogLevelError:
		return true
	default:
		return false
	}
}

// String implements the Stringer interface
func (l LogLevel) String() string {
	return string(l)
}

// FilterKind selects the smoothing strategy of the sampling pipeline.
type FilterKind string

const (
	FilterExponential FilterKind = "exponential"
	FilterRunning     FilterKind = "running"
)

// IsValid returns whether the filter kind is valid
func (k FilterKind) IsValid() bool {
	return k == FilterExponential || k == FilterRunning
}

// Provider defines read access to configuration values grouped into named
// sections. Missing keys yield the supplied fallback, never an error.
type Provider interface {
	// Option returns a scalar option from a named section.
	Option(section, key, fallback string) string

	// OptionInt returns an integer option from a named section.
	OptionInt(section, key string, fallback int) int

	// OptionFloat returns a float option from a named section.
	OptionFloat(section, key string, fallback float64) float64

	// OptionSplit returns a delimited-list option from a named section,
	// split on sep with surrounding whitespace trimmed per element.
	OptionSplit(section, key, sep string, fallback []string) []string
}
