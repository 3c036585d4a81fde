package trigger

// Kind selects the comparison direction of a trigger.
type Kind int

const (
	// Upper triggers activate when the compared value reaches or exceeds
	// the threshold.
	Upper Kind = iota
	// Lower triggers activate when the compared value sinks to the
	// threshold or below.
	Lower
)

// String implements the Stringer interface
func (k Kind) String() string {
	switch k {
	case Upper:
		return "upper"
	case Lower:
		return "lower"
	default:
		return "unknown"
	}
}

// IsValid returns whether the kind is valid
func (k Kind) IsValid() bool {
	return k == Upper || k == Lower
}

// Callback is invoked for every firing with the trigger name and the value
// that caused it.
type Callback func(name string, value float64)

// Record is a snapshot of one registered trigger.
type Record struct {
	Kind      Kind
	Threshold float64
	OneTime   bool
	// Active reports the comparison state after the most recent
	// evaluation. Used to gate rising-edge firing of one-time triggers.
	Active    bool
	Callbacks []Callback
}
