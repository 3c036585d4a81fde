// Package trigger manages named threshold rules with attached callbacks.
// Every execution compares a supplied value against each rule and invokes the
// callbacks of matching rules. Continuous triggers fire on every match,
// one-time triggers only on the rising edge of their comparison state.
package trigger

import (
	"codeberg.org/mutker/sensorctl/internal/errors"
	"codeberg.org/mutker/sensorctl/internal/logger"
)

type record struct {
	kind       Kind
	threshold  float64
	oneTime    bool
	prevActive bool
	callbacks  []Callback
}

// Registry holds named triggers and evaluates them in registration order.
// Not safe for concurrent use; callers sharing one registry across timer
// callbacks must serialize access.
type Registry struct {
	triggers map[string]*record
	order    []string
}

func NewRegistry() *Registry {
	return &Registry{
		triggers: make(map[string]*record),
	}
}

// Set registers a trigger or extends an existing one. When name is already
// registered with the same kind, threshold and one-time flag, the callback is
// appended to the existing sequence; any difference replaces the record
// outright and resets its edge state.
func (r *Registry) Set(name string, kind Kind, threshold float64, callback Callback, oneTime bool) error {
	errFactory := errors.New()
	if name == "" {
		return errFactory.New(ErrInvalidName)
	}
	if !kind.IsValid() {
		return errFactory.WithData(ErrInvalidKind, int(kind))
	}
	if callback == nil {
		return errFactory.WithData(ErrNilCallback, name)
	}

	if existing, ok := r.triggers[name]; ok {
		if existing.kind == kind && existing.threshold == threshold && existing.oneTime == oneTime {
			existing.callbacks = append(existing.callbacks, callback)
			logger.Debug().Str("trigger", name).Msg("Callback appended to trigger")
			return nil
		}
		// Genuinely new rule under an old name replaces the record.
		r.triggers[name] = &record{
			kind:      kind,
			threshold: threshold,
			oneTime:   oneTime,
			callbacks: []Callback{callback},
		}
		logger.Debug().Str("trigger", name).Msg("Trigger replaced")
		return nil
	}

	r.triggers[name] = &record{
		kind:      kind,
		threshold: threshold,
		oneTime:   oneTime,
		callbacks: []Callback{callback},
	}
	r.order = append(r.order, name)
	logger.Debug().
		Str("trigger", name).
		Str("kind", kind.String()).
		Float64("threshold", threshold).
		Bool("one_time", oneTime).
		Msg("Trigger registered")

	return nil
}

// AddCallback appends a callback to an already registered trigger.
func (r *Registry) AddCallback(name string, callback Callback) error {
	errFactory := errors.New()
	if callback == nil {
		return errFactory.WithData(ErrNilCallback, name)
	}
	trig, ok := r.triggers[name]
	if !ok {
		return errFactory.WithData(ErrNotFound, name)
	}
	trig.callbacks = append(trig.callbacks, callback)

	return nil
}

// Exec evaluates every registered trigger against value, in registration
// order, and returns the names of the triggers that fired. The edge state of
// one-time triggers is updated after every evaluation regardless of firing.
func (r *Registry) Exec(value float64) []string {
	var fired []string
	for _, name := range r.order {
		trig, ok := r.triggers[name]
		if !ok {
			continue
		}

		active := trig.kind == Upper && value >= trig.threshold ||
			trig.kind == Lower && value <= trig.threshold

		fire := active
		if trig.oneTime {
			fire = active && !trig.prevActive
		}
		trig.prevActive = active

		if !fire {
			continue
		}

		fired = append(fired, name)
		for _, callback := range trig.callbacks {
			invoke(name, value, callback)
		}
	}

	return fired
}

// invoke runs one callback inside its own failure boundary so a panicking
// callback cannot abort its siblings or the evaluation sweep.
func invoke(name string, value float64, callback Callback) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error().
				Str("trigger", name).
				Float64("value", value).
				Interface("panic", rec).
				Msg("Trigger callback panicked")
		}
	}()
	callback(name, value)
}

// Get returns a snapshot of one registered trigger.
func (r *Registry) Get(name string) (Record, error) {
	trig, ok := r.triggers[name]
	if !ok {
		return Record{}, errors.New().WithData(ErrNotFound, name)
	}

	return trig.snapshot(), nil
}

// Snapshot returns a copy of the full registry keyed by trigger name.
func (r *Registry) Snapshot() map[string]Record {
	records := make(map[string]Record, len(r.triggers))
	for name, trig := range r.triggers {
		records[name] = trig.snapshot()
	}

	return records
}

// Delete removes one trigger. Deleting an absent name is a no-op.
func (r *Registry) Delete(name string) {
	if _, ok := r.triggers[name]; !ok {
		return
	}
	delete(r.triggers, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	logger.Debug().Str("trigger", name).Msg("Trigger removed")
}

// DeleteAll removes every registered trigger.
func (r *Registry) DeleteAll() {
	r.triggers = make(map[string]*record)
	r.order = nil
}

// Len returns the number of registered triggers.
func (r *Registry) Len() int {
	return len(r.triggers)
}

func (t *record) snapshot() Record {
	callbacks := make([]Callback, len(t.callbacks))
	copy(callbacks, t.callbacks)

	return Record{
		Kind:      t.kind,
		Threshold: t.threshold,
		OneTime:   t.oneTime,
		Active:    t.prevActive,
		Callbacks: callbacks,
	}
}
