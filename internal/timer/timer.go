// Package timer manages named periodic tasks. Every started timer runs on
// its own goroutine with a wall-clock ticker, so timers never block one
// another; a prescaler divides the base tick rate for slower effective firing
// periods. Scheduling is best-effort, not hard real-time.
package timer

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"codeberg.org/mutker/sensorctl/internal/errors"
	"codeberg.org/mutker/sensorctl/internal/logger"
)

// Callback is invoked on every prescaled firing of a timer. Within one timer
// invocations never overlap; an invocation that overruns its period delays
// subsequent ticks until the goroutine is free again.
type Callback func()

type entry struct {
	period    time.Duration
	prescaler int
	count     int
	ticks     atomic.Int64
	callback  Callback
	cancel    context.CancelFunc
	running   bool
}

// Registry holds named timers. Safe for concurrent registration and control;
// the registry map is mutex-guarded while started timers run independently.
type Registry struct {
	mu     sync.Mutex
	timers map[string]*entry
}

func NewRegistry() *Registry {
	return &Registry{
		timers: make(map[string]*entry),
	}
}

// Register creates or replaces a named timer. The callback fires every
// prescaler-th elapse of period; prescaler 1 is a simple periodic timer.
// Replacing a running timer stops the running instance first.
func (r *Registry) Register(name string, period time.Duration, callback Callback, prescaler int) error {
	return r.RegisterLimited(name, period, callback, prescaler, 0)
}

// RegisterLimited creates or replaces a named timer that stops itself after
// count firings. Count 0 means unlimited; count 1 is a prescaled one-shot.
func (r *Registry) RegisterLimited(name string, period time.Duration, callback Callback, prescaler, count int) error {
	errFactory := errors.New()
	if name == "" {
		return errFactory.New(ErrInvalidName)
	}
	if period <= 0 {
		return errFactory.WithData(ErrInvalidPeriod, period.String())
	}
	if prescaler < 1 {
		return errFactory.WithData(ErrInvalidPrescaler, prescaler)
	}
	if count < 0 {
		return errFactory.WithData(ErrInvalidCount, count)
	}
	if callback == nil {
		return errFactory.WithData(ErrNilCallback, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.timers[name]; ok && existing.running {
		existing.cancel()
	}
	r.timers[name] = &entry{
		period:    period,
		prescaler: prescaler,
		count:     count,
		callback:  callback,
	}
	logger.Debug().
		Str("timer", name).
		Dur("period", period).
		Int("prescaler", prescaler).
		Int("count", count).
		Msg("Timer registered")

	return nil
}

// Deregister stops and removes one timer. Removing an absent name is a no-op.
func (r *Registry) Deregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.timers[name]; ok {
		if existing.running {
			existing.cancel()
		}
		delete(r.timers, name)
		logger.Debug().Str("timer", name).Msg("Timer removed")
	}
}

// Start begins periodic execution of one timer. Starting an already running
// timer is a no-op.
func (r *Registry) Start(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tmr, ok := r.timers[name]
	if !ok {
		return errors.New().WithData(ErrNotFound, name)
	}

	r.start(name, tmr)

	return nil
}

// StartAll starts every registered timer.
func (r *Registry) StartAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, tmr := range r.timers {
		r.start(name, tmr)
	}
}

// start launches the timer goroutine; the caller holds the registry lock.
func (r *Registry) start(name string, tmr *entry) {
	if tmr.running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	tmr.cancel = cancel
	tmr.running = true
	tmr.ticks.Store(0)

	go r.run(ctx, name, tmr)
	logger.Debug().Str("timer", name).Msg("Timer started")
}

// run advances one timer until cancelled or, for a count-limited timer, until
// its firings are exhausted. Cancellation is cooperative: checked between
// ticks and re-checked immediately before each invocation, so no new
// invocation begins after Stop returns while an in-flight one is allowed to
// complete.
func (r *Registry) run(ctx context.Context, name string, tmr *entry) {
	ticker := time.NewTicker(tmr.period)
	defer ticker.Stop()

	remaining := tmr.count
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if tmr.ticks.Add(1) < int64(tmr.prescaler) {
				continue
			}
			tmr.ticks.Store(0)

			if ctx.Err() != nil {
				return
			}
			fire(name, tmr.callback)

			if tmr.count > 0 {
				remaining--
				if remaining == 0 {
					r.exhaust(name, tmr)
					return
				}
			}
		}
	}
}

// exhaust marks a count-limited timer stopped after its final firing. The
// entry stays registered so it can be started again for another full run.
func (r *Registry) exhaust(name string, tmr *entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.timers[name]; !ok || current != tmr {
		return
	}
	tmr.cancel()
	tmr.running = false
	logger.Debug().Str("timer", name).Msg("Timer exhausted")
}

// fire invokes the callback inside its own failure boundary so a panicking
// callback cannot kill the timer goroutine or its siblings.
func fire(name string, callback Callback) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error().
				Str("timer", name).
				Interface("panic", rec).
				Msg("Timer callback panicked")
		}
	}()
	callback()
}

// Stop signals cancellation of one timer. Stopping a stopped timer is a
// no-op; stopping an unregistered name surfaces ErrNotFound.
func (r *Registry) Stop(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tmr, ok := r.timers[name]
	if !ok {
		return errors.New().WithData(ErrNotFound, name)
	}

	r.stop(name, tmr)

	return nil
}

// StopAll signals cancellation of every registered timer.
func (r *Registry) StopAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, tmr := range r.timers {
		r.stop(name, tmr)
	}
}

func (r *Registry) stop(name string, tmr *entry) {
	if !tmr.running {
		return
	}
	tmr.cancel()
	tmr.running = false
	logger.Debug().Str("timer", name).Msg("Timer stopped")
}

// IsRunning reports whether a named timer is currently started.
func (r *Registry) IsRunning(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	tmr, ok := r.timers[name]

	return ok && tmr.running
}

// Prescalers returns the current per-timer tick counters, a diagnostic
// snapshot of how far each timer has advanced toward its next firing.
func (r *Registry) Prescalers() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()

	counters := make(map[string]int, len(r.timers))
	for name, tmr := range r.timers {
		counters[name] = int(tmr.ticks.Load())
	}

	return counters
}

// Len returns the number of registered timers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.timers)
}
