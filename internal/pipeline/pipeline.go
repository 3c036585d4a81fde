// Package pipeline couples the three core modules into the typical
// composition: a timer periodically invokes a sampling callback, the raw
// reading is smoothed by a statfilter and the smoothed result is compared
// against the registered triggers.
package pipeline

import (
	"context"
	"sync"
	"time"

	"codeberg.org/mutker/sensorctl/internal/errors"
	"codeberg.org/mutker/sensorctl/internal/logger"
	"codeberg.org/mutker/sensorctl/internal/statfilter"
	"codeberg.org/mutker/sensorctl/internal/timer"
	"codeberg.org/mutker/sensorctl/internal/trigger"
)

// Sampler produces one raw reading per scheduled tick. A failing sample is
// logged and skipped; the loop keeps running.
type Sampler func(ctx context.Context) (float64, error)

// ResultFunc receives every accepted reading together with its smoothed
// result, after trigger evaluation. Used to forward values to MQTT or
// telemetry sinks.
type ResultFunc func(raw, smoothed float64, fired []string)

type Config struct {
	// Name identifies the pipeline; it doubles as the timer name.
	Name string
	// Interval is the base sampling period.
	Interval time.Duration
	// Prescaler skips ticks: the sampler runs every Prescaler-th elapse
	// of Interval. 1 samples every interval.
	Prescaler int
}

func DefaultConfig() Config {
	return Config{
		Name:      "sampling",
		Interval:  2 * time.Second,
		Prescaler: 1,
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()
	if c.Name == "" || c.Interval <= 0 || c.Prescaler < 1 {
		return errFactory.WithData(ErrInvalidConfig, c.Name)
	}
	return nil
}

// Pipeline owns the serialization of the shared filter and trigger registry:
// those are not thread-safe themselves, so every tick runs under one mutex.
type Pipeline struct {
	cfg      Config
	sampler  Sampler
	filter   statfilter.Filter
	triggers *trigger.Registry
	timers   *timer.Registry
	onResult ResultFunc

	mu sync.Mutex
}

func New(cfg Config, sampler Sampler, filter statfilter.Filter,
	triggers *trigger.Registry, timers *timer.Registry,
) (*Pipeline, error) {
	errFactory := errors.New()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sampler == nil {
		return nil, errFactory.New(ErrNilSampler)
	}
	if filter == nil {
		return nil, errFactory.New(ErrNilFilter)
	}
	if triggers == nil || timers == nil {
		return nil, errFactory.New(ErrNilRegistry)
	}

	return &Pipeline{
		cfg:      cfg,
		sampler:  sampler,
		filter:   filter,
		triggers: triggers,
		timers:   timers,
	}, nil
}

// OnResult installs the forwarding hook. Must be called before Start.
func (p *Pipeline) OnResult(fn ResultFunc) {
	p.onResult = fn
}

// Start registers the sampling task with the timer registry and begins
// periodic execution.
func (p *Pipeline) Start() error {
	if err := p.timers.Register(p.cfg.Name, p.cfg.Interval, p.tick, p.cfg.Prescaler); err != nil {
		return err
	}

	return p.timers.Start(p.cfg.Name)
}

// Stop signals cancellation of the sampling task. An in-flight tick is
// allowed to complete.
func (p *Pipeline) Stop() error {
	return p.timers.Stop(p.cfg.Name)
}

// Triggers returns the trigger registry evaluated on every tick. Mutate it
// only while the pipeline is stopped; tick execution does not lock against
// external registry writes.
func (p *Pipeline) Triggers() *trigger.Registry {
	return p.triggers
}

func (p *Pipeline) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), p.cfg.Interval)
	defer cancel()

	raw, err := p.sampler(ctx)
	if err != nil {
		logger.Warn().Err(err).Str("pipeline", p.cfg.Name).Msg("Sampling failed, skipping tick")
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.filter.Ingest(raw) {
		logger.Debug().Float64("value", raw).Str("pipeline", p.cfg.Name).Msg("Reading rejected")
		return
	}

	smoothed, err := p.filter.Result()
	if err != nil {
		logger.Warn().Err(err).Str("pipeline", p.cfg.Name).Msg("No result available")
		return
	}

	fired := p.triggers.Exec(smoothed)

	logger.Debug().
		Str("pipeline", p.cfg.Name).
		Float64("raw", raw).
		Float64("smoothed", smoothed).
		Strs("fired", fired).
		Msg("Tick processed")

	if p.onResult != nil {
		p.onResult(raw, smoothed, fired)
	}
}
