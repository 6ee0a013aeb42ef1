// Package retry provides a circuit breaker that wraps sampling loops so a
// counter source that keeps failing (no block devices in a container, a
// missing /proc file) is probed with growing gaps instead of every cycle.
package retry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"gitlab.com/tinyland/lab/pulsemon/collectors"
)

// Compile-time check: Breaker satisfies the Collector interface.
var _ collectors.Collector = (*Breaker)(nil)

// ErrOpen is returned, wrapped with the collector name, for a cycle the
// breaker skipped.
var ErrOpen = errors.New("retry: circuit open")

// State represents the circuit breaker state.
type State int

const (
	// StateClosed is normal operation; every cycle reaches the collector.
	StateClosed State = iota
	// StateOpen means the failure limit was hit; cycles are skipped.
	StateOpen
	// StateHalfOpen lets a single probe cycle through.
	StateHalfOpen
)

// String returns the human-readable state name.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Config configures the breaker.
type Config struct {
	// MaxFailures is the number of consecutive failed cycles before opening.
	MaxFailures int
	// ResetTimeout is the first wait before a probe.
	ResetTimeout time.Duration
	// MaxResetTimeout caps the backoff.
	MaxResetTimeout time.Duration
	// BackoffMultiplier grows the wait after each failed probe.
	BackoffMultiplier float64
	// Logger for state changes. Nil is safe (a discard logger is used).
	Logger *slog.Logger
}

// DefaultConfig returns the breaker settings used by the sampler.
func DefaultConfig() Config {
	return Config{
		MaxFailures:       5,
		ResetTimeout:      30 * time.Second,
		MaxResetTimeout:   10 * time.Minute,
		BackoffMultiplier: 2.0,
	}
}

// Stats holds breaker counters for inspection.
type Stats struct {
	State            State
	ConsecutiveFails int
	TotalFailures    int
	TotalSuccesses   int
	Skipped          int
	LastFailure      time.Time
	CurrentTimeout   time.Duration
}

// Breaker wraps a collectors.Collector. A cycle counts as failed only when
// it returns an error and no samples, so a partially successful memory/disk
// cycle never trips it.
type Breaker struct {
	collector collectors.Collector
	config    Config
	logger    *slog.Logger
	now       func() time.Time

	mu             sync.Mutex
	state          State
	failures       int
	lastFailure    time.Time
	currentTimeout time.Duration
	totalFailures  int
	totalSuccesses int
	skipped        int
}

// New wraps c. Zero config fields take DefaultConfig values.
func New(c collectors.Collector, cfg Config) *Breaker {
	def := DefaultConfig()
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = def.MaxFailures
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = def.ResetTimeout
	}
	if cfg.MaxResetTimeout < cfg.ResetTimeout {
		cfg.MaxResetTimeout = max(def.MaxResetTimeout, cfg.ResetTimeout)
	}
	if cfg.BackoffMultiplier < 1 {
		cfg.BackoffMultiplier = def.BackoffMultiplier
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Breaker{
		collector:      c,
		config:         cfg,
		logger:         logger,
		now:            time.Now,
		state:          StateClosed,
		currentTimeout: cfg.ResetTimeout,
	}
}

// Name delegates to the wrapped collector.
func (b *Breaker) Name() string {
	return b.collector.Name()
}

// Description delegates to the wrapped collector, appending the circuit state.
func (b *Breaker) Description() string {
	return fmt.Sprintf("%s [circuit: %s]", b.collector.Description(), b.State())
}

// Interval delegates to the wrapped collector.
func (b *Breaker) Interval() time.Duration {
	return b.collector.Interval()
}

// Collect runs the wrapped collector unless the circuit is open.
func (b *Breaker) Collect(ctx context.Context) ([]collectors.Sample, error) {
	b.mu.Lock()
	if b.state == StateOpen {
		if b.now().Sub(b.lastFailure) < b.currentTimeout {
			b.skipped++
			b.mu.Unlock()
			return nil, fmt.Errorf("%s: %w", b.collector.Name(), ErrOpen)
		}
		b.state = StateHalfOpen
		b.logger.Info("retry: probing collector", "collector", b.collector.Name())
	}
	probing := b.state == StateHalfOpen
	b.mu.Unlock()

	samples, err := b.collector.Collect(ctx)
	switch {
	case err != nil && len(samples) == 0:
		// A cycle cut short by shutdown says nothing about the source.
		if ctx.Err() == nil {
			b.recordFailure(probing, err)
		}
	default:
		b.recordSuccess(probing)
	}
	return samples, err
}

func (b *Breaker) recordFailure(probing bool, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	b.totalFailures++
	b.lastFailure = b.now()

	switch {
	case probing:
		b.currentTimeout = time.Duration(float64(b.currentTimeout) * b.config.BackoffMultiplier)
		if b.currentTimeout > b.config.MaxResetTimeout {
			b.currentTimeout = b.config.MaxResetTimeout
		}
		b.state = StateOpen
		b.logger.Warn("retry: probe failed, circuit re-opened",
			"collector", b.collector.Name(),
			"failures", b.failures,
			"next_probe", b.currentTimeout,
			"error", err,
		)
	case b.failures >= b.config.MaxFailures:
		b.state = StateOpen
		b.currentTimeout = b.config.ResetTimeout
		b.logger.Warn("retry: circuit opened",
			"collector", b.collector.Name(),
			"failures", b.failures,
			"next_probe", b.currentTimeout,
			"error", err,
		)
	}
}

func (b *Breaker) recordSuccess(probing bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if probing {
		b.logger.Info("retry: circuit closed", "collector", b.collector.Name())
	}
	b.state = StateClosed
	b.failures = 0
	b.totalSuccesses++
	b.currentTimeout = b.config.ResetTimeout
}

// State returns the current circuit state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Stats returns a snapshot of the breaker counters.
func (b *Breaker) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Stats{
		State:            b.state,
		ConsecutiveFails: b.failures,
		TotalFailures:    b.totalFailures,
		TotalSuccesses:   b.totalSuccesses,
		Skipped:          b.skipped,
		LastFailure:      b.lastFailure,
		CurrentTimeout:   b.currentTimeout,
	}
}

// Reset forces the breaker closed and clears the failure streak.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state = StateClosed
	b.failures = 0
	b.currentTimeout = b.config.ResetTimeout
}
