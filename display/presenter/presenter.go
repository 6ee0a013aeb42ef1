// Package presenter is the consumer side of the sample queue. Each tick it
// drains whatever the sampling loops have published, keeps the latest value
// per kind, raises threshold alerts and fans the batch out to sinks. The
// dashboard and headless mode both drive it.
package presenter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"gitlab.com/tinyland/lab/pulsemon/collectors"
	"gitlab.com/tinyland/lab/pulsemon/status"
)

// MaxRecentAlerts bounds the recent-alerts list.
const MaxRecentAlerts = 20

// Threshold adjustment steps.
const (
	PercentStep = 5.0
	RateStep    = 1.0
)

// Sink receives every drained batch, in publication order.
type Sink interface {
	Name() string
	Consume(ctx context.Context, batch []collectors.Sample) error
}

// AlertObserver is implemented by sinks that also want alerts.
type AlertObserver interface {
	ObserveAlert(a status.Alert)
}

// Stats counts presenter activity since construction.
type Stats struct {
	Ticks          uint64
	Samples        uint64
	Alerts         uint64
	SinkFailures   uint64
	TickFailures   uint64
	RenderFailures uint64
	LastTick       time.Time
}

// TickResult is what one Tick consumed.
type TickResult struct {
	Samples []collectors.Sample
	Alerts  []status.Alert
}

// Presenter consumes the queue. All methods are safe for concurrent use, but
// Tick is expected to be driven from a single goroutine.
type Presenter struct {
	queue  *collectors.Queue
	logger *slog.Logger

	mu     sync.Mutex
	eval   *status.Evaluator
	sinks  []Sink
	latest map[collectors.Kind]collectors.Sample
	alerts []status.Alert
	stats  Stats
}

// New creates a Presenter draining queue. If logger is nil, a no-op logger
// is used.
func New(queue *collectors.Queue, thresholds status.Thresholds, logger *slog.Logger, sinks ...Sink) *Presenter {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Presenter{
		queue:  queue,
		logger: logger,
		eval:   status.NewEvaluator(thresholds),
		sinks:  sinks,
		latest: make(map[collectors.Kind]collectors.Sample),
	}
}

// AddSink appends a sink. It receives batches from the next Tick on.
func (p *Presenter) AddSink(s Sink) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sinks = append(p.sinks, s)
}

// Tick drains every available sample without blocking, updates the latest
// value per kind, evaluates thresholds and forwards the batch to sinks.
// A panic inside the tick is recovered, logged and counted.
func (p *Presenter) Tick(ctx context.Context, now time.Time) (res TickResult) {
	p.mu.Lock()
	defer p.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			p.stats.TickFailures++
			p.logger.Error("presenter: tick panicked", "panic", fmt.Sprint(r))
		}
	}()

	p.stats.Ticks++
	p.stats.LastTick = now

	batch := p.queue.Drain()
	if len(batch) == 0 {
		return res
	}
	res.Samples = batch
	p.stats.Samples += uint64(len(batch))

	for _, smp := range batch {
		p.latest[smp.Kind] = smp
		a, ok := p.eval.Evaluate(smp)
		if !ok {
			continue
		}
		res.Alerts = append(res.Alerts, a)
		p.recordAlert(a)
	}

	for _, s := range p.sinks {
		p.consume(ctx, s, batch, res.Alerts)
	}
	return res
}

func (p *Presenter) recordAlert(a status.Alert) {
	p.stats.Alerts++
	p.alerts = append(p.alerts, a)
	if len(p.alerts) > MaxRecentAlerts {
		p.alerts = p.alerts[len(p.alerts)-MaxRecentAlerts:]
	}
	p.logger.Warn(a.String(),
		"kind", string(a.Kind),
		"value", a.Value,
		"threshold", a.Threshold,
	)
}

// consume hands one batch to one sink, isolating its failures from the
// other sinks.
func (p *Presenter) consume(ctx context.Context, s Sink, batch []collectors.Sample, alerts []status.Alert) {
	defer func() {
		if r := recover(); r != nil {
			p.stats.SinkFailures++
			p.logger.Error("presenter: sink panicked", "sink", s.Name(), "panic", fmt.Sprint(r))
		}
	}()

	if err := s.Consume(ctx, batch); err != nil {
		p.stats.SinkFailures++
		p.logger.Error("presenter: sink failed", "sink", s.Name(), "error", err)
	}
	if obs, ok := s.(AlertObserver); ok {
		for _, a := range alerts {
			obs.ObserveAlert(a)
		}
	}
}

// SafeRender calls render and returns its output. A panicking render is
// recovered, counted as a redraw failure and replaced with a one-line
// notice so the next frame can still draw.
func (p *Presenter) SafeRender(render func() string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			p.mu.Lock()
			p.stats.RenderFailures++
			p.mu.Unlock()
			p.logger.Error("presenter: render panicked", "panic", fmt.Sprint(r))
			out = fmt.Sprintf("render failed: %v", r)
		}
	}()
	return render()
}

// Latest returns the most recent sample of kind.
func (p *Presenter) Latest(kind collectors.Kind) (collectors.Sample, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.latest[kind]
	return s, ok
}

// Alerts returns the recent alerts, oldest first.
func (p *Presenter) Alerts() []status.Alert {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]status.Alert, len(p.alerts))
	copy(out, p.alerts)
	return out
}

// Stats returns a copy of the activity counters.
func (p *Presenter) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// Thresholds returns the current thresholds.
func (p *Presenter) Thresholds() status.Thresholds {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.eval.Thresholds()
}

// SetThreshold replaces the threshold for kind and returns the stored,
// clamped value. It applies from the next Tick.
func (p *Presenter) SetThreshold(kind collectors.Kind, v float64) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	stored := p.eval.SetThreshold(kind, v)
	p.logger.Info("presenter: threshold changed", "kind", string(kind), "threshold", stored)
	return stored
}

// AdjustThreshold moves the threshold for kind by steps of Step(kind).
func (p *Presenter) AdjustThreshold(kind collectors.Kind, steps int) float64 {
	cur := p.Thresholds().For(kind)
	return p.SetThreshold(kind, cur+float64(steps)*Step(kind))
}

// Step returns the adjustment step for kind.
func Step(kind collectors.Kind) float64 {
	if kind.IsPercent() {
		return PercentStep
	}
	return RateStep
}

// Level grades the latest sample of kind, or LevelUnknown before one arrives.
func (p *Presenter) Level(kind collectors.Kind) status.Level {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.latest[kind]
	if !ok {
		return status.LevelUnknown
	}
	return p.eval.LevelFor(kind, s.Value())
}

// Overall returns the worst level across all kinds.
func (p *Presenter) Overall() status.Level {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.eval.Overall(p.latest)
}
