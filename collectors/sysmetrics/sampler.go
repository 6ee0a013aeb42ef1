package sysmetrics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"gitlab.com/tinyland/lab/pulsemon/collectors"
	"gitlab.com/tinyland/lab/pulsemon/collectors/retry"
)

const (
	// DefaultInterval is the pause between memory/disk and network cycles.
	DefaultInterval = 1 * time.Second

	// DefaultCPUWindow is the CPU measurement window. The CPU loop runs back
	// to back, so this is also its cadence.
	DefaultCPUWindow = 1 * time.Second
)

// Config controls sampling cadence and retention.
type Config struct {
	Interval      time.Duration
	CPUWindow     time.Duration
	HistoryLength int

	// Breaker backs off a loop whose reads keep failing. Zero fields take
	// retry.DefaultConfig values.
	Breaker retry.Config
}

// DefaultConfig returns the one-second, sixty-sample configuration.
func DefaultConfig() Config {
	return Config{
		Interval:      DefaultInterval,
		CPUWindow:     DefaultCPUWindow,
		HistoryLength: DefaultHistoryLength,
	}
}

// Histories bundles the read-only views of the four ring buffers.
type Histories struct {
	CPU     Reader[float64]
	Memory  Reader[float64]
	Disk    Reader[collectors.Throughput]
	Network Reader[collectors.Throughput]
}

// Sampler produces the stream of resource observations and owns their
// histories and counter snapshots. Each history and snapshot is written only
// by the loop that samples it.
type Sampler struct {
	cfg    Config
	source Source
	queue  *collectors.Queue
	logger *slog.Logger
	now    func() time.Time

	cpu     *History[float64]
	memory  *History[float64]
	disk    *History[collectors.Throughput]
	network *History[collectors.Throughput]

	// Separate snapshots, each with its own timestamp, so the two
	// independently-paced loops never share a time base.
	diskSnap CounterSnapshot
	netSnap  CounterSnapshot

	mu       sync.Mutex
	registry *collectors.Registry
	runner   *collectors.Runner
}

// New creates a Sampler reading from source and publishing to queue.
// Zero config fields take their defaults. If logger is nil, a no-op logger
// is used.
func New(cfg Config, source Source, queue *collectors.Queue, logger *slog.Logger) *Sampler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.CPUWindow <= 0 {
		cfg.CPUWindow = DefaultCPUWindow
	}
	if cfg.HistoryLength <= 0 {
		cfg.HistoryLength = DefaultHistoryLength
	}

	return &Sampler{
		cfg:     cfg,
		source:  source,
		queue:   queue,
		logger:  logger,
		now:     time.Now,
		cpu:     NewHistory[float64](cfg.HistoryLength),
		memory:  NewHistory[float64](cfg.HistoryLength),
		disk:    NewHistory[collectors.Throughput](cfg.HistoryLength),
		network: NewHistory[collectors.Throughput](cfg.HistoryLength),
	}
}

// Config returns the effective configuration.
func (s *Sampler) Config() Config {
	return s.cfg
}

// Histories returns read-only views of the four histories.
func (s *Sampler) Histories() Histories {
	return Histories{
		CPU:     s.cpu,
		Memory:  s.memory,
		Disk:    s.disk,
		Network: s.network,
	}
}

// SampleCPU blocks for the CPU window and returns utilization averaged over
// it. The measurement is not cancellable once started. The value is appended
// to the cpu history and published.
func (s *Sampler) SampleCPU(ctx context.Context) (collectors.Sample, error) {
	pct, err := s.source.CPUPercent(context.WithoutCancel(ctx), s.cfg.CPUWindow)
	if err != nil {
		return collectors.Sample{}, err
	}

	smp := collectors.NewCPUSample(s.now(), pct)
	s.cpu.Append(pct)
	s.queue.Publish(smp)
	return smp, nil
}

// SampleMemoryAndDisk reads memory utilization and disk counters. Memory is
// appended and published first; the disk rates since the previous disk
// snapshot follow. A failure in one half does not skip the other.
func (s *Sampler) SampleMemoryAndDisk(ctx context.Context) ([]collectors.Sample, error) {
	var out []collectors.Sample
	var errs []error

	if pct, err := s.source.MemoryPercent(ctx); err != nil {
		errs = append(errs, err)
	} else {
		smp := collectors.NewMemorySample(s.now(), pct)
		s.memory.Append(pct)
		s.queue.Publish(smp)
		out = append(out, smp)
	}

	smp, ok, err := s.sampleCounters(ctx, collectors.KindDisk, s.source.DiskCounters, &s.diskSnap, s.disk)
	if err != nil {
		errs = append(errs, err)
	} else if ok {
		out = append(out, smp)
	}

	return out, errors.Join(errs...)
}

// SampleNetwork reads the network counters and publishes upload/download
// rates since the previous network snapshot.
func (s *Sampler) SampleNetwork(ctx context.Context) ([]collectors.Sample, error) {
	smp, ok, err := s.sampleCounters(ctx, collectors.KindNetwork, s.source.NetCounters, &s.netSnap, s.network)
	if err != nil || !ok {
		return nil, err
	}
	return []collectors.Sample{smp}, nil
}

// sampleCounters reads one pair of counters and derives the rate against
// snap. It reports ok=false when nothing was emitted: the seeding read, or a
// zero-length window (snapshot kept, retried next cycle). On a read error the
// prior snapshot is kept.
func (s *Sampler) sampleCounters(
	ctx context.Context,
	kind collectors.Kind,
	read func(context.Context) (Counters, error),
	snap *CounterSnapshot,
	hist *History[collectors.Throughput],
) (collectors.Sample, bool, error) {
	cur, err := read(ctx)
	if err != nil {
		return collectors.Sample{}, false, err
	}
	now := s.now()

	rate, ok, err := snap.Advance(cur, now)
	switch {
	case errors.Is(err, ErrZeroWindow):
		s.logger.Debug("sysmetrics: zero window, rate skipped", "kind", string(kind))
		return collectors.Sample{}, false, nil
	case err != nil:
		return collectors.Sample{}, false, fmt.Errorf("%s: %w", kind, err)
	case !ok:
		s.logger.Debug("sysmetrics: counters seeded", "kind", string(kind))
		return collectors.Sample{}, false, nil
	}

	smp := collectors.Sample{Kind: kind, Time: now, Rate: rate}
	hist.Append(rate)
	s.queue.Publish(smp)
	return smp, true, nil
}

// Start launches the cpu, memory/disk and network loops. It returns once
// they are running. ctx bounds their lifetime; Stop ends them early.
func (s *Sampler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.runner != nil {
		return fmt.Errorf("sysmetrics: sampler already started")
	}

	breaker := s.cfg.Breaker
	if breaker.Logger == nil {
		breaker.Logger = s.logger
	}

	reg := collectors.NewRegistry()
	for _, c := range []collectors.Collector{
		&cpuCollector{s: s},
		&memDiskCollector{s: s},
		&networkCollector{s: s},
	} {
		if err := reg.Register(retry.New(c, breaker)); err != nil {
			return fmt.Errorf("sysmetrics: %w", err)
		}
	}

	runner := collectors.NewRunner(reg, s.logger)
	runner.ErrorBackoff = s.cfg.Interval
	if err := runner.Start(ctx); err != nil {
		return fmt.Errorf("sysmetrics: %w", err)
	}

	s.registry = reg
	s.runner = runner
	s.logger.Info("sysmetrics: sampler started",
		"interval", s.cfg.Interval,
		"cpu_window", s.cfg.CPUWindow,
		"history_length", s.cfg.HistoryLength,
	)
	return nil
}

// Stop signals every loop to end after its current cycle and waits for
// them. An in-flight CPU measurement finishes first. It reports whether all
// loops exited before the runner's stop timeout.
func (s *Sampler) Stop() bool {
	s.mu.Lock()
	runner := s.runner
	s.mu.Unlock()

	if runner == nil {
		return true
	}
	clean := runner.Stop()
	s.logger.Info("sysmetrics: sampler stopped", "clean", clean)
	return clean
}

// Status returns per-loop health, or nil before Start.
func (s *Sampler) Status() []collectors.CollectorStatus {
	s.mu.Lock()
	reg := s.registry
	s.mu.Unlock()

	if reg == nil {
		return nil
	}
	return reg.AllStatus()
}
