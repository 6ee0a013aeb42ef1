package collectors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

const (
	// DefaultErrorBackoff is the minimum wait after a failed cycle. It keeps
	// a self-paced collector whose source fails instantly from spinning.
	DefaultErrorBackoff = time.Second

	// DefaultStopTimeout is the maximum time Stop() will wait for goroutines
	// to finish before returning.
	DefaultStopTimeout = 5 * time.Second

	// errorRepeatWindow is how long an identical error stays suppressed.
	errorRepeatWindow = time.Hour
)

// errTracker deduplicates repeated identical errors per collector.
type errTracker struct {
	lastMsg    string
	lastTime   time.Time
	suppressed int64
}

// Runner starts and stops collector goroutines. Each registered collector
// runs its cycle in its own goroutine; cancellation is cooperative and is
// only observed between cycles and during the pause.
type Runner struct {
	registry *Registry
	logger   *slog.Logger

	// ErrorBackoff is the minimum pause after a failed cycle.
	ErrorBackoff time.Duration
	// StopTimeout bounds how long Stop waits.
	StopTimeout time.Duration

	cancel  context.CancelFunc
	wg      sync.WaitGroup
	stopped chan struct{}
	once    sync.Once

	errMu       sync.Mutex
	errTrackers map[string]*errTracker
}

// NewRunner creates a runner for the collectors in registry.
// If logger is nil, a no-op logger is used.
func NewRunner(registry *Registry, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{
		registry:     registry,
		logger:       logger,
		ErrorBackoff: DefaultErrorBackoff,
		StopTimeout:  DefaultStopTimeout,
		stopped:      make(chan struct{}),
		errTrackers:  make(map[string]*errTracker),
	}
}

// Start launches a goroutine for each registered collector. An empty
// registry is not an error; the runner simply does nothing.
//
// The provided context controls the lifetime of all collector goroutines.
// Cancelling it (or calling Stop) shuts them down after their current cycle.
func (r *Runner) Start(ctx context.Context) error {
	if r.cancel != nil {
		return fmt.Errorf("collectors: runner already started")
	}
	ctx, r.cancel = context.WithCancel(ctx)

	names := r.registry.List()
	if len(names) == 0 {
		close(r.stopped)
		return nil
	}

	for _, name := range names {
		c, ok := r.registry.Get(name)
		if !ok {
			continue
		}
		r.wg.Add(1)
		go r.runCollector(ctx, c)
	}

	go func() {
		r.wg.Wait()
		close(r.stopped)
	}()

	return nil
}

// Stop cancels the runner context and waits for all collector goroutines to
// finish, with a timeout to prevent indefinite blocking. It reports whether
// every goroutine exited in time.
func (r *Runner) Stop() bool {
	r.once.Do(func() {
		if r.cancel != nil {
			r.cancel()
		}
	})

	if r.cancel == nil {
		return true
	}

	select {
	case <-r.stopped:
		return true
	case <-time.After(r.StopTimeout):
		r.logger.Warn("collectors: runner stop timed out", "timeout", r.StopTimeout)
		return false
	}
}

// runCollector is the per-collector goroutine. The stop check sits at the top
// of each iteration; a cycle in progress always runs to completion.
func (r *Runner) runCollector(ctx context.Context, c Collector) {
	defer r.wg.Done()

	for {
		if ctx.Err() != nil {
			return
		}

		_, err := r.collect(ctx, c)

		pause := c.Interval()
		if err != nil && pause < r.ErrorBackoff {
			pause = r.ErrorBackoff
		}
		if pause <= 0 {
			continue
		}

		timer := time.NewTimer(pause)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// collect performs one cycle, records status and logs each published sample.
// It catches panics so one misbehaving collector cannot take down the runner.
func (r *Runner) collect(ctx context.Context, c Collector) (samples []Sample, err error) {
	name := c.Name()
	start := time.Now()

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("collectors: %s panicked: %v", name, rec)
		}

		latency := time.Since(start)
		r.registry.updateStatus(name, func(s *CollectorStatus) {
			s.LastRun = start
			s.RunCount++
			s.LastLatency = latency
			s.SampleCount += int64(len(samples))
			if err != nil {
				s.ErrorCount++
				s.LastError = err
				s.Healthy = false
			} else {
				s.LastError = nil
				s.Healthy = true
			}
		})

		for _, smp := range samples {
			r.logger.Info(smp.String(), "collector", name, "kind", string(smp.Kind))
		}
		if err != nil {
			r.logCollectorError(name, err)
		}
	}()

	return c.Collect(ctx)
}

// logCollectorError deduplicates repeated identical errors from the same
// collector. A message that recurs within an hour is suppressed, with a
// summary logged every 100 suppressions.
func (r *Runner) logCollectorError(name string, err error) {
	r.errMu.Lock()
	defer r.errMu.Unlock()

	msg := err.Error()
	tracker := r.errTrackers[name]
	if tracker == nil {
		tracker = &errTracker{}
		r.errTrackers[name] = tracker
	}
	now := time.Now()
	if msg == tracker.lastMsg && now.Sub(tracker.lastTime) < errorRepeatWindow {
		tracker.suppressed++
		if tracker.suppressed%100 == 0 {
			r.logger.Warn("collectors: cycle skipped (repeated)",
				"collector", name, "repeats", tracker.suppressed, "error", err)
		}
		return
	}
	if tracker.suppressed > 0 {
		r.logger.Warn("collectors: previous error repeated",
			"collector", name, "repeats", tracker.suppressed)
	}
	r.logger.Warn("collectors: cycle skipped", "collector", name, "error", err)
	tracker.lastMsg = msg
	tracker.lastTime = now
	tracker.suppressed = 0
}
