// Package collectors provides the sample model, the event queue and the
// runner that drives pulsemon's sampling loops. Each collector is one
// independent repeating cycle; the runner gives each its own goroutine and
// keeps per-collector health.
package collectors

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Collector is one repeating sampling cycle.
type Collector interface {
	// Name returns the collector's unique identifier (e.g. "cpu", "memdisk").
	// Names must be unique within a Registry.
	Name() string

	// Description returns a human-readable description of what this collector gathers.
	Description() string

	// Interval returns the pause between the end of one cycle and the start
	// of the next. Zero means the cycle is self-paced (for example a CPU
	// measurement that blocks for its own window).
	Interval() time.Duration

	// Collect runs one cycle and returns the samples it published. A non-nil
	// error means part or all of the cycle was skipped; samples returned
	// alongside an error were still published.
	Collect(ctx context.Context) ([]Sample, error)
}

// CollectorStatus tracks the run history of a single collector.
type CollectorStatus struct {
	Name        string
	Healthy     bool
	LastRun     time.Time
	LastLatency time.Duration
	RunCount    int64
	ErrorCount  int64
	SampleCount int64
	LastError   error
}

// Registry holds registered collectors and their status.
type Registry struct {
	mu         sync.RWMutex
	collectors map[string]Collector
	status     map[string]*CollectorStatus
}

// NewRegistry creates a new empty collector registry.
func NewRegistry() *Registry {
	return &Registry{
		collectors: make(map[string]Collector),
		status:     make(map[string]*CollectorStatus),
	}
}

// Register adds a collector. It is an error to register two collectors with
// the same name.
func (r *Registry) Register(c Collector) error {
	if c == nil {
		return fmt.Errorf("collectors: register nil collector")
	}
	name := c.Name()
	if name == "" {
		return fmt.Errorf("collectors: collector name must not be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.collectors[name]; exists {
		return fmt.Errorf("collectors: %q already registered", name)
	}
	r.collectors[name] = c
	r.status[name] = &CollectorStatus{Name: name}
	return nil
}

// Get returns a collector by name. The second return value indicates
// whether the collector was found.
func (r *Registry) Get(name string) (Collector, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.collectors[name]
	return c, ok
}

// List returns the registered collector names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.collectors))
	for name := range r.collectors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Status returns a copy of the named collector's status.
func (r *Registry) Status(name string) (CollectorStatus, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.status[name]
	if !ok {
		return CollectorStatus{}, false
	}
	return *s, true
}

// AllStatus returns a copy of every collector's status, sorted by name.
func (r *Registry) AllStatus() []CollectorStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]CollectorStatus, 0, len(r.status))
	for _, s := range r.status {
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// updateStatus applies fn to the named collector's status under the lock.
func (r *Registry) updateStatus(name string, fn func(*CollectorStatus)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.status[name]; ok {
		fn(s)
	}
}
