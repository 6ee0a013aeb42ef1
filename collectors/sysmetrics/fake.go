package sysmetrics

import (
	"context"
	"sync"
	"time"

	"gitlab.com/tinyland/lab/pulsemon/collectors"
)

// FakeSource is a scriptable Source for tests and demos. Values are set
// directly; CPUPercent still blocks for its window so cadence behaves like
// the host source.
type FakeSource struct {
	mu     sync.Mutex
	cpu    float64
	memory float64
	disk   Counters
	net    Counters
	errs   map[collectors.Kind]error
	calls  map[collectors.Kind]int
}

// NewFakeSource returns a FakeSource with all readings at zero.
func NewFakeSource() *FakeSource {
	return &FakeSource{
		errs:  make(map[collectors.Kind]error),
		calls: make(map[collectors.Kind]int),
	}
}

// SetCPU sets the value returned by CPUPercent.
func (f *FakeSource) SetCPU(pct float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cpu = pct
}

// SetMemory sets the value returned by MemoryPercent.
func (f *FakeSource) SetMemory(pct float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.memory = pct
}

// SetDisk sets the absolute disk counters.
func (f *FakeSource) SetDisk(c Counters) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disk = c
}

// AddDisk advances the disk counters by read and written bytes.
func (f *FakeSource) AddDisk(read, written uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disk.In += read
	f.disk.Out += written
}

// SetNet sets the absolute network counters.
func (f *FakeSource) SetNet(c Counters) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.net = c
}

// AddNet advances the network counters by received and sent bytes.
func (f *FakeSource) AddNet(recv, sent uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.net.In += recv
	f.net.Out += sent
}

// SetError makes reads for kind fail with err until cleared with nil.
func (f *FakeSource) SetError(kind collectors.Kind, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.errs, kind)
		return
	}
	f.errs[kind] = err
}

// Calls returns how many reads were made for kind.
func (f *FakeSource) Calls(kind collectors.Kind) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[kind]
}

func (f *FakeSource) record(kind collectors.Kind) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[kind]++
	return f.errs[kind]
}

// CPUPercent implements Source.
func (f *FakeSource) CPUPercent(ctx context.Context, window time.Duration) (float64, error) {
	if window > 0 {
		timer := time.NewTimer(window)
		select {
		case <-ctx.Done():
			timer.Stop()
			return 0, ctx.Err()
		case <-timer.C:
		}
	}
	if err := f.record(collectors.KindCPU); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cpu, nil
}

// MemoryPercent implements Source.
func (f *FakeSource) MemoryPercent(ctx context.Context) (float64, error) {
	if err := f.record(collectors.KindMemory); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.memory, nil
}

// DiskCounters implements Source.
func (f *FakeSource) DiskCounters(ctx context.Context) (Counters, error) {
	if err := f.record(collectors.KindDisk); err != nil {
		return Counters{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.disk, nil
}

// NetCounters implements Source.
func (f *FakeSource) NetCounters(ctx context.Context) (Counters, error) {
	if err := f.record(collectors.KindNetwork); err != nil {
		return Counters{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.net, nil
}

var _ Source = (*FakeSource)(nil)
