package sysmetrics

import (
	"context"
	"time"

	"gitlab.com/tinyland/lab/pulsemon/collectors"
)

// cpuCollector is the self-paced CPU loop: the measurement window is the
// cadence, so there is no pause between cycles.
type cpuCollector struct {
	s *Sampler
}

func (c *cpuCollector) Name() string            { return "cpu" }
func (c *cpuCollector) Description() string     { return "CPU utilization over a blocking window" }
func (c *cpuCollector) Interval() time.Duration { return 0 }

func (c *cpuCollector) Collect(ctx context.Context) ([]collectors.Sample, error) {
	smp, err := c.s.SampleCPU(ctx)
	if err != nil {
		return nil, err
	}
	return []collectors.Sample{smp}, nil
}

// memDiskCollector samples memory utilization and disk throughput together.
type memDiskCollector struct {
	s *Sampler
}

func (c *memDiskCollector) Name() string            { return "memdisk" }
func (c *memDiskCollector) Description() string     { return "Memory utilization and disk read/write rates" }
func (c *memDiskCollector) Interval() time.Duration { return c.s.cfg.Interval }

func (c *memDiskCollector) Collect(ctx context.Context) ([]collectors.Sample, error) {
	return c.s.SampleMemoryAndDisk(ctx)
}

// networkCollector samples network upload/download rates.
type networkCollector struct {
	s *Sampler
}

func (c *networkCollector) Name() string            { return "network" }
func (c *networkCollector) Description() string     { return "Network upload/download rates" }
func (c *networkCollector) Interval() time.Duration { return c.s.cfg.Interval }

func (c *networkCollector) Collect(ctx context.Context) ([]collectors.Sample, error) {
	return c.s.SampleNetwork(ctx)
}

// Compile-time interface compliance checks.
var (
	_ collectors.Collector = (*cpuCollector)(nil)
	_ collectors.Collector = (*memDiskCollector)(nil)
	_ collectors.Collector = (*networkCollector)(nil)
)
