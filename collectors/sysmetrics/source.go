package sysmetrics

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/common"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/net"
)

// Source reads raw OS counters. Implementations must be safe for use by
// the three sampling goroutines at once.
type Source interface {
	// CPUPercent blocks for window and returns system-wide utilization
	// averaged over it.
	CPUPercent(ctx context.Context, window time.Duration) (float64, error)
	// MemoryPercent returns the virtual memory utilization percentage.
	MemoryPercent(ctx context.Context) (float64, error)
	// DiskCounters returns cumulative bytes read and written across all disks.
	DiskCounters(ctx context.Context) (Counters, error)
	// NetCounters returns cumulative bytes received and sent across all interfaces.
	NetCounters(ctx context.Context) (Counters, error)
}

// HostSource reads counters from the local host via gopsutil.
type HostSource struct{}

// NewHostSource returns a Source backed by the local host.
func NewHostSource() *HostSource {
	return &HostSource{}
}

// CPUPercent implements Source.
func (HostSource) CPUPercent(ctx context.Context, window time.Duration) (float64, error) {
	pcts, err := cpu.PercentWithContext(ctx, window, false)
	if err != nil {
		return 0, fmt.Errorf("sysmetrics: cpu percent: %w", err)
	}
	if len(pcts) == 0 {
		return 0, fmt.Errorf("sysmetrics: cpu percent: no data")
	}
	return pcts[0], nil
}

// MemoryPercent implements Source. It reports (total - available) / total,
// so reclaimable page cache does not count as used.
func (HostSource) MemoryPercent(ctx context.Context) (float64, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("sysmetrics: virtual memory: %w", err)
	}
	return availablePercent(vm.Total, vm.Available), nil
}

func availablePercent(total, available uint64) float64 {
	if total == 0 || available >= total {
		return 0
	}
	return float64(total-available) / float64(total) * 100
}

// DiskCounters implements Source. Counters are summed over whole storage
// devices only; partitions are skipped so their bytes are not counted
// twice.
func (HostSource) DiskCounters(ctx context.Context) (Counters, error) {
	stats, err := disk.IOCountersWithContext(ctx)
	if err != nil {
		return Counters{}, fmt.Errorf("sysmetrics: disk io counters: %w", err)
	}
	var c Counters
	for name, s := range stats {
		if !isStorageDevice(ctx, name) {
			continue
		}
		c.In += s.ReadBytes
		c.Out += s.WriteBytes
	}
	return c, nil
}

// isStorageDevice reports whether name is a whole block device. On Linux
// only devices listed under $HOST_SYS/block qualify (partitions live below
// their parent). Other platforms report whole disks only.
func isStorageDevice(ctx context.Context, name string) bool {
	if runtime.GOOS != "linux" {
		return true
	}
	_, err := os.Stat(hostSys(ctx, "block", strings.ReplaceAll(name, "/", "!")))
	return err == nil
}

// hostSys resolves the sysfs root the way gopsutil does: a common.EnvMap on
// ctx, then $HOST_SYS, then /sys.
func hostSys(ctx context.Context, parts ...string) string {
	var root string
	if env, ok := ctx.Value(common.EnvKey).(common.EnvMap); ok {
		root = env[common.HostSysEnvKey]
	}
	if root == "" {
		root = os.Getenv("HOST_SYS")
	}
	if root == "" {
		root = "/sys"
	}
	return filepath.Join(append([]string{root}, parts...)...)
}

// NetCounters implements Source.
func (HostSource) NetCounters(ctx context.Context) (Counters, error) {
	stats, err := net.IOCountersWithContext(ctx, false)
	if err != nil {
		return Counters{}, fmt.Errorf("sysmetrics: net io counters: %w", err)
	}
	if len(stats) == 0 {
		return Counters{}, fmt.Errorf("sysmetrics: net io counters: no data")
	}
	return Counters{In: stats[0].BytesRecv, Out: stats[0].BytesSent}, nil
}

var _ Source = HostSource{}
