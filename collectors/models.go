package collectors

import (
	"fmt"
	"time"
)

// Kind identifies which resource a Sample describes.
type Kind string

const (
	KindCPU     Kind = "cpu"
	KindMemory  Kind = "memory"
	KindDisk    Kind = "disk"
	KindNetwork Kind = "network"
)

// Kinds lists every Kind in display order.
var Kinds = []Kind{KindCPU, KindMemory, KindDisk, KindNetwork}

// Label returns the human-readable name for a Kind.
func (k Kind) Label() string {
	switch k {
	case KindCPU:
		return "CPU"
	case KindMemory:
		return "Memory"
	case KindDisk:
		return "Disk I/O"
	case KindNetwork:
		return "Network"
	default:
		return string(k)
	}
}

// IsPercent reports whether samples of this kind carry a percentage rather
// than a throughput pair.
func (k Kind) IsPercent() bool {
	return k == KindCPU || k == KindMemory
}

// Unit returns the display unit for values of this kind.
func (k Kind) Unit() string {
	if k.IsPercent() {
		return "%"
	}
	return "MB/s"
}

// Throughput is a pair of rates in MB/s (1 MB = 1024*1024 bytes).
//
// For disk samples In is the read rate and Out the write rate. For network
// samples In is the download rate and Out the upload rate.
type Throughput struct {
	In  float64 `json:"in"`
	Out float64 `json:"out"`
}

// Peak returns the larger of the two rates.
func (t Throughput) Peak() float64 {
	if t.In > t.Out {
		return t.In
	}
	return t.Out
}

// Sample is one observation of a resource metric.
//
// Percent is set for KindCPU and KindMemory; Rate is set for KindDisk and
// KindNetwork. Percent is passed through as the OS reports it.
type Sample struct {
	Kind    Kind       `json:"kind"`
	Time    time.Time  `json:"time"`
	Percent float64    `json:"percent,omitempty"`
	Rate    Throughput `json:"rate,omitempty"`
}

// NewCPUSample builds a cpu sample.
func NewCPUSample(at time.Time, percent float64) Sample {
	return Sample{Kind: KindCPU, Time: at, Percent: percent}
}

// NewMemorySample builds a memory sample.
func NewMemorySample(at time.Time, percent float64) Sample {
	return Sample{Kind: KindMemory, Time: at, Percent: percent}
}

// NewDiskSample builds a disk sample from read and write rates in MB/s.
func NewDiskSample(at time.Time, readMBs, writeMBs float64) Sample {
	return Sample{Kind: KindDisk, Time: at, Rate: Throughput{In: readMBs, Out: writeMBs}}
}

// NewNetworkSample builds a network sample from upload and download rates in MB/s.
func NewNetworkSample(at time.Time, uploadMBs, downloadMBs float64) Sample {
	return Sample{Kind: KindNetwork, Time: at, Rate: Throughput{In: downloadMBs, Out: uploadMBs}}
}

// ReadMBs returns the disk read rate.
func (s Sample) ReadMBs() float64 { return s.Rate.In }

// WriteMBs returns the disk write rate.
func (s Sample) WriteMBs() float64 { return s.Rate.Out }

// UploadMBs returns the network upload rate.
func (s Sample) UploadMBs() float64 { return s.Rate.Out }

// DownloadMBs returns the network download rate.
func (s Sample) DownloadMBs() float64 { return s.Rate.In }

// Value returns the single number used for threshold comparison: the
// percentage for percent kinds, the peak of the pair otherwise.
func (s Sample) Value() float64 {
	if s.Kind.IsPercent() {
		return s.Percent
	}
	return s.Rate.Peak()
}

// String formats the sample the way it appears in logs and indicators.
func (s Sample) String() string {
	switch s.Kind {
	case KindCPU:
		return fmt.Sprintf("CPU: %.1f%%", s.Percent)
	case KindMemory:
		return fmt.Sprintf("Memory: %.1f%%", s.Percent)
	case KindDisk:
		return fmt.Sprintf("Disk I/O: R: %.1f MB/s, W: %.1f MB/s", s.ReadMBs(), s.WriteMBs())
	case KindNetwork:
		return fmt.Sprintf("Network: ↑%.1f MB/s, ↓%.1f MB/s", s.UploadMBs(), s.DownloadMBs())
	default:
		return fmt.Sprintf("%s: %v", s.Kind, s.Value())
	}
}
