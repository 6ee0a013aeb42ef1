package status

import (
	"fmt"
	"time"

	"gitlab.com/tinyland/lab/pulsemon/collectors"
)

// Level represents how close a resource is to its threshold.
type Level int

const (
	LevelHealthy  Level = iota // Below the warning band
	LevelWarning               // Within 10% of the threshold
	LevelCritical              // Above the threshold
	LevelUnknown               // No sample yet
)

// WarningFraction is the fraction of a threshold at which a value turns
// from healthy to warning.
const WarningFraction = 0.9

// String returns the human-readable name for a Level.
func (l Level) String() string {
	switch l {
	case LevelHealthy:
		return "healthy"
	case LevelWarning:
		return "warning"
	case LevelCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// levelSeverity returns the sort order for levels. Higher is worse.
// Critical > Warning > Unknown > Healthy.
func levelSeverity(l Level) int {
	switch l {
	case LevelHealthy:
		return 0
	case LevelUnknown:
		return 1
	case LevelWarning:
		return 2
	case LevelCritical:
		return 3
	default:
		return 0
	}
}

// worstLevel returns whichever Level is more severe.
func worstLevel(a, b Level) Level {
	if levelSeverity(a) >= levelSeverity(b) {
		return a
	}
	return b
}

// Thresholds holds the alert limit per kind. Percent kinds are in %, rate
// kinds in MB/s.
type Thresholds struct {
	CPU     float64 `yaml:"cpu" json:"cpu"`
	Memory  float64 `yaml:"memory" json:"memory"`
	Disk    float64 `yaml:"disk" json:"disk"`
	Network float64 `yaml:"network" json:"network"`
}

// DefaultThresholds returns cpu 80%, memory 90%, disk 50 MB/s and network
// 20 MB/s.
func DefaultThresholds() Thresholds {
	return Thresholds{
		CPU:     80.0,
		Memory:  90.0,
		Disk:    50.0,
		Network: 20.0,
	}
}

// For returns the threshold for kind, or 0 for an unknown kind.
func (t Thresholds) For(kind collectors.Kind) float64 {
	switch kind {
	case collectors.KindCPU:
		return t.CPU
	case collectors.KindMemory:
		return t.Memory
	case collectors.KindDisk:
		return t.Disk
	case collectors.KindNetwork:
		return t.Network
	default:
		return 0
	}
}

// Set replaces the threshold for kind. Unknown kinds are ignored.
func (t *Thresholds) Set(kind collectors.Kind, v float64) {
	switch kind {
	case collectors.KindCPU:
		t.CPU = v
	case collectors.KindMemory:
		t.Memory = v
	case collectors.KindDisk:
		t.Disk = v
	case collectors.KindNetwork:
		t.Network = v
	}
}

// Validate checks every threshold is non-negative and percent thresholds do
// not exceed 100.
func (t Thresholds) Validate() error {
	for _, k := range collectors.Kinds {
		v := t.For(k)
		if v < 0 {
			return fmt.Errorf("%s threshold must be >= 0, got %v", k, v)
		}
		if k.IsPercent() && v > 100 {
			return fmt.Errorf("%s threshold must be <= 100, got %v", k, v)
		}
	}
	return nil
}

// Alert records a sample that crossed its threshold.
type Alert struct {
	Kind      collectors.Kind `json:"kind"`
	Value     float64         `json:"value"`
	Threshold float64         `json:"threshold"`
	At        time.Time       `json:"at"`
}

// String formats the alert for the log and the alerts panel.
func (a Alert) String() string {
	return fmt.Sprintf("%s above threshold: %s > %s",
		a.Kind.Label(), FormatValue(a.Kind, a.Value), FormatValue(a.Kind, a.Threshold))
}

// FormatValue renders v with the unit of kind, e.g. "85.0%" or "12.5 MB/s".
func FormatValue(kind collectors.Kind, v float64) string {
	if kind.IsPercent() {
		return fmt.Sprintf("%.1f%%", v)
	}
	return fmt.Sprintf("%.1f %s", v, kind.Unit())
}

// Evaluator compares samples against thresholds.
type Evaluator struct {
	thresholds Thresholds
}

// NewEvaluator creates an Evaluator with the given thresholds.
func NewEvaluator(t Thresholds) *Evaluator {
	return &Evaluator{thresholds: t}
}

// Thresholds returns the current thresholds.
func (e *Evaluator) Thresholds() Thresholds {
	return e.thresholds
}

// SetThreshold replaces the threshold for kind, clamped to [0, 100] for
// percent kinds and [0, +inf) for rates. It returns the stored value.
func (e *Evaluator) SetThreshold(kind collectors.Kind, v float64) float64 {
	if v < 0 {
		v = 0
	}
	if kind.IsPercent() && v > 100 {
		v = 100
	}
	e.thresholds.Set(kind, v)
	return e.thresholds.For(kind)
}

// Evaluate reports an alert when the sample's value is strictly greater than
// its threshold. For rate kinds the larger of the pair is compared.
func (e *Evaluator) Evaluate(s collectors.Sample) (Alert, bool) {
	threshold := e.thresholds.For(s.Kind)
	value := s.Value()
	if !(value > threshold) {
		return Alert{}, false
	}
	return Alert{
		Kind:      s.Kind,
		Value:     value,
		Threshold: threshold,
		At:        s.Time,
	}, true
}

// LevelFor grades value against the threshold for kind.
func (e *Evaluator) LevelFor(kind collectors.Kind, value float64) Level {
	threshold := e.thresholds.For(kind)
	switch {
	case value > threshold:
		return LevelCritical
	case value >= threshold*WarningFraction:
		return LevelWarning
	default:
		return LevelHealthy
	}
}

// Overall returns the worst level across the latest sample of each kind.
// Kinds without a sample count as unknown.
func (e *Evaluator) Overall(latest map[collectors.Kind]collectors.Sample) Level {
	overall := LevelHealthy
	for _, k := range collectors.Kinds {
		s, ok := latest[k]
		if !ok {
			overall = worstLevel(overall, LevelUnknown)
			continue
		}
		overall = worstLevel(overall, e.LevelFor(k, s.Value()))
	}
	return overall
}
