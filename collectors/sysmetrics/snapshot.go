package sysmetrics

import (
	"errors"
	"time"

	"gitlab.com/tinyland/lab/pulsemon/collectors"
)

// BytesPerMB is the divisor used for every MB/s rate.
const BytesPerMB = 1024 * 1024

var (
	// ErrZeroWindow is returned when two readings share a timestamp, so no
	// finite rate exists. The cycle is skipped rather than emitting Inf/NaN.
	ErrZeroWindow = errors.New("sysmetrics: zero time window between counter readings")

	// ErrStaleSnapshot is returned when a reading is older than the snapshot
	// it would replace.
	ErrStaleSnapshot = errors.New("sysmetrics: counter reading older than snapshot")
)

// Counters is a pair of absolute byte counters.
//
// For disk In is bytes read and Out bytes written; for network In is bytes
// received and Out bytes sent.
type Counters struct {
	In  uint64
	Out uint64
}

// CounterSnapshot is the last-seen counters for one resource and when they
// were read. Disk and network each own a separate snapshot.
type CounterSnapshot struct {
	Counters Counters
	Time     time.Time
	seeded   bool
}

// Seeded reports whether the snapshot holds a reading.
func (s *CounterSnapshot) Seeded() bool {
	return s.seeded
}

// Advance derives the rates between the snapshot and cur, then replaces the
// snapshot with cur. The first call only seeds the snapshot and reports
// ok=false. On ErrZeroWindow or ErrStaleSnapshot the snapshot is left
// untouched.
func (s *CounterSnapshot) Advance(cur Counters, now time.Time) (rate collectors.Throughput, ok bool, err error) {
	if !s.seeded {
		s.Counters = cur
		s.Time = now
		s.seeded = true
		return collectors.Throughput{}, false, nil
	}

	dt := now.Sub(s.Time)
	if dt < 0 {
		return collectors.Throughput{}, false, ErrStaleSnapshot
	}

	in, err := Rate(s.Counters.In, cur.In, dt)
	if err != nil {
		return collectors.Throughput{}, false, err
	}
	out, err := Rate(s.Counters.Out, cur.Out, dt)
	if err != nil {
		return collectors.Throughput{}, false, err
	}

	s.Counters = cur
	s.Time = now
	return collectors.Throughput{In: in, Out: out}, true, nil
}

// Rate returns (cur-last) / (BytesPerMB * dt) in MB/s.
//
// The difference is taken modulo 2^64 and read as signed, so a counter that
// wraps once still yields the true delta while a counter that resets (device
// removed, interface recreated) yields a negative rate.
func Rate(last, cur uint64, dt time.Duration) (float64, error) {
	if dt <= 0 {
		return 0, ErrZeroWindow
	}
	delta := float64(int64(cur - last))
	return delta / (BytesPerMB * dt.Seconds()), nil
}
