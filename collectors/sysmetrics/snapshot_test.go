package sysmetrics

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestRate(t *testing.T) {
	tests := []struct {
		name      string
		last, cur uint64
		dt        time.Duration
		want      float64
		tolerance float64
	}{
		{name: "one MB per second", last: 1_048_576, cur: 2_097_152, dt: time.Second, want: 1.0},
		{name: "decimal megabyte delta", last: 1_000_000, cur: 2_048_000, dt: time.Second, want: 1.0, tolerance: 1e-3},
		{name: "half second window", last: 0, cur: BytesPerMB, dt: 500 * time.Millisecond, want: 2.0},
		{name: "idle", last: 500, cur: 500, dt: time.Second, want: 0},
		{name: "single wrap", last: math.MaxUint64 - 1023, cur: BytesPerMB - 1024, dt: time.Second, want: 1.0},
		{name: "counter reset", last: 5 * BytesPerMB, cur: BytesPerMB, dt: time.Second, want: -4.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Rate(tt.last, tt.cur, tt.dt)
			if err != nil {
				t.Fatalf("Rate() error: %v", err)
			}
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("Rate() = %v, want %v (±%v)", got, tt.want, tt.tolerance)
			}
		})
	}
}

func TestRate_ZeroWindow(t *testing.T) {
	for _, dt := range []time.Duration{0, -time.Second} {
		got, err := Rate(0, 100, dt)
		if !errors.Is(err, ErrZeroWindow) {
			t.Errorf("Rate(dt=%v) error = %v, want ErrZeroWindow", dt, err)
		}
		if math.IsInf(got, 0) || math.IsNaN(got) {
			t.Errorf("Rate(dt=%v) = %v, want finite", dt, got)
		}
	}
}

func TestCounterSnapshot_Advance(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	var snap CounterSnapshot

	if snap.Seeded() {
		t.Fatal("zero snapshot should not be seeded")
	}

	_, ok, err := snap.Advance(Counters{In: 1_048_576, Out: 0}, t0)
	if err != nil || ok {
		t.Fatalf("seeding Advance() = ok %v, err %v; want false, nil", ok, err)
	}
	if !snap.Seeded() {
		t.Fatal("snapshot should be seeded after first Advance")
	}

	rate, ok, err := snap.Advance(Counters{In: 2_097_152, Out: 2 * BytesPerMB}, t0.Add(time.Second))
	if err != nil || !ok {
		t.Fatalf("Advance() = ok %v, err %v; want true, nil", ok, err)
	}
	if rate.In != 1.0 || rate.Out != 2.0 {
		t.Errorf("Advance() rate = %+v, want {1 2}", rate)
	}
	if !snap.Time.Equal(t0.Add(time.Second)) {
		t.Errorf("snapshot time = %v, want %v", snap.Time, t0.Add(time.Second))
	}
}

func TestCounterSnapshot_ZeroWindowKeepsSnapshot(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	var snap CounterSnapshot
	snap.Advance(Counters{In: 0, Out: 0}, t0)

	_, ok, err := snap.Advance(Counters{In: BytesPerMB, Out: BytesPerMB}, t0)
	if !errors.Is(err, ErrZeroWindow) || ok {
		t.Fatalf("Advance() at same instant = ok %v, err %v; want false, ErrZeroWindow", ok, err)
	}
	if snap.Counters != (Counters{}) || !snap.Time.Equal(t0) {
		t.Fatalf("snapshot changed on zero window: %+v", snap)
	}

	// The next reading measures over the full window since the kept snapshot.
	rate, ok, err := snap.Advance(Counters{In: 2 * BytesPerMB, Out: 0}, t0.Add(2*time.Second))
	if err != nil || !ok {
		t.Fatalf("Advance() = ok %v, err %v", ok, err)
	}
	if rate.In != 1.0 {
		t.Errorf("rate.In = %v, want 1.0", rate.In)
	}
}

func TestCounterSnapshot_Stale(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	var snap CounterSnapshot
	snap.Advance(Counters{In: 10}, t0)

	_, _, err := snap.Advance(Counters{In: 20}, t0.Add(-time.Second))
	if !errors.Is(err, ErrStaleSnapshot) {
		t.Fatalf("Advance() error = %v, want ErrStaleSnapshot", err)
	}
	if snap.Counters.In != 10 {
		t.Errorf("snapshot advanced on stale reading: %+v", snap.Counters)
	}
}
