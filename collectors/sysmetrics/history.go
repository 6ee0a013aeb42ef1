// Package sysmetrics samples host CPU, memory, disk I/O and network
// throughput. Each resource keeps a fixed-size ring buffer of recent values
// for sparkline rendering, and every sample is published on a
// collectors.Queue for the presenter.
package sysmetrics

import "sync"

// DefaultHistoryLength is the number of samples retained per resource.
// At the default one-second cadence this covers one minute.
const DefaultHistoryLength = 60

// Reader is the read-only view of a History handed to consumers.
type Reader[T any] interface {
	// Values returns a copy of the retained values, oldest first.
	Values() []T
	// Last returns the most recent value, if any.
	Last() (T, bool)
	Len() int
	Cap() int
}

// History is a bounded, insertion-ordered ring of the most recent values.
// Appending to a full history evicts exactly the oldest entry. A History has
// one writer (its sampling loop); readers receive copies.
type History[T any] struct {
	mu    sync.RWMutex
	buf   []T
	start int
	size  int
}

// NewHistory creates a history holding at most capacity values.
// A capacity below 1 is raised to 1.
func NewHistory[T any](capacity int) *History[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &History[T]{buf: make([]T, capacity)}
}

// Append adds v as the newest value, evicting the oldest when full.
func (h *History[T]) Append(v T) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.size < len(h.buf) {
		h.buf[(h.start+h.size)%len(h.buf)] = v
		h.size++
		return
	}
	h.buf[h.start] = v
	h.start = (h.start + 1) % len(h.buf)
}

// Values returns the retained values, oldest first.
func (h *History[T]) Values() []T {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]T, h.size)
	for i := 0; i < h.size; i++ {
		out[i] = h.buf[(h.start+i)%len(h.buf)]
	}
	return out
}

// Last returns the newest value.
func (h *History[T]) Last() (T, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var zero T
	if h.size == 0 {
		return zero, false
	}
	return h.buf[(h.start+h.size-1)%len(h.buf)], true
}

// Len returns the number of retained values.
func (h *History[T]) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.size
}

// Cap returns the configured capacity.
func (h *History[T]) Cap() int {
	return len(h.buf)
}

var _ Reader[float64] = (*History[float64])(nil)
