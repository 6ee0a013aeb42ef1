package collectors

import "sync"

// Queue is the hand-off point between the sampling loops and the consumer.
// Any number of goroutines may Publish; a single consumer Drains. Publish
// never blocks and the queue is unbounded, so a consumer that stops draining
// grows it without limit.
type Queue struct {
	mu    sync.Mutex
	items []Sample
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Publish appends a sample to the tail of the queue.
func (q *Queue) Publish(s Sample) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, s)
}

// Drain removes and returns every queued sample in publish order. It never
// blocks; an empty queue yields nil.
func (q *Queue) Drain() []Sample {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

// Len returns the number of samples waiting to be drained.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
