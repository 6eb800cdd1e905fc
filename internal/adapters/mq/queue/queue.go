// Package queue defines the contract for enqueuing and consuming drawing
// attempts. The implementation is an in-memory bounded queue.
package queue

import (
	"context"
	"sync"

	"github.com/adnan911/Perfect-Square/internal/domain/model"
	"github.com/adnan911/Perfect-Square/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 100000
	defaultBufferSize    = 100000
)

// Attempt is the payload type flowing through the queue.
type Attempt = model.Attempt

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds an attempt to the queue.
	// Returns false if the queue is full or closed.
	Enqueue(ctx context.Context, a Attempt) bool

	// Dequeue returns a channel that receives attempts as they become
	// available. The channel is closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan Attempt

	// Len returns the current number of queued attempts.
	Len(ctx context.Context) int

	// Close shuts the queue down. No new attempts can be enqueued and the
	// dequeue channel drains then closes.
	Close() error

	// IsClosed reports whether the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	attempts   chan Attempt
	capacity   int
	bufferSize int
	mu         sync.RWMutex
	closed     bool
}

// NewInMemoryQueue creates an in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity:   defaultQueueCapacity,
		bufferSize: defaultBufferSize,
	}
	for _, opt := range opts {
		opt(q)
	}

	q.attempts = make(chan Attempt, q.bufferSize)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0.0)
	return q
}

// Enqueue adds an attempt to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, a Attempt) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return false
	}
	if len(q.attempts) >= q.capacity {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "capacity_exceeded")
		return false
	}

	select {
	case q.attempts <- a:
		metrics.RecordQueueEnqueue()
		q.publishGauges()
		return true
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return false
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return false
	}
}

// Dequeue returns a channel that receives attempts as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Attempt {
	out := make(chan Attempt)
	go func() {
		defer close(out)
		for a := range q.attempts {
			select {
			case out <- a:
				metrics.RecordQueueDequeue()
				q.publishGauges()
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued attempts.
func (q *InMemoryQueue) Len(_ context.Context) int {
	size := len(q.attempts)
	q.publishGauges()
	return size
}

// Close shuts the queue down.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.attempts)
	q.closed = true
	return nil
}

// IsClosed reports whether the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

func (q *InMemoryQueue) publishGauges() {
	size := len(q.attempts)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
}
