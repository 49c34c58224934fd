package engine

import (
	"sync"

	"github.com/roach88/airdraw/internal/model"
)

// inbound is one payload handed over by the transport.
type inbound struct {
	Payload []byte
	From    model.Peer
}

// inbox is a thread-safe FIFO queue of payloads waiting for the Run loop.
//
// The queue is unbounded so transport callbacks never block.
//
// The queue uses a channel for signaling to enable context-aware waiting
// in the Run loop (prevents goroutine hangs on context cancellation).
type inbox struct {
	mu      sync.Mutex
	pending []inbound
	closed  bool
	signal  chan struct{} // Signals availability (buffered, size 1)
}

func newInbox() *inbox {
	return &inbox{
		pending: make([]inbound, 0, 64),
		signal:  make(chan struct{}, 1),
	}
}

// Enqueue adds a payload to the back of the queue.
// Thread-safe: may be called from any goroutine.
// Returns false if the queue is closed.
func (q *inbox) Enqueue(m inbound) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.pending = append(q.pending, m)

	// Non-blocking - buffer of 1 coalesces multiple signals
	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// TryDequeue attempts to dequeue without blocking.
// Returns (inbound{}, false) if queue is empty.
func (q *inbox) TryDequeue() (inbound, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) == 0 {
		return inbound{}, false
	}

	m := q.pending[0]

	// Release the payload buffer for GC.
	q.pending[0] = inbound{}

	if len(q.pending) == 1 {
		q.pending = q.pending[:0]
	} else {
		q.pending = q.pending[1:]
	}

	return m, true
}

// Wait returns a channel that signals when payloads may be available.
// The channel is closed when the queue is closed.
func (q *inbox) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the current queue length.
func (q *inbox) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Close signals that no more payloads will be enqueued.
// Wakes any blocked waiters by closing the signal channel.
func (q *inbox) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	close(q.signal)
}
