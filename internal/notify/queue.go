package notify

import "sync"

// changeQueue is a thread-safe unbounded FIFO of changes.
//
// Enqueue never blocks, so it can be called from an observer on the
// publishing goroutine. A buffered signal channel of size 1 lets the
// consumer wait with select alongside a context.
type changeQueue struct {
	mu      sync.Mutex
	changes []Change
	closed  bool
	signal  chan struct{}
}

func newChangeQueue() *changeQueue {
	return &changeQueue{
		changes: make([]Change, 0, 16),
		signal:  make(chan struct{}, 1),
	}
}

// Enqueue adds a change to the back of the queue.
// Returns false if the queue is closed.
func (q *changeQueue) Enqueue(c Change) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.changes = append(q.changes, c)

	// Non-blocking: the buffer of 1 coalesces multiple signals.
	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// TryDequeue removes and returns the front change without blocking.
func (q *changeQueue) TryDequeue() (Change, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.changes) == 0 {
		return Change{}, false
	}

	c := q.changes[0]
	q.changes[0] = Change{} // release the address segments

	if len(q.changes) == 1 {
		q.changes = q.changes[:0]
	} else {
		q.changes = q.changes[1:]
	}

	return c, true
}

// Wait returns a channel that signals when changes may be available.
// It is closed by Close.
func (q *changeQueue) Wait() <-chan struct{} {
	return q.signal
}

// Close stops further enqueues and wakes any waiter.
func (q *changeQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	close(q.signal)
}
