package notify

import "sync/atomic"

// Clock is a monotonic logical clock. Every change is stamped with a
// strictly increasing sequence number from it, so observers can order
// changes without relying on wall time.
//
// Clock is safe for concurrent use.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}
