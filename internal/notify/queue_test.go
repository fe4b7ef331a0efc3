package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/books/internal/contract"
)

func (q *changeQueue) pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.changes)
}

func TestChangeQueue_FIFO(t *testing.T) {
	q := newChangeQueue()
	for i := int64(1); i <= 3; i++ {
		require.True(t, q.Enqueue(Change{Address: contract.BooksAddress, Seq: i}))
	}
	assert.Equal(t, 3, q.pending())

	for i := int64(1); i <= 3; i++ {
		c, ok := q.TryDequeue()
		require.True(t, ok)
		assert.Equal(t, i, c.Seq)
	}

	_, ok := q.TryDequeue()
	assert.False(t, ok)
}

func TestChangeQueue_SignalCoalesces(t *testing.T) {
	q := newChangeQueue()
	q.Enqueue(Change{Seq: 1})
	q.Enqueue(Change{Seq: 2})

	select {
	case <-q.Wait():
	case <-time.After(time.Second):
		t.Fatal("expected signal")
	}

	// A single pending signal covers both changes.
	select {
	case <-q.Wait():
		t.Fatal("signal should be coalesced")
	default:
	}
	assert.Equal(t, 2, q.pending())
}

func TestChangeQueue_Close(t *testing.T) {
	q := newChangeQueue()
	q.Close()
	q.Close() // idempotent

	assert.False(t, q.Enqueue(Change{Seq: 1}))

	_, open := <-q.Wait()
	assert.False(t, open, "Wait channel should be closed")
}
