package provider

import (
	"sync"

	"github.com/roach88/books/internal/contract"
	"github.com/roach88/books/internal/notify"
	"github.com/roach88/books/internal/values"
)

// ResultSet is the materialized result of List. It remembers the address it
// was listed from so a caller can observe later changes there and re-list.
type ResultSet struct {
	// Address is the address the result was listed from.
	Address contract.Address
	// Columns lists the projected columns in order.
	Columns []string
	// Rows holds one Values per matching record.
	Rows []values.Values

	bus *notify.Bus

	mu     sync.Mutex
	subs   []*notify.Subscription
	closed bool
}

// Len returns the number of rows.
func (r *ResultSet) Len() int {
	return len(r.Rows)
}

// RegisterObserver subscribes obs to changes at the result's address and
// every address below it. The subscription ends at Close or when canceled.
func (r *ResultSet) RegisterObserver(obs notify.Observer) (*notify.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrResultSetClosed
	}
	sub := r.bus.Subscribe(r.Address, true, obs)
	r.subs = append(r.subs, sub)
	return sub, nil
}

// Close cancels every observer registered through the result set.
// Close is idempotent.
func (r *ResultSet) Close() {
	r.mu.Lock()
	subs := r.subs
	r.subs = nil
	r.closed = true
	r.mu.Unlock()

	for _, s := range subs {
		s.Cancel()
	}
}
