package notify

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/roach88/books/internal/contract"
)

// Change describes one published change.
type Change struct {
	Address contract.Address
	Seq     int64
}

// Observer receives changes. OnChange runs on the publishing goroutine.
type Observer interface {
	OnChange(Change)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Change)

// OnChange calls f(c).
func (f ObserverFunc) OnChange(c Change) { f(c) }

// Bus routes changes to subscribers by address. The zero value is not
// usable; create one with NewBus.
type Bus struct {
	clock *Clock

	mu     sync.RWMutex
	subs   []*Subscription // in subscription order
	nextID uint64
}

// NewBus returns an empty bus with its own clock.
func NewBus() *Bus {
	return NewBusWithClock(NewClock())
}

// NewBusWithClock returns an empty bus stamping changes from clock.
func NewBusWithClock(clock *Clock) *Bus {
	return &Bus{clock: clock}
}

// Subscription is a registered observer. Cancel it to stop delivery.
type Subscription struct {
	bus         *Bus
	id          uint64
	addr        contract.Address
	descendants bool
	obs         Observer
	canceled    atomic.Bool
}

// Address returns the subscribed address.
func (s *Subscription) Address() contract.Address { return s.addr }

// Cancel stops delivery to the observer. A change already being delivered
// when Cancel is called may still arrive once. Cancel is idempotent.
func (s *Subscription) Cancel() {
	if s == nil || !s.canceled.CompareAndSwap(false, true) {
		return
	}
	s.bus.remove(s.id)
}

// matches reports whether a change at changed is delivered to s.
func (s *Subscription) matches(changed contract.Address) bool {
	switch {
	case s.addr.Equal(changed):
		return true
	case s.descendants && changed.IsUnder(s.addr):
		return true
	case s.addr.IsUnder(changed):
		return true
	}
	return false
}

// Subscribe registers obs for changes at addr. With descendants set, changes
// at any address below addr are delivered too.
func (b *Bus) Subscribe(addr contract.Address, descendants bool, obs Observer) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &Subscription{
		bus:         b,
		id:          b.nextID,
		addr:        addr,
		descendants: descendants,
		obs:         obs,
	}
	b.subs = append(b.subs, sub)
	return sub
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// Len returns the number of active subscriptions.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Notify publishes a change at addr and delivers it to every matching
// observer before returning. Observers may subscribe or cancel from inside
// OnChange; those edits apply to the next change.
//
// Changes published from one goroutine are stamped and delivered in call
// order. Delivery runs outside the lock, so changes from concurrent
// publishers may reach an observer in either order; use Seq to order them.
func (b *Bus) Notify(addr contract.Address) Change {
	c := Change{Address: addr, Seq: b.clock.Next()}

	b.mu.RLock()
	targets := make([]*Subscription, 0, len(b.subs))
	for _, s := range b.subs {
		if s.matches(addr) {
			targets = append(targets, s)
		}
	}
	b.mu.RUnlock()

	for _, s := range targets {
		if s.canceled.Load() {
			continue
		}
		s.obs.OnChange(c)
	}
	return c
}

// Watch returns a channel receiving changes matching addr until ctx is done,
// after which the subscription is canceled and the channel closed. Changes
// are buffered without bound between Notify and the reader.
func (b *Bus) Watch(ctx context.Context, addr contract.Address, descendants bool) <-chan Change {
	q := newChangeQueue()
	sub := b.Subscribe(addr, descendants, ObserverFunc(func(c Change) { q.Enqueue(c) }))
	out := make(chan Change)

	go func() {
		defer close(out)
		defer q.Close()
		defer sub.Cancel()

		for {
			for {
				c, ok := q.TryDequeue()
				if !ok {
					break
				}
				select {
				case out <- c:
				case <-ctx.Done():
					return
				}
			}

			select {
			case <-ctx.Done():
				return
			case <-q.Wait():
			}
		}
	}()

	return out
}
