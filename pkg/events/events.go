// Package events provides a small typed publish/subscribe bus.
//
// Each component declares its own closed set of event names as a distinct
// string type and instantiates a Bus over that type plus its payload type,
// so subscribing to a misspelled or foreign event is a compile error rather
// than a silent no-op.
//
// Delivery is synchronous and in registration order. There is deliberately
// no error isolation between callbacks: a panicking callback aborts the
// remaining ones and propagates to the emitter. Subscribers that need
// isolation must recover on their own.
package events

import "sync"

// Subscription identifies a registered callback so it can be removed.
type Subscription int

// Bus dispatches payloads of type P for event names of type E.
// The zero value is not usable - use NewBus.
//
// Emit must not be called concurrently with itself for deterministic
// ordering; the diagram runs on a single cooperative scheduling domain, so
// in practice all emits happen from that domain. On/Off are safe from any
// goroutine.
type Bus[E ~string, P any] struct {
	mu   sync.Mutex
	next Subscription
	subs map[E][]entry[P]
}

type entry[P any] struct {
	id Subscription
	fn func(P)
}

// NewBus creates an empty bus.
func NewBus[E ~string, P any]() *Bus[E, P] {
	return &Bus[E, P]{subs: make(map[E][]entry[P])}
}

// On registers fn for the event and returns a token for Off.
// Callbacks fire in registration order.
func (b *Bus[E, P]) On(event E, fn func(P)) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	b.subs[event] = append(b.subs[event], entry[P]{id: b.next, fn: fn})
	return b.next
}

// Off removes a previously registered callback. Unknown tokens are ignored.
func (b *Bus[E, P]) Off(event E, sub Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.subs[event]
	for i, e := range list {
		if e.id == sub {
			b.subs[event] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// Emit invokes every callback registered for the event, synchronously and
// in registration order.
func (b *Bus[E, P]) Emit(event E, payload P) {
	b.mu.Lock()
	list := make([]entry[P], len(b.subs[event]))
	copy(list, b.subs[event])
	b.mu.Unlock()

	for _, e := range list {
		e.fn(payload)
	}
}

// Listeners returns the number of callbacks registered for the event.
func (b *Bus[E, P]) Listeners(event E) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[event])
}

// Clear removes all subscriptions. Used on teardown.
func (b *Bus[E, P]) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = make(map[E][]entry[P])
}
