package bus

import "sync"

// Bus fans a single event kind, "cart updated", out to every subscriber.
// Publishes carry no payload: racing producers make any payload stale by the
// time it is observed, so subscribers re-read the store instead.
type Bus struct {
	mu   sync.Mutex
	next int
	subs map[int]func()
}

func New() *Bus {
	return &Bus{subs: make(map[int]func())}
}

// Publish invokes every currently-subscribed handler. Publishing with zero
// subscribers is a no-op. Handlers run outside the bus lock, so a handler may
// publish or unsubscribe without deadlocking.
func (b *Bus) Publish() {
	b.mu.Lock()
	handlers := make([]func(), 0, len(b.subs))
	for _, h := range b.subs {
		handlers = append(handlers, h)
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h()
	}
}

// Subscribe registers a handler and returns the closure that deregisters it.
// Every mount point must call the returned func on teardown, or the handler
// keeps firing against destroyed view state.
func (b *Bus) Subscribe(handler func()) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	b.subs[id] = handler

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

// Publisher is anything that can announce a cart change.
type Publisher interface {
	Publish()
}

// Fanout publishes to several sinks in order. Used to chain the local bus
// with the cross-process relay.
type Fanout []Publisher

func (f Fanout) Publish() {
	for _, p := range f {
		p.Publish()
	}
}
