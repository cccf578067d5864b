// bus.go
package bus

import (
	"sync"
	"weak"
)

// -----------------------------------------------------------------------------
// Bus
// -----------------------------------------------------------------------------

// Bus routes events to subscribers by event kind, then by the subscriber's
// masks. It holds subscribers weakly: dropping the last strong reference to a
// subscriber unsubscribes it on a later publish.
type Bus struct {
	mu      sync.Mutex
	buckets [NumEventTypes][]weak.Pointer[Subscriber]
}

// New creates an empty bus.
func New() *Bus { return &Bus{} }

// Subscribe registers s in the bucket of every event kind in its mask.
func (b *Bus) Subscribe(s *Subscriber) {
	if s == nil {
		return
	}
	wp := weak.Make(s)
	b.mu.Lock()
	for i := range NumEventTypes {
		if s.EventMask&(1<<i) != 0 {
			b.buckets[i] = append(b.buckets[i], wp)
		}
	}
	b.mu.Unlock()
}

// Publish delivers ev to every live matching subscriber of its bucket and
// compacts away subscribers that have been collected. Handlers run on the
// caller's goroutine after the bus lock is released, so they may publish or
// subscribe themselves. It returns the number of deliveries.
func (b *Bus) Publish(ev Event) int {
	if uint8(ev.Type) >= NumEventTypes {
		return 0
	}

	b.mu.Lock()
	bucket := b.buckets[ev.Type]
	var targets []*Subscriber
	n := 0
	for _, wp := range bucket {
		s := wp.Value()
		if s == nil {
			continue
		}
		bucket[n] = wp
		n++
		if s.Matches(ev) {
			targets = append(targets, s)
		}
	}
	clear(bucket[n:])
	b.buckets[ev.Type] = bucket[:n]
	b.mu.Unlock()

	for _, s := range targets {
		s.deliver(ev)
	}
	return len(targets)
}

// Len returns the number of entries in the bucket for t, including entries
// not yet compacted.
func (b *Bus) Len(t EventType) int {
	if uint8(t) >= NumEventTypes {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.buckets[t])
}

// Reset drops every subscription.
func (b *Bus) Reset() {
	b.mu.Lock()
	for i := range b.buckets {
		b.buckets[i] = nil
	}
	b.mu.Unlock()
}
