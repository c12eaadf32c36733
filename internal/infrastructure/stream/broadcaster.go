// Package stream delivers live job-progress events to connected
// clients. Delivery is fire-and-forget per location: subscribers that
// connect after an emission never see it, and slow subscribers drop
// events. The job store is the durable fallback for late readers.
package stream

import (
	"sync"

	domain "github.com/mohammadpnp/contact-sync/internal/domain/contact"
)

const subscriberBuffer = 16

type Broadcaster struct {
	mu   sync.RWMutex
	subs map[string]map[chan domain.ProgressEvent]struct{}
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subs: make(map[string]map[chan domain.ProgressEvent]struct{}),
	}
}

// Subscribe registers interest in a location's progress events. The
// returned cancel func is idempotent and must be called when the
// subscriber disconnects.
func (b *Broadcaster) Subscribe(locationID string) (<-chan domain.ProgressEvent, func()) {
	ch := make(chan domain.ProgressEvent, subscriberBuffer)

	b.mu.Lock()
	channels := b.subs[locationID]
	if channels == nil {
		channels = make(map[chan domain.ProgressEvent]struct{})
		b.subs[locationID] = channels
	}
	channels[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			if channels, ok := b.subs[locationID]; ok {
				delete(channels, ch)
				if len(channels) == 0 {
					delete(b.subs, locationID)
				}
			}
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers the event to all current subscribers of the
// location. A subscriber whose buffer is full misses the event rather
// than blocking the publisher.
func (b *Broadcaster) Publish(locationID string, event domain.ProgressEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subs[locationID] {
		select {
		case ch <- event:
		default:
		}
	}
}
