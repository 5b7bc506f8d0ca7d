// Package events fans engine notifications out to subscribers such as the
// SSE endpoint and the foreground `start` command. Delivery is best effort:
// a subscriber that falls behind misses events instead of blocking the
// engine.
package events

import (
	"sync"

	"github.com/tutu-network/focus/internal/domain"
)

// DefaultBuffer is the per-subscriber channel capacity.
const DefaultBuffer = 16

// Hub is a non-blocking publish/subscribe fan-out.
type Hub struct {
	mu     sync.Mutex
	subs   map[int]chan domain.Event
	nextID int
	buffer int
}

// NewHub creates a hub with DefaultBuffer-sized subscriber channels.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan domain.Event), buffer: DefaultBuffer}
}

// Subscribe registers a listener. Call the returned cancel func to detach;
// it closes the channel.
func (h *Hub) Subscribe() (<-chan domain.Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan domain.Event, h.buffer)
	h.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs, id)
			close(ch)
		})
	}
}

// Publish delivers e to every subscriber that has room.
func (h *Hub) Publish(e domain.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- e:
		default:
			// subscriber is behind; drop
		}
	}
}

// Subscribers returns the number of attached listeners.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
