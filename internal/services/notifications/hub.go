package notifications

import (
	"sync"

	"github.com/terraconstructs/skillshare/internal/db/models"
)

const defaultSubscriberBuffer = 16

// Hub fans new notifications out to the live streams of their recipient.
// A subscriber whose buffer is full misses the message; the notification is
// still persisted and shows up in the next listing.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[*subscriber]struct{}
	buffer int
}

type subscriber struct {
	ch chan models.Notification
}

// NewHub creates a Hub. buffer <= 0 selects the default per-subscriber buffer.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = defaultSubscriberBuffer
	}
	return &Hub{
		subs:   make(map[string]map[*subscriber]struct{}),
		buffer: buffer,
	}
}

// Subscribe registers a stream for userID. The returned cancel func unregisters
// it and closes the channel; it is safe to call more than once.
func (h *Hub) Subscribe(userID string) (<-chan models.Notification, func()) {
	sub := &subscriber{ch: make(chan models.Notification, h.buffer)}

	h.mu.Lock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[*subscriber]struct{})
	}
	h.subs[userID][sub] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[userID], sub)
			if len(h.subs[userID]) == 0 {
				delete(h.subs, userID)
			}
			close(sub.ch)
		})
	}
	return sub.ch, cancel
}

// Publish delivers n to every stream of its recipient and returns how many
// streams accepted it.
func (h *Hub) Publish(n models.Notification) int {
	if n.OwnerID == nil {
		return 0
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for sub := range h.subs[*n.OwnerID] {
		select {
		case sub.ch <- n:
			delivered++
		default:
		}
	}
	return delivered
}

// Subscribers returns the number of open streams for userID.
func (h *Hub) Subscribers(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}
