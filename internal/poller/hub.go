package poller

import (
	"sync"

	"github.com/nirlob/obision-status/internal/metrics"
)

// Hub fans snapshots out to any number of consumers. Publish never blocks:
// a subscriber that has not drained its buffer loses its oldest pending
// snapshot to the newest one.
type Hub struct {
	mu     sync.Mutex
	subs   map[int]chan *metrics.Snapshot
	nextID int
	latest *metrics.Snapshot
	closed bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan *metrics.Snapshot)}
}

// Subscribe returns a channel of snapshots and a function that ends the
// subscription and closes the channel. The latest snapshot, if any, is
// delivered immediately. buffer below 1 is treated as 1.
func (h *Hub) Subscribe(buffer int) (<-chan *metrics.Snapshot, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan *metrics.Snapshot, buffer)

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		close(ch)
		return ch, func() {}
	}

	id := h.nextID
	h.nextID++
	h.subs[id] = ch
	if h.latest != nil {
		ch <- h.latest
	}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if sub, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(sub)
			}
		})
	}
}

// Publish records snap as the latest and offers it to every subscriber.
func (h *Hub) Publish(snap *metrics.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.latest = snap
	for _, ch := range h.subs {
		for {
			select {
			case ch <- snap:
			default:
				// Full: drop the oldest pending snapshot and retry.
				select {
				case <-ch:
				default:
				}
				continue
			}
			break
		}
	}
}

// Latest returns the most recent snapshot, or nil before the first cycle.
func (h *Hub) Latest() *metrics.Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.latest
}

// Subscribers returns the number of active subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close ends every subscription. Later publishes are ignored.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
