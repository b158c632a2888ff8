// Package dashboard serves the live indicator feed: the latest report over HTTP and progress/report
// events over a websocket. Client publishes to it from the analyze commands.
package dashboard

import (
	"sync"

	"github.com/KaramelBytes/tabloom-cli/internal/analysis"
)

// Event types sent to websocket subscribers.
const (
	EventReady    = "ready"
	EventProgress = "progress"
	EventReport   = "report"
)

// Event is one websocket message.
type Event struct {
	Type      string                    `json:"type"`
	Processed int                       `json:"processed,omitempty"`
	Total     int                       `json:"total,omitempty"`
	Report    *analysis.IndicatorReport `json:"report,omitempty"`
}

const subscriberBuffer = 32

// Hub fans events out to subscribers. Slow subscribers lose events instead of blocking publishers.
type Hub struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[chan Event]struct{})}
}

// Subscribe registers a subscriber. The returned func unregisters it and closes the channel.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Broadcast delivers e to every subscriber with room in its buffer and returns how many got it.
func (h *Hub) Broadcast(e Event) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for ch := range h.subs {
		select {
		case ch <- e:
			n++
		default:
		}
	}
	return n
}

// Len returns the number of subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
