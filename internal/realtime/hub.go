package realtime

import (
	"log/slog"
	"sync"
)

// Event kinds pushed to report rooms.
const (
	EventInternalMessage = "internal-message:new"
	EventPublicMessage   = "public-message:new"
	EventStatusChange    = "report:status"
)

// Event is a single payload pushed to everyone watching a report.
type Event struct {
	Kind     string `json:"kind"`
	ReportID uint   `json:"report_id"`
	Payload  any    `json:"payload"`
}

// Hub fans events out to in-process subscribers grouped by report.
// Delivery is at most once: a subscriber whose channel is full misses
// the event rather than blocking the sender.
type Hub struct {
	mu    sync.RWMutex
	rooms map[uint]map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[uint]map[chan Event]struct{})}
}

// Subscribe registers a listener for one report's events. The returned
// channel is buffered; the caller must drain it and call Unsubscribe when
// done.
func (h *Hub) Subscribe(reportID uint) chan Event {
	ch := make(chan Event, 16)
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[reportID]
	if !ok {
		room = make(map[chan Event]struct{})
		h.rooms[reportID] = room
	}
	room[ch] = struct{}{}
	return ch
}

// Unsubscribe removes a listener and closes its channel.
func (h *Hub) Unsubscribe(reportID uint, ch chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[reportID]
	if !ok {
		return
	}
	if _, ok := room[ch]; !ok {
		return
	}
	delete(room, ch)
	close(ch)
	if len(room) == 0 {
		delete(h.rooms, reportID)
	}
}

// Broadcast delivers an event to every subscriber of the report's room.
func (h *Hub) Broadcast(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	room, ok := h.rooms[event.ReportID]
	if !ok {
		return
	}
	for ch := range room {
		select {
		case ch <- event:
		default:
			slog.Debug("dropping realtime event, subscriber is slow",
				"report_id", event.ReportID, "kind", event.Kind)
		}
	}
}

// Subscribers returns how many listeners a report currently has.
func (h *Hub) Subscribers(reportID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[reportID])
}
