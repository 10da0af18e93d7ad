// Package live notifies report viewers when a child's sessions change.
package live

import (
	"sync"

	"caregame/internal/models"
)

// Hub fans out per-child change notifications. Notifications carry no
// payload; subscribers re-read the report when one arrives. A slow
// subscriber misses nothing: pending notifications coalesce into one.
type Hub struct {
	mu    sync.Mutex
	rooms map[string]map[*subscriber]struct{}
}

type subscriber struct {
	ch chan struct{}
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*subscriber]struct{})}
}

// Subscribe registers interest in a child. The returned cancel func
// unregisters and closes the channel; it is safe to call more than once.
func (h *Hub) Subscribe(childID string) (<-chan struct{}, func()) {
	childID = models.NormalizeChildID(childID)
	sub := &subscriber{ch: make(chan struct{}, 1)}

	h.mu.Lock()
	room := h.rooms[childID]
	if room == nil {
		room = make(map[*subscriber]struct{})
		h.rooms[childID] = room
	}
	room[sub] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if room, ok := h.rooms[childID]; ok {
				delete(room, sub)
				if len(room) == 0 {
					delete(h.rooms, childID)
				}
			}
			close(sub.ch)
		})
	}
	return sub.ch, cancel
}

// Publish notifies every subscriber of childID without blocking
func (h *Hub) Publish(childID string) {
	childID = models.NormalizeChildID(childID)

	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.rooms[childID] {
		select {
		case sub.ch <- struct{}{}:
		default:
		}
	}
}

// Subscribers returns the number of active subscribers for a child
func (h *Hub) Subscribers(childID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[models.NormalizeChildID(childID)])
}
