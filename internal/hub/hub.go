// internal/hub/hub.go
package hub

import (
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Event types published by the room service.
const (
	EventPlayerJoined  = "player_joined"
	EventPlayerLeft    = "player_left"
	EventHostChanged   = "host_changed"
	EventReadyUpdate   = "ready_update"
	EventStatusChanged = "status_changed"
	EventRoundStarted  = "round_started"
	EventAnswerScored  = "answer_scored"
	EventGameFinished  = "game_finished"
	EventRoomClosed    = "room_closed"
)

// DefaultBuffer is the per-subscriber queue length.
const DefaultBuffer = 32

// Event is one message fanned out to everyone watching a room.
type Event struct {
	Type    string    `json:"type"`
	RoomID  string    `json:"roomId"`
	Payload any       `json:"payload,omitempty"`
	At      time.Time `json:"at"`
}

// Subscriber receives a room's events on C until it unsubscribes or the room closes.
type Subscriber struct {
	ID     uuid.UUID
	RoomID string
	C      <-chan Event

	ch chan Event
}

// Hub fans out room events to in-process subscribers.
// Publishing never blocks: a subscriber whose buffer is full misses the event.
type Hub struct {
	mu     sync.Mutex
	rooms  map[string]map[uuid.UUID]*Subscriber
	buffer int
}

// New creates a hub. buffer <= 0 uses DefaultBuffer.
func New(buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub{
		rooms:  make(map[string]map[uuid.UUID]*Subscriber),
		buffer: buffer,
	}
}

// Subscribe registers a new listener for roomID.
func (h *Hub) Subscribe(roomID string) *Subscriber {
	ch := make(chan Event, h.buffer)
	sub := &Subscriber{ID: uuid.New(), RoomID: roomID, C: ch, ch: ch}

	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.rooms[roomID]
	if !ok {
		subs = make(map[uuid.UUID]*Subscriber)
		h.rooms[roomID] = subs
	}
	subs[sub.ID] = sub
	return sub
}

// Unsubscribe removes sub and closes its channel. Safe to call more than once.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.rooms[sub.RoomID]
	if !ok {
		return
	}
	if _, ok := subs[sub.ID]; !ok {
		return
	}
	delete(subs, sub.ID)
	close(sub.ch)
	if len(subs) == 0 {
		delete(h.rooms, sub.RoomID)
	}
}

// Publish delivers an event to every subscriber of roomID.
func (h *Hub) Publish(roomID, eventType string, payload any) {
	ev := Event{Type: eventType, RoomID: roomID, Payload: payload, At: time.Now()}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sub := range h.rooms[roomID] {
		select {
		case sub.ch <- ev:
		default:
			log.WithFields(log.Fields{
				"room":       roomID,
				"subscriber": sub.ID,
				"event":      eventType,
			}).Warn("subscriber buffer full, dropping event")
		}
	}
}

// CloseRoom sends a final room_closed event and disconnects all subscribers.
func (h *Hub) CloseRoom(roomID string) {
	h.Publish(roomID, EventRoomClosed, nil)

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sub := range h.rooms[roomID] {
		close(sub.ch)
	}
	delete(h.rooms, roomID)
}

// Subscribers reports how many listeners roomID has.
func (h *Hub) Subscribers(roomID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[roomID])
}
