// internal/game/events.go
package game

import (
	"encoding/json"

	"github.com/google/uuid"
)

// EventType names an outbound event. The values are the wire event names.
type EventType string

const (
	EventRoomUpdate      EventType = "roomUpdate"      // roster changes: create, join, disconnect
	EventGameStarted     EventType = "gameStarted"     // initial deal
	EventGameStateUpdate EventType = "gameStateUpdate" // after a draw or discard
	EventChatMessage     EventType = "chatMessage"     // chat relay
	EventConnected       EventType = "connected"       // private: tells a new connection its id
	EventError           EventType = "error"           // private: rejection notice, only when enabled
)

// Event is an outbound message. Data is encoded when the event is built so the
// payload is a snapshot of state at that moment, regardless of when the
// transport gets around to writing it.
type Event struct {
	Type EventType       `json:"event"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewEvent encodes payload into an Event.
func NewEvent(evType EventType, payload interface{}) Event {
	return Event{Type: evType, Data: encodePayload(evType, payload)}
}

// ChatPayload is relayed verbatim to the room. Message is whatever JSON the sender supplied.
type ChatPayload struct {
	Player  uuid.UUID       `json:"player"`
	Message json.RawMessage `json:"message"`
}

// ConnectedPayload is sent to a connection right after it is accepted.
type ConnectedPayload struct {
	ID uuid.UUID `json:"id"`
}

// ErrorPayload describes why an inbound event was dropped.
type ErrorPayload struct {
	Event   string `json:"event"`
	Message string `json:"message"`
}

// Broadcaster is the outbound half of the real-time transport. Implementations
// must not block: they are called while the GameStore lock is held.
type Broadcaster interface {
	// Subscribe adds the connection to the room's broadcast channel.
	Subscribe(connID uuid.UUID, roomID string)
	// BroadcastRoom sends ev to every connection subscribed to the room.
	BroadcastRoom(roomID string, ev Event)
	// SendTo sends ev to a single connection.
	SendTo(connID uuid.UUID, ev Event)
}
