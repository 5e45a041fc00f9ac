// internal/protocol/protocol.go
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jason-s-yu/phaseten/internal/game"
	"github.com/jason-s-yu/phaseten/internal/models"
)

var (
	ErrUnknownEvent = errors.New("unknown event")
	ErrMalformed    = errors.New("malformed message")
)

// Envelope is the frame every message travels in, both directions:
// {"event": "<name>", "data": {...}}.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Request is one decoded inbound event. The set of implementations is closed;
// the transport type-switches over them.
type Request interface {
	EventName() string
}

type CreateRoom struct {
	PlayerName string `json:"playerName"`
}

type JoinRoom struct {
	RoomID     string `json:"roomId"`
	PlayerName string `json:"playerName"`
}

type StartGame struct {
	RoomID string `json:"roomId"`
}

// DrawCard draws from the discard pile when From is "discard", else from the deck.
type DrawCard struct {
	RoomID string `json:"roomId"`
	From   string `json:"from"`
}

type DiscardCard struct {
	RoomID string      `json:"roomId"`
	Card   models.Card `json:"card"`
}

// ChatMessage carries arbitrary JSON as its message.
type ChatMessage struct {
	RoomID  string          `json:"roomId"`
	Message json.RawMessage `json:"message"`
}

func (CreateRoom) EventName() string  { return game.ActionCreateRoom }
func (JoinRoom) EventName() string    { return game.ActionJoinRoom }
func (StartGame) EventName() string   { return game.ActionStartGame }
func (DrawCard) EventName() string    { return game.ActionDrawCard }
func (DiscardCard) EventName() string { return game.ActionDiscardCard }
func (ChatMessage) EventName() string { return game.ActionChatMessage }

// Decode parses one inbound frame into its typed request. Missing fields keep
// their zero values; the engine rejects whatever that makes invalid. A discard
// naming a card that cannot exist in the deck is malformed.
func Decode(raw []byte) (Request, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var req Request
	switch env.Event {
	case game.ActionCreateRoom:
		req = &CreateRoom{}
	case game.ActionJoinRoom:
		req = &JoinRoom{}
	case game.ActionStartGame:
		req = &StartGame{}
	case game.ActionDrawCard:
		req = &DrawCard{}
	case game.ActionDiscardCard:
		req = &DiscardCard{}
	case game.ActionChatMessage:
		req = &ChatMessage{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Event)
	}

	if len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, req); err != nil {
			return nil, fmt.Errorf("%w: %s data: %v", ErrMalformed, env.Event, err)
		}
	}
	if d, ok := req.(*DiscardCard); ok && !d.Card.Valid() {
		return nil, fmt.Errorf("%w: no such card %s", ErrMalformed, d.Card)
	}
	return req, nil
}

// Encode frames an outbound event.
func Encode(ev game.Event) ([]byte, error) {
	data, err := json.Marshal(Envelope{Event: string(ev.Type), Data: ev.Data})
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", ev.Type, err)
	}
	return data, nil
}

// EncodeRequest frames an inbound request. Clients and tests use it.
func EncodeRequest(req Request) ([]byte, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", req.EventName(), err)
	}
	return json.Marshal(Envelope{Event: req.EventName(), Data: data})
}
