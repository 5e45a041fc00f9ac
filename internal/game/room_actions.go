// internal/game/room_actions.go
package game

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jason-s-yu/phaseten/internal/models"
	"github.com/sirupsen/logrus"
)

// Inbound event names, used for logging and rejection notices.
const (
	ActionCreateRoom  = "createRoom"
	ActionJoinRoom    = "joinRoom"
	ActionStartGame   = "startGame"
	ActionDrawCard    = "drawCard"
	ActionDiscardCard = "discardCard"
	ActionChatMessage = "chatMessage"
	ActionDisconnect  = "disconnect"
)

// reject logs a dropped request and, if enabled, tells the sender why.
// Assumes lock is held. Always returns err.
func (s *GameStore) reject(connID uuid.UUID, action, roomID string, err error) error {
	s.Logger.WithFields(logrus.Fields{
		"conn":   connID,
		"room":   roomID,
		"action": action,
	}).Debugf("request dropped: %v", err)

	if s.NotifyRejections {
		s.Out.SendTo(connID, NewEvent(EventError, ErrorPayload{Event: action, Message: err.Error()}))
	}
	return err
}

// CreateRoom opens a new room with a freshly shuffled deck, seats the caller
// as its only player and subscribes it to the room. Always succeeds.
func (s *GameStore) CreateRoom(connID uuid.UUID, playerName string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	roomID := s.newRoomIDUnsafe()
	g := NewGame(roomID, NewDeck(s.rng), s.Rules, now)
	if err := g.AddPlayer(connID, playerName, now); err != nil {
		return "", s.reject(connID, ActionCreateRoom, roomID, err)
	}
	s.games[roomID] = g

	s.Out.Subscribe(connID, roomID)
	s.broadcastUnsafe(g, EventRoomUpdate)
	s.publishUnsafe(g)

	s.Logger.WithFields(logrus.Fields{"room": roomID, "conn": connID}).Infof("Room created by %q", playerName)
	return roomID, nil
}

// JoinRoom seats the caller in a lobby-phase room.
func (s *GameStore) JoinRoom(connID uuid.UUID, roomID, playerName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games[roomID]
	if !ok {
		return s.reject(connID, ActionJoinRoom, roomID, ErrRoomNotFound)
	}
	if err := g.AddPlayer(connID, playerName, s.now()); err != nil {
		return s.reject(connID, ActionJoinRoom, roomID, err)
	}

	s.Out.Subscribe(connID, roomID)
	s.broadcastUnsafe(g, EventRoomUpdate)
	s.publishUnsafe(g)

	s.Logger.WithFields(logrus.Fields{"room": roomID, "conn": connID}).Infof("Player %q joined (%d seated)", playerName, len(g.Players))
	return nil
}

// StartGame deals the hands and flips the up-card. Any connection may start a room.
func (s *GameStore) StartGame(connID uuid.UUID, roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games[roomID]
	if !ok {
		return s.reject(connID, ActionStartGame, roomID, ErrRoomNotFound)
	}
	if err := g.Start(s.now()); err != nil {
		return s.reject(connID, ActionStartGame, roomID, err)
	}

	s.broadcastUnsafe(g, EventGameStarted)
	s.publishUnsafe(g)

	s.Logger.WithFields(logrus.Fields{"room": roomID, "conn": connID}).Infof("Game started with %d players, %d cards left", len(g.Players), g.Deck.Len())
	return nil
}

// DrawCard draws for the current player from the deck or, when from is
// "discard", from the discard pile.
func (s *GameStore) DrawCard(connID uuid.UUID, roomID, from string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games[roomID]
	if !ok {
		return s.reject(connID, ActionDrawCard, roomID, ErrRoomNotFound)
	}
	src := ParseDrawSource(from)
	if _, err := g.Draw(connID, src, s.rng, s.now()); err != nil {
		return s.reject(connID, ActionDrawCard, roomID, err)
	}

	s.broadcastUnsafe(g, EventGameStateUpdate)
	s.publishUnsafe(g)

	s.Logger.WithFields(logrus.Fields{"room": roomID, "conn": connID}).Debugf("Drew from %s", src)
	return nil
}

// DiscardCard discards the first card in the current player's hand matching
// card and advances the turn.
func (s *GameStore) DiscardCard(connID uuid.UUID, roomID string, card models.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games[roomID]
	if !ok {
		return s.reject(connID, ActionDiscardCard, roomID, ErrRoomNotFound)
	}
	if err := g.DiscardCard(connID, card, s.now()); err != nil {
		return s.reject(connID, ActionDiscardCard, roomID, err)
	}

	s.broadcastUnsafe(g, EventGameStateUpdate)
	s.publishUnsafe(g)

	s.Logger.WithFields(logrus.Fields{"room": roomID, "conn": connID}).Debugf("Discarded %s, turn -> %d", card, g.CurrentTurn)
	return nil
}

// ChatMessage relays message to the room's channel. No validation: the room
// does not have to exist and the sender does not have to be seated.
func (s *GameStore) ChatMessage(connID uuid.UUID, roomID string, message json.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(message) == 0 {
		message = json.RawMessage("null")
	}
	s.Out.BroadcastRoom(roomID, NewEvent(EventChatMessage, ChatPayload{Player: connID, Message: message}))
}

// Disconnect removes the connection's seat from every room, then sends a
// roster update to every room in the registry, including rooms the connection
// never joined.
func (s *GameStore) Disconnect(connID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for roomID, g := range s.games {
		if g.RemovePlayer(connID, now) {
			s.publishUnsafe(g)
			s.Logger.WithFields(logrus.Fields{"room": roomID, "conn": connID}).Infof("Player removed on disconnect (%d left)", len(g.Players))
		}
		s.broadcastUnsafe(g, EventRoomUpdate)
	}
}
