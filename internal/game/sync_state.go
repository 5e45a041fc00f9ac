// internal/game/sync_state.go
package game

import (
	"time"

	"github.com/jason-s-yu/phaseten/internal/models"
)

// RoomSummary is the lobby-listing view of a room: enough to pick a room to
// join without exposing hands or piles.
type RoomSummary struct {
	RoomID    string    `json:"roomId"`
	Players   []string  `json:"players"` // display names in seat order
	Started   bool      `json:"started"`
	DeckSize  int       `json:"deckSize"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Summary builds the directory entry for this room.
func (g *Game) Summary() RoomSummary {
	names := make([]string, len(g.Players))
	for i, p := range g.Players {
		names[i] = p.Name
	}
	return RoomSummary{
		RoomID:    g.RoomID,
		Players:   names,
		Started:   g.Started,
		DeckSize:  g.Deck.Len(),
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}

// Clone returns a deep copy of the game. Broadcast payloads and test
// inspection work on clones so later mutations never leak into them.
func (g *Game) Clone() *Game {
	cp := *g
	cp.Players = make([]*models.Player, len(g.Players))
	for i, p := range g.Players {
		cp.Players[i] = p.Clone()
	}
	cp.Deck = g.Deck.Clone()
	cp.Discard = g.Discard.Clone()
	return &cp
}
